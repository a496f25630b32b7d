package domain

import "github.com/shopspring/decimal"

// SeatPrice is base × multiplier. Seats without a positive multiplier are
// sold at the base price.
func SeatPrice(base, multiplier decimal.Decimal) decimal.Decimal {
	if !multiplier.IsPositive() {
		return base
	}

	return base.Mul(multiplier)
}

type PriceLine struct {
	SeatID int
	Price  decimal.Decimal
}

// Quote prices seats against a showtime base price, preserving seat order.
func Quote(base decimal.Decimal, seats []Seat) ([]PriceLine, decimal.Decimal) {
	lines := make([]PriceLine, len(seats))
	total := decimal.Zero

	for i, seat := range seats {
		price := SeatPrice(base, seat.PriceMultiplier)
		lines[i] = PriceLine{SeatID: seat.ID, Price: price}
		total = total.Add(price)
	}

	return lines, total
}
