package app

import (
	"time"

	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	demoRows        = "ABCDEF"
	demoSeatsPerRow = 10
)

// seedDemoCatalog fills the in-memory store with one room and a showtime
// starting in three hours. Rows E and F are VIP, seat 5 of the last row is a
// couple seat and A10 is out of service.
func seedDemoCatalog(store *repository.MemoryStore, now time.Time) {
	var seats []domain.Seat

	id := 1
	for i, row := range demoRows {
		for number := 1; number <= demoSeatsPerRow; number++ {
			seat := domain.Seat{
				ID:              id,
				RoomID:          1,
				Row:             string(row),
				Number:          number,
				Type:            "standard",
				PriceMultiplier: decimal.NewFromInt(1),
				Status:          domain.SeatStatusActive,
			}

			if i >= len(demoRows)-2 {
				seat.Type = "vip"
				seat.PriceMultiplier = decimal.RequireFromString("1.5")
			}

			if i == len(demoRows)-1 && number == 5 {
				seat.Type = "couple"
				seat.PriceMultiplier = decimal.NewFromInt(2)
			}

			if row == 'A' && number == demoSeatsPerRow {
				seat.Status = domain.SeatStatusBroken
			}

			seats = append(seats, seat)
			id++
		}
	}

	store.AddSeats(seats...)

	start := now.Truncate(time.Hour).Add(3 * time.Hour)

	store.AddShowtime(domain.Showtime{
		ID:        1,
		RoomID:    1,
		Title:     "Demo screening",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		BasePrice: decimal.NewFromInt(85000),
		Status:    domain.ShowtimeStatusScheduled,
	})
}
