package testutil

import (
	"time"

	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	ShowtimeID = 1
	RoomID     = 1

	// Seats of room 1, row A. SeatA2 is a VIP seat priced at 1.5x.
	SeatA1 = 1
	SeatA2 = 2
	SeatA3 = 3
	SeatA4 = 4

	// SeatBroken is out of service.
	SeatBroken = 5

	// StartedShowtimeID already began, CancelledShowtimeID was called off.
	StartedShowtimeID   = 2
	CancelledShowtimeID = 3
)

var BasePrice = decimal.NewFromInt(85000)

// Now is the reference instant every fixture is built around.
var Now = time.Date(2025, 3, 1, 16, 0, 0, 0, time.UTC)

// NewStore returns an in-memory store seeded with one room, five seats and
// three showtimes relative to Now.
func NewStore() *repository.MemoryStore {
	store := repository.NewMemoryStore()

	store.AddSeats(
		domain.Seat{ID: SeatA1, RoomID: RoomID, Row: "A", Number: 1, Type: "standard", PriceMultiplier: decimal.NewFromInt(1), Status: domain.SeatStatusActive},
		domain.Seat{ID: SeatA2, RoomID: RoomID, Row: "A", Number: 2, Type: "vip", PriceMultiplier: decimal.RequireFromString("1.5"), Status: domain.SeatStatusActive},
		domain.Seat{ID: SeatA3, RoomID: RoomID, Row: "A", Number: 3, Type: "standard", PriceMultiplier: decimal.NewFromInt(1), Status: domain.SeatStatusActive},
		domain.Seat{ID: SeatA4, RoomID: RoomID, Row: "A", Number: 4, Type: "couple", PriceMultiplier: decimal.Zero, Status: domain.SeatStatusActive},
		domain.Seat{ID: SeatBroken, RoomID: RoomID, Row: "A", Number: 5, Type: "standard", PriceMultiplier: decimal.NewFromInt(1), Status: domain.SeatStatusBroken},
	)

	store.AddShowtime(domain.Showtime{
		ID:        ShowtimeID,
		RoomID:    RoomID,
		Title:     "Evening show",
		StartTime: Now.Add(2 * time.Hour),
		EndTime:   Now.Add(4 * time.Hour),
		BasePrice: BasePrice,
		Status:    domain.ShowtimeStatusScheduled,
	})

	store.AddShowtime(domain.Showtime{
		ID:        StartedShowtimeID,
		RoomID:    RoomID,
		Title:     "Matinee",
		StartTime: Now.Add(-30 * time.Minute),
		EndTime:   Now.Add(90 * time.Minute),
		BasePrice: BasePrice,
		Status:    domain.ShowtimeStatusScheduled,
	})

	store.AddShowtime(domain.Showtime{
		ID:        CancelledShowtimeID,
		RoomID:    RoomID,
		Title:     "Late show",
		StartTime: Now.Add(6 * time.Hour),
		EndTime:   Now.Add(8 * time.Hour),
		BasePrice: BasePrice,
		Status:    domain.ShowtimeStatusCancelled,
	})

	return store
}
