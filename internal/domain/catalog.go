package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatStatusActive   SeatStatus = "active"
	SeatStatusInactive SeatStatus = "inactive"
	SeatStatusBroken   SeatStatus = "broken"
)

type Seat struct {
	ID              int
	RoomID          int
	Row             string
	Number          int
	Type            string
	PriceMultiplier decimal.Decimal
	Status          SeatStatus
}

func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

func (s Seat) IsActive() bool {
	return s.Status == SeatStatusActive
}

type ShowtimeStatus string

const (
	ShowtimeStatusScheduled ShowtimeStatus = "scheduled"
	ShowtimeStatusCancelled ShowtimeStatus = "cancelled"
	ShowtimeStatusCompleted ShowtimeStatus = "completed"
)

type Showtime struct {
	ID        int
	RoomID    int
	Title     string
	StartTime time.Time
	EndTime   time.Time
	BasePrice decimal.Decimal
	Status    ShowtimeStatus
}

// CheckBookable reports why a showtime cannot take new holds or bookings at now.
func (s *Showtime) CheckBookable(now time.Time) error {
	if s.Status != ShowtimeStatusScheduled {
		return ErrShowtimeNotBookable
	}

	if !s.StartTime.After(now) {
		return ErrShowtimeAlreadyStarted
	}

	return nil
}

// CatalogRepository is the read side of the catalog collaborator. Seats and
// showtimes are never written by this engine.
type CatalogRepository interface {
	GetShowtime(ctx context.Context, id int) (*Showtime, error)
	GetSeats(ctx context.Context, ids []int) ([]Seat, error)
	GetSeatsByRoom(ctx context.Context, roomID int) ([]Seat, error)
}
