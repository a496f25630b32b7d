package domain

import (
	"context"
	"time"
)

// Hold is a time-bound claim on one seat of one showtime. At most one row
// exists per (seat, showtime); a row past ExpiresAt counts as absent.
type Hold struct {
	ID         string
	SeatID     int
	ShowtimeID int
	UserID     int
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

func (h Hold) IsActive(now time.Time) bool {
	return h.ExpiresAt.After(now)
}

type HoldRepository interface {
	// TryAcquire writes hold when the seat has no active ticket and its
	// current row is absent, expired, or owned by hold.UserID. It reports
	// whether the row was written and returns the stored hold.
	TryAcquire(ctx context.Context, hold Hold) (*Hold, bool, error)
	Extend(ctx context.Context, showtimeID int, seatIDs []int, userID int, by time.Duration, now time.Time) ([]Hold, error)
	// Release deletes the caller's holds; a nil seatIDs releases all of them
	// for the showtime.
	Release(ctx context.Context, showtimeID int, seatIDs []int, userID int) (int64, error)
	ListActiveByUser(ctx context.Context, showtimeID, userID int, now time.Time) ([]Hold, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
