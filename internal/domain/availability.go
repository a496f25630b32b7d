package domain

import (
	"context"
	"time"
)

type Availability string

const (
	SeatAvailable    Availability = "available"
	SeatLocked       Availability = "locked"
	SeatBooked       Availability = "booked"
	// SeatOutOfService marks seats the catalog has taken out of use.
	SeatOutOfService Availability = "out_of_service"
)

const (
	ReasonBooked       = "seat is already booked"
	ReasonLocked       = "seat is held by another customer"
	ReasonSeatNotFound = "seat not found"
	ReasonSeatInactive = "seat inactive"
)

type SeatAvailability struct {
	SeatID int
	Status Availability
	Reason string
}

func (a SeatAvailability) IsAvailable() bool {
	return a.Status == SeatAvailable
}

// SeatState is the persisted evidence for one seat of one showtime at the
// moment it was read. HoldUserID is nil when no unexpired hold exists.
type SeatState struct {
	SeatID        int
	Booked        bool
	HoldUserID    *int
	HoldExpiresAt *time.Time
}

// ResolveAvailability decides a seat's status for callerID. Bookings win over
// holds, and a hold owned by the caller does not block the caller.
func ResolveAvailability(state SeatState, callerID int) SeatAvailability {
	switch {
	case state.Booked:
		return SeatAvailability{SeatID: state.SeatID, Status: SeatBooked, Reason: ReasonBooked}
	case state.HoldUserID != nil && *state.HoldUserID != callerID:
		return SeatAvailability{SeatID: state.SeatID, Status: SeatLocked, Reason: ReasonLocked}
	default:
		return SeatAvailability{SeatID: state.SeatID, Status: SeatAvailable}
	}
}

type AvailabilityRepository interface {
	// ListSeatStates returns one state per requested seat, in request order.
	// Holds with expires_at <= now must be ignored.
	ListSeatStates(ctx context.Context, showtimeID int, seatIDs []int, now time.Time) ([]SeatState, error)
}
