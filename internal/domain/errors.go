package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrShowtimeNotFound       = errors.New("showtime not found")
	ErrSeatNotFound           = errors.New("one or more seats do not exist")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrSeatUnavailable        = errors.New("one or more seats are unavailable")
	ErrBookingExpired         = errors.New("booking payment window has expired")
	ErrShowtimeAlreadyStarted = errors.New("showtime has already started")
	ErrShowtimeNotBookable    = errors.New("showtime is not open for booking")
	ErrInvalidState           = errors.New("booking is not in a state that allows this operation")
	ErrInvalidPaymentMethod   = errors.New("unsupported payment method")
	ErrNoSeatsSelected        = errors.New("at least one seat must be selected")
	ErrCodeCollision          = errors.New("generated code already exists")
	ErrInternal               = errors.New("internal error")
)

// SeatUnavailableError reports every seat that failed availability checks
// during an all-or-nothing operation.
type SeatUnavailableError struct {
	Seats []SeatAvailability
}

func (e *SeatUnavailableError) Error() string {
	parts := make([]string, len(e.Seats))
	for i, s := range e.Seats {
		parts[i] = fmt.Sprintf("seat %d: %s", s.SeatID, s.Reason)
	}

	return fmt.Sprintf("%s (%s)", ErrSeatUnavailable, strings.Join(parts, "; "))
}

func (e *SeatUnavailableError) Unwrap() error {
	return ErrSeatUnavailable
}
