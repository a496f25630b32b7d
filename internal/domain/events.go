package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BookingEventType string

const (
	BookingCreated   BookingEventType = "booking.created"
	BookingPaid      BookingEventType = "booking.paid"
	BookingCancelled BookingEventType = "booking.cancelled"
	BookingRefunded  BookingEventType = "booking.refunded"
	BookingExpired   BookingEventType = "booking.expired"
)

type BookingEvent struct {
	Type          BookingEventType `json:"type"`
	BookingID     int              `json:"booking_id"`
	Code          string           `json:"code,omitempty"`
	UserID        int              `json:"user_id,omitempty"`
	ShowtimeID    int              `json:"showtime_id,omitempty"`
	SeatIDs       []int            `json:"seat_ids,omitempty"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"`
	PaymentMethod PaymentMethod    `json:"payment_method,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

func NewBookingEvent(t BookingEventType, b *Booking, now time.Time) BookingEvent {
	seatIDs := make([]int, len(b.Tickets))
	for i, ticket := range b.Tickets {
		seatIDs[i] = ticket.SeatID
	}

	total := b.TotalAmount

	return BookingEvent{
		Type:          t,
		BookingID:     b.ID,
		Code:          b.Code,
		UserID:        b.UserID,
		ShowtimeID:    b.ShowtimeID,
		SeatIDs:       seatIDs,
		TotalAmount:   &total,
		PaymentMethod: b.PaymentMethod,
		OccurredAt:    now,
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
