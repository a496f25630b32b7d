package events

import (
	"context"
	"log/slog"

	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

// LogPublisher writes events to a logger. It is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	p.logger.InfoContext(ctx, "booking event",
		"type", event.Type,
		"booking_id", event.BookingID,
		"code", event.Code,
		"user_id", event.UserID,
		"showtime_id", event.ShowtimeID,
		"seat_ids", event.SeatIDs,
	)

	return nil
}
