package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/metinatakli/showtime-booking-engine/internal/availability"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// codeAttempts bounds explicit existence checks per generated code.
	codeAttempts = 3
	// commitAttempts bounds whole-transaction retries after a store-level
	// code collision.
	commitAttempts = 2
)

var tracer = otel.Tracer("github.com/metinatakli/showtime-booking-engine/internal/booking")

// Coordinator turns claimed seats into bookings and drives the booking
// lifecycle. Every state change runs in one store transaction.
type Coordinator struct {
	tx       domain.Transactor
	catalog  domain.CatalogRepository
	bookings domain.BookingRepository
	holds    domain.HoldRepository
	resolver *availability.Resolver
	events   domain.EventPublisher
	clock    clockwork.Clock
	logger   *slog.Logger
	newCode  domain.CodeGenerator
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithEventPublisher(events domain.EventPublisher) Option {
	return func(c *Coordinator) {
		if events != nil {
			c.events = events
		}
	}
}

// WithCodeGenerator replaces the booking and ticket code source.
func WithCodeGenerator(gen domain.CodeGenerator) Option {
	return func(c *Coordinator) {
		if gen != nil {
			c.newCode = gen
		}
	}
}

func NewCoordinator(
	tx domain.Transactor,
	catalog domain.CatalogRepository,
	bookings domain.BookingRepository,
	holds domain.HoldRepository,
	resolver *availability.Resolver,
	clk clockwork.Clock,
	opts ...Option) *Coordinator {

	c := &Coordinator{
		tx:       tx,
		catalog:  catalog,
		bookings: bookings,
		holds:    holds,
		resolver: resolver,
		clock:    clk,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		newCode:  domain.NewCode,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type CreateBookingInput struct {
	UserID        int
	ShowtimeID    int
	SeatIDs       []int
	PaymentMethod domain.PaymentMethod
}

// CreateBooking books every requested seat or none of them. Seat
// availability is resolved again inside the transaction; earlier holds are
// only a hint.
func (c *Coordinator) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.CreateBooking", trace.WithAttributes(
		attribute.Int("showtime.id", in.ShowtimeID),
		attribute.Int("user.id", in.UserID),
		attribute.Int("seats.requested", len(in.SeatIDs)),
		attribute.String("payment.method", string(in.PaymentMethod)),
	))
	defer span.End()

	if !in.PaymentMethod.IsValid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	in.SeatIDs = dedupe(in.SeatIDs)
	if len(in.SeatIDs) == 0 {
		return nil, domain.ErrNoSeatsSelected
	}

	var (
		booking *domain.Booking
		err     error
	)

	for attempt := 1; attempt <= commitAttempts; attempt++ {
		booking, err = c.createOnce(ctx, in)
		if !errors.Is(err, domain.ErrCodeCollision) {
			break
		}

		c.logger.WarnContext(ctx, "booking code collided at commit, retrying",
			"attempt", attempt,
			"error", err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, domain.ErrCodeCollision) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInternal, err)
		}

		var unavailable *domain.SeatUnavailableError
		if errors.As(err, &unavailable) {
			c.logger.WarnContext(ctx, "booking rejected, seats unavailable",
				"showtime_id", in.ShowtimeID,
				"user_id", in.UserID,
				"seats", unavailable.Seats)
		}

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("booking.id", booking.ID),
		attribute.String("booking.code", booking.Code),
	)

	c.logger.InfoContext(ctx, "booking created",
		"booking_id", booking.ID,
		"code", booking.Code,
		"user_id", booking.UserID,
		"showtime_id", booking.ShowtimeID,
		"total", booking.TotalAmount.String(),
		"expires_at", booking.ExpiresAt)

	c.publish(ctx, domain.NewBookingEvent(domain.BookingCreated, booking, c.clock.Now()))

	return booking, nil
}

func (c *Coordinator) createOnce(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	now := c.clock.Now()

	var booking *domain.Booking

	err := c.tx.WithTx(ctx, func(ctx context.Context) error {
		showtime, err := c.catalog.GetShowtime(ctx, in.ShowtimeID)
		if err != nil {
			return err
		}

		err = showtime.CheckBookable(now)
		if err != nil {
			return err
		}

		seats, err := c.loadSeats(ctx, showtime, in.SeatIDs)
		if err != nil {
			return err
		}

		statuses, err := c.resolver.StatusMany(ctx, in.ShowtimeID, in.SeatIDs, in.UserID)
		if err != nil {
			return err
		}

		blocked := availability.Unavailable(statuses)
		for _, seat := range seats {
			if !seat.IsActive() {
				blocked = append(blocked, domain.SeatAvailability{
					SeatID: seat.ID,
					Status: domain.SeatOutOfService,
					Reason: domain.ReasonSeatInactive,
				})
			}
		}

		if len(blocked) > 0 {
			return &domain.SeatUnavailableError{Seats: blocked}
		}

		booking, err = c.buildBooking(ctx, in, showtime, seats, now)
		if err != nil {
			return err
		}

		err = c.bookings.Create(ctx, booking)
		if err != nil {
			if errors.Is(err, domain.ErrSeatUnavailable) {
				return unavailableAfterConflict(in.SeatIDs)
			}

			return err
		}

		_, err = c.holds.Release(ctx, in.ShowtimeID, in.SeatIDs, in.UserID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// loadSeats returns the requested seats in request order.
func (c *Coordinator) loadSeats(ctx context.Context, showtime *domain.Showtime, seatIDs []int) ([]domain.Seat, error) {
	found, err := c.catalog.GetSeats(ctx, seatIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]domain.Seat, len(found))
	for _, seat := range found {
		byID[seat.ID] = seat
	}

	seats := make([]domain.Seat, len(seatIDs))
	for i, id := range seatIDs {
		seat, ok := byID[id]
		if !ok || seat.RoomID != showtime.RoomID {
			return nil, fmt.Errorf("%w: seat %d", domain.ErrSeatNotFound, id)
		}

		seats[i] = seat
	}

	return seats, nil
}

func (c *Coordinator) buildBooking(
	ctx context.Context,
	in CreateBookingInput,
	showtime *domain.Showtime,
	seats []domain.Seat,
	now time.Time) (*domain.Booking, error) {

	lines, total := domain.Quote(showtime.BasePrice, seats)

	used := make(map[string]struct{}, len(seats)+1)

	code, err := c.uniqueCode(ctx, domain.BookingCodePrefix, now, used)
	if err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, len(lines))
	for i, line := range lines {
		ticketCode, err := c.uniqueCode(ctx, domain.TicketCodePrefix, now, used)
		if err != nil {
			return nil, err
		}

		tickets[i] = domain.Ticket{
			Code:       ticketCode,
			SeatID:     line.SeatID,
			ShowtimeID: showtime.ID,
			Price:      line.Price,
			Status:     domain.TicketStatusActive,
		}
	}

	return &domain.Booking{
		Code:          code,
		UserID:        in.UserID,
		ShowtimeID:    showtime.ID,
		TotalAmount:   total,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(in.PaymentMethod.PaymentWindow()),
		Tickets:       tickets,
	}, nil
}

// uniqueCode generates a code that neither the store nor used already knows.
func (c *Coordinator) uniqueCode(
	ctx context.Context,
	prefix string,
	now time.Time,
	used map[string]struct{}) (string, error) {

	for range codeAttempts {
		code, err := c.newCode(prefix, now)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		if _, ok := used[code]; ok {
			continue
		}

		exists, err := c.bookings.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}

		if !exists {
			used[code] = struct{}{}
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: no free %s code after %d attempts", domain.ErrCodeCollision, prefix, codeAttempts)
}

// unavailableAfterConflict builds the per-seat error when the active-ticket
// constraint rejected the insert. The conflicting booking may not be visible
// to this transaction yet, so seats without evidence are reported booked.
func unavailableAfterConflict(seatIDs []int) error {
	seats := make([]domain.SeatAvailability, len(seatIDs))
	for i, id := range seatIDs {
		seats[i] = domain.SeatAvailability{SeatID: id, Status: domain.SeatBooked, Reason: domain.ReasonBooked}
	}

	return &domain.SeatUnavailableError{Seats: seats}
}

// ConfirmPayment moves a pending booking to paid. An empty method keeps the
// one chosen at booking time. A booking whose payment window has closed is
// cancelled and committed before ErrBookingExpired is returned.
func (c *Coordinator) ConfirmPayment(
	ctx context.Context,
	bookingID int,
	method domain.PaymentMethod) (*domain.Booking, error) {

	ctx, span := tracer.Start(ctx, "booking.ConfirmPayment", trace.WithAttributes(
		attribute.Int("booking.id", bookingID),
	))
	defer span.End()

	if method != "" && !method.IsValid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	now := c.clock.Now()

	var (
		booking *domain.Booking
		expired bool
	)

	err := c.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := c.bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		if current.PaymentStatus != domain.PaymentStatusPending {
			return fmt.Errorf("%w: booking is %s", domain.ErrInvalidState, current.PaymentStatus)
		}

		status := domain.PaymentStatusPaid
		if current.IsExpired(now) {
			status = domain.PaymentStatusCancelled
			method = ""
			expired = true
		}

		err = c.bookings.UpdateStatus(ctx, bookingID, status, method, now)
		if err != nil {
			return err
		}

		booking, err = c.bookings.GetByID(ctx, bookingID)

		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if expired {
		c.logger.WarnContext(ctx, "payment arrived after expiry, booking cancelled", "booking_id", bookingID)
		c.publish(ctx, domain.NewBookingEvent(domain.BookingExpired, booking, now))

		return nil, domain.ErrBookingExpired
	}

	c.logger.InfoContext(ctx, "booking paid",
		"booking_id", bookingID,
		"payment_method", booking.PaymentMethod)

	c.publish(ctx, domain.NewBookingEvent(domain.BookingPaid, booking, now))

	return booking, nil
}

// CancelBooking cancels a pending booking and its tickets, freeing the seats.
func (c *Coordinator) CancelBooking(ctx context.Context, bookingID int) (*domain.Booking, error) {
	return c.transition(ctx, "booking.CancelBooking", bookingID,
		domain.PaymentStatusPending, domain.PaymentStatusCancelled, domain.BookingCancelled)
}

// RefundBooking moves a paid booking to refunded and cancels its tickets.
func (c *Coordinator) RefundBooking(ctx context.Context, bookingID int) (*domain.Booking, error) {
	return c.transition(ctx, "booking.RefundBooking", bookingID,
		domain.PaymentStatusPaid, domain.PaymentStatusRefunded, domain.BookingRefunded)
}

func (c *Coordinator) transition(
	ctx context.Context,
	spanName string,
	bookingID int,
	from,
	to domain.PaymentStatus,
	eventType domain.BookingEventType) (*domain.Booking, error) {

	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.Int("booking.id", bookingID),
	))
	defer span.End()

	now := c.clock.Now()

	var booking *domain.Booking

	err := c.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := c.bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		if current.PaymentStatus != from {
			return fmt.Errorf("%w: booking is %s", domain.ErrInvalidState, current.PaymentStatus)
		}

		err = c.bookings.UpdateStatus(ctx, bookingID, to, "", now)
		if err != nil {
			return err
		}

		booking, err = c.bookings.GetByID(ctx, bookingID)

		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.logger.InfoContext(ctx, "booking status changed",
		"booking_id", bookingID,
		"from", from,
		"to", to)

	c.publish(ctx, domain.NewBookingEvent(eventType, booking, now))

	return booking, nil
}

func (c *Coordinator) GetBooking(ctx context.Context, bookingID int) (*domain.Booking, error) {
	return c.bookings.GetByID(ctx, bookingID)
}

func (c *Coordinator) GetBookingByCode(ctx context.Context, code string) (*domain.Booking, error) {
	return c.bookings.GetByCode(ctx, code)
}

func (c *Coordinator) ListUserBookings(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	return c.bookings.ListByUser(ctx, userID, pagination)
}

// CancelExpired cancels every pending booking whose payment window has
// closed, together with its tickets, and returns how many were cancelled.
func (c *Coordinator) CancelExpired(ctx context.Context) (int, error) {
	now := c.clock.Now()

	ids, err := c.bookings.CancelExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("cancel expired bookings: %w", err)
	}

	for _, id := range ids {
		c.publish(ctx, domain.BookingEvent{Type: domain.BookingExpired, BookingID: id, OccurredAt: now})
	}

	return len(ids), nil
}

func (c *Coordinator) publish(ctx context.Context, event domain.BookingEvent) {
	if c.events == nil {
		return
	}

	err := c.events.Publish(ctx, event)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to publish booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err)
	}
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
