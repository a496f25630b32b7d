package sweeper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultInterval = time.Minute
	lockKey         = "sweeper:leader"
)

type BookingExpirer interface {
	CancelExpired(ctx context.Context) (int, error)
}

type HoldSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Locker elects one sweeping instance per tick. TryLock reports false when
// another instance holds the lock. A held lock lapses after ttl unless it is
// released first.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

type Result struct {
	CancelledBookings int
	CleanedHolds      int64
}

type Sweeper struct {
	bookings BookingExpirer
	holds    HoldSweeper
	locker   Locker
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger

	cancelledBookings metric.Int64Counter
	cleanedHolds      metric.Int64Counter
}

type Option func(*Sweeper)

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLocker(locker Locker) Option {
	return func(s *Sweeper) {
		s.locker = locker
	}
}

func WithClock(clk clockwork.Clock) Option {
	return func(s *Sweeper) {
		if clk != nil {
			s.clock = clk
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(bookings BookingExpirer, holds HoldSweeper, opts ...Option) (*Sweeper, error) {
	s := &Sweeper{
		bookings: bookings,
		holds:    holds,
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter("github.com/metinatakli/showtime-booking-engine/internal/sweeper")

	var err error

	s.cancelledBookings, err = meter.Int64Counter("sweeper.bookings.cancelled",
		metric.WithDescription("Pending bookings cancelled after their payment window closed"))
	if err != nil {
		return nil, fmt.Errorf("create cancelled bookings counter: %w", err)
	}

	s.cleanedHolds, err = meter.Int64Counter("sweeper.holds.cleaned",
		metric.WithDescription("Expired seat holds deleted"))
	if err != nil {
		return nil, fmt.Errorf("create cleaned holds counter: %w", err)
	}

	return s, nil
}

// SweepOnce cancels expired bookings and deletes expired holds. The two
// halves are independent: a failure in one is reported but never stops the
// other.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	var (
		result                Result
		bookingsErr, holdsErr error
	)

	result.CancelledBookings, bookingsErr = s.bookings.CancelExpired(ctx)
	if bookingsErr != nil {
		s.logger.ErrorContext(ctx, "failed to cancel expired bookings", "error", bookingsErr)
		bookingsErr = fmt.Errorf("cancel expired bookings: %w", bookingsErr)
	} else {
		s.cancelledBookings.Add(ctx, int64(result.CancelledBookings))
	}

	result.CleanedHolds, holdsErr = s.holds.SweepExpired(ctx)
	if holdsErr != nil {
		s.logger.ErrorContext(ctx, "failed to sweep expired holds", "error", holdsErr)
		holdsErr = fmt.Errorf("sweep expired holds: %w", holdsErr)
	} else {
		s.cleanedHolds.Add(ctx, result.CleanedHolds)
	}

	s.logger.InfoContext(ctx, "sweep finished",
		"cancelled_bookings", result.CancelledBookings,
		"cleaned_holds", result.CleanedHolds)

	return result, errors.Join(bookingsErr, holdsErr)
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	if s.locker == nil {
		_, _ = s.SweepOnce(ctx)
		return
	}

	unlock, ok, err := s.locker.TryLock(ctx, lockKey, s.lockTTL())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to acquire sweeper lock", "error", err)
		return
	}

	if !ok {
		s.logger.DebugContext(ctx, "another instance is sweeping, skipping tick")
		return
	}

	// A successful sweep keeps the lock until it lapses, so instances whose
	// tickers are offset cannot sweep again within the same interval.
	if _, err := s.SweepOnce(ctx); err == nil {
		return
	}

	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		s.logger.ErrorContext(ctx, "failed to release sweeper lock", "error", err)
	}
}

// lockTTL lapses shortly before this instance's next tick.
func (s *Sweeper) lockTTL() time.Duration {
	return s.interval * 9 / 10
}
