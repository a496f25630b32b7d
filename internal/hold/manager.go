package hold

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/metinatakli/showtime-booking-engine/internal/availability"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTTL       = 10 * time.Minute
	DefaultMaxTTL    = 30 * time.Minute
	DefaultExtension = 5 * time.Minute
)

var tracer = otel.Tracer("github.com/metinatakli/showtime-booking-engine/internal/hold")

// Manager grants, renews and drops seat holds. Each seat decision is one
// conditional write, so claims never wait on each other.
type Manager struct {
	catalog  domain.CatalogRepository
	holds    domain.HoldRepository
	resolver *availability.Resolver
	clock    clockwork.Clock
	logger   *slog.Logger

	defaultTTL time.Duration
	maxTTL     time.Duration
}

type Option func(*Manager)

func WithDefaultTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.defaultTTL = d
		}
	}
}

// WithMaxTTL caps the TTL a caller may request.
func WithMaxTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.maxTTL = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewManager(
	catalog domain.CatalogRepository,
	holds domain.HoldRepository,
	resolver *availability.Resolver,
	clk clockwork.Clock,
	opts ...Option) *Manager {

	m := &Manager{
		catalog:    catalog,
		holds:      holds,
		resolver:   resolver,
		clock:      clk,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultTTL: DefaultTTL,
		maxTTL:     DefaultMaxTTL,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.defaultTTL > m.maxTTL {
		m.defaultTTL = m.maxTTL
	}

	return m
}

type ClaimInput struct {
	ShowtimeID int
	SeatIDs    []int
	UserID     int
	// TTL is optional; zero means the manager default.
	TTL time.Duration
}

type Denial struct {
	SeatID int
	Reason string
}

type ClaimResult struct {
	Granted   []int
	Denied    []Denial
	ExpiresAt time.Time
}

// Claim tries every requested seat independently. Showtime problems fail the
// whole call; seat problems only deny that seat.
func (m *Manager) Claim(ctx context.Context, in ClaimInput) (*ClaimResult, error) {
	ctx, span := tracer.Start(ctx, "hold.Claim", trace.WithAttributes(
		attribute.Int("showtime.id", in.ShowtimeID),
		attribute.Int("user.id", in.UserID),
		attribute.Int("seats.requested", len(in.SeatIDs)),
	))
	defer span.End()

	seatIDs := dedupe(in.SeatIDs)
	if len(seatIDs) == 0 {
		return nil, domain.ErrNoSeatsSelected
	}

	now := m.clock.Now()

	showtime, err := m.catalog.GetShowtime(ctx, in.ShowtimeID)
	if err != nil {
		return nil, err
	}

	err = showtime.CheckBookable(now)
	if err != nil {
		return nil, err
	}

	seats, err := m.catalog.GetSeats(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("get seats: %w", err)
	}

	known := make(map[int]domain.Seat, len(seats))
	for _, seat := range seats {
		known[seat.ID] = seat
	}

	ttl := m.clampTTL(in.TTL)
	result := &ClaimResult{
		Granted:   make([]int, 0, len(seatIDs)),
		Denied:    make([]Denial, 0),
		ExpiresAt: now.Add(ttl),
	}

	for _, seatID := range seatIDs {
		seat, ok := known[seatID]

		switch {
		case !ok || seat.RoomID != showtime.RoomID:
			result.Denied = append(result.Denied, Denial{SeatID: seatID, Reason: domain.ReasonSeatNotFound})
			continue
		case !seat.IsActive():
			result.Denied = append(result.Denied, Denial{SeatID: seatID, Reason: domain.ReasonSeatInactive})
			continue
		}

		granted, reason, err := m.claimSeat(ctx, in.ShowtimeID, seatID, in.UserID, now, ttl)
		if err != nil {
			return nil, err
		}

		if granted {
			result.Granted = append(result.Granted, seatID)
		} else {
			result.Denied = append(result.Denied, Denial{SeatID: seatID, Reason: reason})
		}
	}

	span.SetAttributes(
		attribute.Int("seats.granted", len(result.Granted)),
		attribute.Int("seats.denied", len(result.Denied)),
	)

	m.logger.InfoContext(ctx, "seats claimed",
		"showtime_id", in.ShowtimeID,
		"user_id", in.UserID,
		"granted", result.Granted,
		"denied", len(result.Denied),
		"expires_at", result.ExpiresAt)

	return result, nil
}

func (m *Manager) claimSeat(
	ctx context.Context,
	showtimeID,
	seatID,
	userID int,
	now time.Time,
	ttl time.Duration) (bool, string, error) {

	hold := domain.Hold{
		ID:         uuid.NewString(),
		SeatID:     seatID,
		ShowtimeID: showtimeID,
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	_, ok, err := m.holds.TryAcquire(ctx, hold)
	if err != nil {
		return false, "", fmt.Errorf("acquire seat %d: %w", seatID, err)
	}

	if ok {
		return true, "", nil
	}

	status, err := m.resolver.Status(ctx, seatID, showtimeID, userID)
	if err != nil {
		return false, "", err
	}

	// The blocker vanished between the write and the read.
	if status.IsAvailable() {
		return false, domain.ReasonLocked, nil
	}

	m.logger.WarnContext(ctx, "seat claim denied",
		"showtime_id", showtimeID,
		"seat_id", seatID,
		"user_id", userID,
		"status", status.Status)

	return false, status.Reason, nil
}

type ReleaseInput struct {
	ShowtimeID int
	// SeatIDs nil releases every hold the user has on the showtime.
	SeatIDs []int
	UserID  int
}

// Release drops the caller's holds. Releasing seats the caller does not hold
// is a no-op.
func (m *Manager) Release(ctx context.Context, in ReleaseInput) (int64, error) {
	seatIDs := in.SeatIDs
	if seatIDs != nil {
		seatIDs = dedupe(seatIDs)
	}

	released, err := m.holds.Release(ctx, in.ShowtimeID, seatIDs, in.UserID)
	if err != nil {
		return 0, fmt.Errorf("release holds: %w", err)
	}

	m.logger.InfoContext(ctx, "holds released",
		"showtime_id", in.ShowtimeID,
		"user_id", in.UserID,
		"released", released)

	return released, nil
}

type ExtendInput struct {
	ShowtimeID int
	SeatIDs    []int
	UserID     int
	By         time.Duration
}

// Extend pushes back the expiry of the caller's live holds. Expired or
// foreign holds are skipped.
func (m *Manager) Extend(ctx context.Context, in ExtendInput) ([]domain.Hold, error) {
	seatIDs := dedupe(in.SeatIDs)
	if len(seatIDs) == 0 {
		return nil, domain.ErrNoSeatsSelected
	}

	by := in.By
	if by <= 0 {
		by = DefaultExtension
	}
	by = min(by, m.maxTTL)

	holds, err := m.holds.Extend(ctx, in.ShowtimeID, seatIDs, in.UserID, by, m.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("extend holds: %w", err)
	}

	m.logger.InfoContext(ctx, "holds extended",
		"showtime_id", in.ShowtimeID,
		"user_id", in.UserID,
		"extended", len(holds),
		"by", by)

	return holds, nil
}

func (m *Manager) ListHolds(ctx context.Context, showtimeID, userID int) ([]domain.Hold, error) {
	holds, err := m.holds.ListActiveByUser(ctx, showtimeID, userID, m.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list holds: %w", err)
	}

	return holds, nil
}

// SweepExpired deletes every hold already past its expiry.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	deleted, err := m.holds.DeleteExpired(ctx, m.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired holds: %w", err)
	}

	return deleted, nil
}

func (m *Manager) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return m.defaultTTL
	}

	return min(ttl, m.maxTTL)
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
