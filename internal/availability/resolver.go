package availability

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

// Resolver answers whether seats of a showtime can be taken by a caller. It
// keeps no state: every call reads the store, through the caller's
// transaction when the context carries one.
type Resolver struct {
	repo  domain.AvailabilityRepository
	clock clockwork.Clock
}

func NewResolver(repo domain.AvailabilityRepository, clk clockwork.Clock) *Resolver {
	return &Resolver{
		repo:  repo,
		clock: clk,
	}
}

func (r *Resolver) Status(ctx context.Context, seatID, showtimeID, callerID int) (domain.SeatAvailability, error) {
	statuses, err := r.StatusMany(ctx, showtimeID, []int{seatID}, callerID)
	if err != nil {
		return domain.SeatAvailability{}, err
	}

	return statuses[0], nil
}

// StatusMany resolves seatIDs in one read and returns them in request order.
func (r *Resolver) StatusMany(
	ctx context.Context,
	showtimeID int,
	seatIDs []int,
	callerID int) ([]domain.SeatAvailability, error) {

	if len(seatIDs) == 0 {
		return []domain.SeatAvailability{}, nil
	}

	states, err := r.repo.ListSeatStates(ctx, showtimeID, seatIDs, r.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list seat states: %w", err)
	}

	if len(states) != len(seatIDs) {
		return nil, fmt.Errorf("list seat states: got %d states for %d seats", len(states), len(seatIDs))
	}

	statuses := make([]domain.SeatAvailability, len(states))
	for i, state := range states {
		statuses[i] = domain.ResolveAvailability(state, callerID)
	}

	return statuses, nil
}

// Unavailable filters statuses down to the seats that cannot be taken.
func Unavailable(statuses []domain.SeatAvailability) []domain.SeatAvailability {
	var blocked []domain.SeatAvailability

	for _, status := range statuses {
		if !status.IsAvailable() {
			blocked = append(blocked, status)
		}
	}

	return blocked
}
