package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

type PostgresAvailabilityRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAvailabilityRepository(db *pgxpool.Pool) *PostgresAvailabilityRepository {
	return &PostgresAvailabilityRepository{
		db: db,
	}
}

func (p *PostgresAvailabilityRepository) ListSeatStates(
	ctx context.Context,
	showtimeID int,
	seatIDs []int,
	now time.Time) ([]domain.SeatState, error) {

	query := `
		SELECT
			req.seat_id,
			EXISTS (
				SELECT 1
				FROM tickets t
				JOIN bookings b ON b.id = t.booking_id
				WHERE t.showtime_id = $1
					AND t.seat_id = req.seat_id
					AND t.status = 'active'
					AND b.payment_status IN ('pending', 'paid')
			),
			h.user_id,
			h.expires_at
		FROM unnest($2::int[]) WITH ORDINALITY AS req(seat_id, ord)
		LEFT JOIN seat_holds h
			ON h.showtime_id = $1
			AND h.seat_id = req.seat_id
			AND h.expires_at > $3
		ORDER BY req.ord
	`

	rows, err := conn(ctx, p.db).Query(ctx, query, showtimeID, seatIDs, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make([]domain.SeatState, 0, len(seatIDs))

	for rows.Next() {
		var state domain.SeatState

		err = rows.Scan(&state.SeatID, &state.Booked, &state.HoldUserID, &state.HoldExpiresAt)
		if err != nil {
			return nil, err
		}

		states = append(states, state)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return states, nil
}
