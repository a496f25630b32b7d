package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

const holdColumns = "id, seat_id, showtime_id, user_id, created_at, expires_at"

type PostgresHoldRepository struct {
	db *pgxpool.Pool
}

func NewPostgresHoldRepository(db *pgxpool.Pool) *PostgresHoldRepository {
	return &PostgresHoldRepository{
		db: db,
	}
}

// TryAcquire is a single conditional upsert. The unique (seat_id, showtime_id)
// constraint serializes competing writers; the loser's ON CONFLICT branch
// sees the winner's row and its WHERE clause rejects it.
func (p *PostgresHoldRepository) TryAcquire(ctx context.Context, hold domain.Hold) (*domain.Hold, bool, error) {
	query := `
		INSERT INTO seat_holds (id, seat_id, showtime_id, user_id, created_at, expires_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1
			FROM tickets t
			JOIN bookings b ON b.id = t.booking_id
			WHERE t.showtime_id = $3
				AND t.seat_id = $2
				AND t.status = 'active'
				AND b.payment_status IN ('pending', 'paid')
		)
		ON CONFLICT (seat_id, showtime_id) DO UPDATE
		SET id = CASE WHEN seat_holds.user_id = EXCLUDED.user_id THEN seat_holds.id ELSE EXCLUDED.id END,
			created_at = CASE WHEN seat_holds.user_id = EXCLUDED.user_id THEN seat_holds.created_at ELSE EXCLUDED.created_at END,
			user_id = EXCLUDED.user_id,
			expires_at = EXCLUDED.expires_at
		WHERE seat_holds.user_id = EXCLUDED.user_id
			OR seat_holds.expires_at <= EXCLUDED.created_at
		RETURNING ` + holdColumns

	row := conn(ctx, p.db).QueryRow(
		ctx,
		query,
		hold.ID,
		hold.SeatID,
		hold.ShowtimeID,
		hold.UserID,
		hold.CreatedAt,
		hold.ExpiresAt)

	stored, err := scanHold(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, mapConstraintError(err)
	}

	return stored, true, nil
}

func (p *PostgresHoldRepository) Extend(
	ctx context.Context,
	showtimeID int,
	seatIDs []int,
	userID int,
	by time.Duration,
	now time.Time) ([]domain.Hold, error) {

	query := `
		UPDATE seat_holds
		SET expires_at = expires_at + $4 * interval '1 millisecond'
		WHERE showtime_id = $1
			AND seat_id = ANY($2)
			AND user_id = $3
			AND expires_at > $5
		RETURNING ` + holdColumns

	return p.queryHolds(ctx, query, showtimeID, seatIDs, userID, by.Milliseconds(), now)
}

func (p *PostgresHoldRepository) Release(ctx context.Context, showtimeID int, seatIDs []int, userID int) (int64, error) {
	query := `
		DELETE FROM seat_holds
		WHERE showtime_id = $1
			AND user_id = $2
			AND ($3::int[] IS NULL OR seat_id = ANY($3))
	`

	tag, err := conn(ctx, p.db).Exec(ctx, query, showtimeID, userID, seatIDs)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (p *PostgresHoldRepository) ListActiveByUser(
	ctx context.Context,
	showtimeID,
	userID int,
	now time.Time) ([]domain.Hold, error) {

	query := `
		SELECT ` + holdColumns + `
		FROM seat_holds
		WHERE showtime_id = $1 AND user_id = $2 AND expires_at > $3
		ORDER BY seat_id
	`

	return p.queryHolds(ctx, query, showtimeID, userID, now)
}

func (p *PostgresHoldRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM seat_holds WHERE expires_at <= $1`

	tag, err := conn(ctx, p.db).Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (p *PostgresHoldRepository) queryHolds(ctx context.Context, query string, args ...any) ([]domain.Hold, error) {
	rows, err := conn(ctx, p.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holds := make([]domain.Hold, 0)

	for rows.Next() {
		hold, err := scanHold(rows)
		if err != nil {
			return nil, err
		}

		holds = append(holds, *hold)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return holds, nil
}

func scanHold(row pgx.Row) (*domain.Hold, error) {
	var hold domain.Hold

	err := row.Scan(
		&hold.ID,
		&hold.SeatID,
		&hold.ShowtimeID,
		&hold.UserID,
		&hold.CreatedAt,
		&hold.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	return &hold, nil
}
