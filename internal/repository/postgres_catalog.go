package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

type PostgresCatalogRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCatalogRepository(db *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db: db,
	}
}

func (p *PostgresCatalogRepository) GetShowtime(ctx context.Context, id int) (*domain.Showtime, error) {
	query := `
		SELECT id, room_id, title, start_time, end_time, base_price, status
		FROM showtimes
		WHERE id = $1
	`

	var showtime domain.Showtime
	var basePrice pgtype.Numeric

	err := conn(ctx, p.db).QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.RoomID,
		&showtime.Title,
		&showtime.StartTime,
		&showtime.EndTime,
		&basePrice,
		&showtime.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShowtimeNotFound
		}

		return nil, err
	}

	showtime.BasePrice = fromNumeric(basePrice)

	return &showtime, nil
}

// GetSeats returns the seats that exist among ids, ordered by id. Callers
// detect unknown ids by comparing lengths.
func (p *PostgresCatalogRepository) GetSeats(ctx context.Context, ids []int) ([]domain.Seat, error) {
	query := `
		SELECT id, room_id, seat_row, seat_number, seat_type, price_multiplier, status
		FROM seats
		WHERE id = ANY($1)
		ORDER BY id
	`

	return p.querySeats(ctx, query, ids)
}

func (p *PostgresCatalogRepository) GetSeatsByRoom(ctx context.Context, roomID int) ([]domain.Seat, error) {
	query := `
		SELECT id, room_id, seat_row, seat_number, seat_type, price_multiplier, status
		FROM seats
		WHERE room_id = $1
		ORDER BY seat_row, seat_number
	`

	return p.querySeats(ctx, query, roomID)
}

func (p *PostgresCatalogRepository) querySeats(ctx context.Context, query string, args ...any) ([]domain.Seat, error) {
	rows, err := conn(ctx, p.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat
		var multiplier pgtype.Numeric

		err = rows.Scan(
			&seat.ID,
			&seat.RoomID,
			&seat.Row,
			&seat.Number,
			&seat.Type,
			&multiplier,
			&seat.Status,
		)
		if err != nil {
			return nil, err
		}

		seat.PriceMultiplier = fromNumeric(multiplier)
		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
