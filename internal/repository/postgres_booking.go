package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

const bookingColumns = `id, code, user_id, showtime_id, total_amount, payment_status,
	payment_method, created_at, updated_at, expires_at`

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM bookings WHERE code = $1)
			OR EXISTS (SELECT 1 FROM tickets WHERE code = $1)
	`

	var exists bool

	err := conn(ctx, p.db).QueryRow(ctx, query, code).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	q := conn(ctx, p.db)

	query := `
		INSERT INTO bookings (code, user_id, showtime_id, total_amount, payment_status,
			payment_method, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(
		ctx,
		query,
		booking.Code,
		booking.UserID,
		booking.ShowtimeID,
		toNumeric(booking.TotalAmount),
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.CreatedAt,
		booking.ExpiresAt).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return mapConstraintError(err)
	}

	ticketQuery := `
		INSERT INTO tickets (code, booking_id, seat_id, showtime_id, price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for i := range booking.Tickets {
		ticket := &booking.Tickets[i]
		ticket.BookingID = booking.ID
		ticket.CreatedAt = booking.CreatedAt

		batch.Queue(
			ticketQuery,
			ticket.Code,
			ticket.BookingID,
			ticket.SeatID,
			ticket.ShowtimeID,
			toNumeric(ticket.Price),
			ticket.Status,
			ticket.CreatedAt,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&ticket.ID)
		})
	}

	err = q.SendBatch(ctx, batch).Close()
	if err != nil {
		return mapConstraintError(err)
	}

	return nil
}

func (p *PostgresBookingRepository) GetByID(ctx context.Context, id int) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	return p.getOne(ctx, query, id)
}

// GetByIDForUpdate locks the booking row until the surrounding transaction
// ends. It must be called with a transaction context.
func (p *PostgresBookingRepository) GetByIDForUpdate(ctx context.Context, id int) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	return p.getOne(ctx, query, id)
}

func (p *PostgresBookingRepository) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE code = $1`

	return p.getOne(ctx, query, code)
}

func (p *PostgresBookingRepository) ListByUser(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	query := `
		SELECT COUNT(*) OVER(), ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := conn(ctx, p.db).Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	totalRecords := 0

	for rows.Next() {
		var booking domain.Booking
		var total pgtype.Numeric

		err := rows.Scan(
			&totalRecords,
			&booking.ID,
			&booking.Code,
			&booking.UserID,
			&booking.ShowtimeID,
			&total,
			&booking.PaymentStatus,
			&booking.PaymentMethod,
			&booking.CreatedAt,
			&booking.UpdatedAt,
			&booking.ExpiresAt,
		)
		if err != nil {
			return nil, nil, err
		}

		booking.TotalAmount = fromNumeric(total)
		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	err = p.attachTickets(ctx, bookings)
	if err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return bookings, metadata, nil
}

func (p *PostgresBookingRepository) UpdateStatus(
	ctx context.Context,
	id int,
	status domain.PaymentStatus,
	method domain.PaymentMethod,
	now time.Time) error {

	q := conn(ctx, p.db)

	query := `
		UPDATE bookings
		SET payment_status = $2,
			payment_method = COALESCE(NULLIF($3, ''), payment_method),
			updated_at = $4
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, status, string(method), now)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}

	if status != domain.PaymentStatusCancelled && status != domain.PaymentStatusRefunded {
		return nil
	}

	query = `
		UPDATE tickets
		SET status = 'cancelled'
		WHERE booking_id = $1 AND status = 'active'
	`

	_, err = q.Exec(ctx, query, id)

	return err
}

func (p *PostgresBookingRepository) CancelExpired(ctx context.Context, now time.Time) ([]int, error) {
	query := `
		WITH expired AS (
			UPDATE bookings
			SET payment_status = 'cancelled', updated_at = $1
			WHERE payment_status = 'pending' AND expires_at <= $1
			RETURNING id
		), released AS (
			UPDATE tickets
			SET status = 'cancelled'
			WHERE booking_id IN (SELECT id FROM expired) AND status = 'active'
		)
		SELECT id FROM expired ORDER BY id
	`

	rows, err := conn(ctx, p.db).Query(ctx, query, now)
	if err != nil {
		return nil, err
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (p *PostgresBookingRepository) getOne(ctx context.Context, query string, arg any) (*domain.Booking, error) {
	var booking domain.Booking
	var total pgtype.Numeric

	err := conn(ctx, p.db).QueryRow(ctx, query, arg).Scan(
		&booking.ID,
		&booking.Code,
		&booking.UserID,
		&booking.ShowtimeID,
		&total,
		&booking.PaymentStatus,
		&booking.PaymentMethod,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, err
	}

	booking.TotalAmount = fromNumeric(total)

	bookings := []domain.Booking{booking}

	err = p.attachTickets(ctx, bookings)
	if err != nil {
		return nil, err
	}

	return &bookings[0], nil
}

func (p *PostgresBookingRepository) attachTickets(ctx context.Context, bookings []domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]int, len(bookings))
	index := make(map[int]int, len(bookings))

	for i, b := range bookings {
		ids[i] = b.ID
		index[b.ID] = i
	}

	query := `
		SELECT id, code, booking_id, seat_id, showtime_id, price, status, created_at
		FROM tickets
		WHERE booking_id = ANY($1)
		ORDER BY booking_id, id
	`

	rows, err := conn(ctx, p.db).Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ticket domain.Ticket
		var price pgtype.Numeric

		err = rows.Scan(
			&ticket.ID,
			&ticket.Code,
			&ticket.BookingID,
			&ticket.SeatID,
			&ticket.ShowtimeID,
			&price,
			&ticket.Status,
			&ticket.CreatedAt,
		)
		if err != nil {
			return err
		}

		ticket.Price = fromNumeric(price)

		i := index[ticket.BookingID]
		bookings[i].Tickets = append(bookings[i].Tickets, ticket)
	}

	return rows.Err()
}
