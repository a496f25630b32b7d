package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

const (
	constraintBookingCode   = "bookings_code_key"
	constraintTicketCode    = "tickets_code_key"
	constraintActiveTicket  = "tickets_active_seat_idx"
	constraintTicketSeatFK  = "tickets_seat_id_fkey"
	constraintBookingShowFK = "bookings_showtime_id_fkey"
)

type txKey struct{}

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type PostgresTransactor struct {
	db *pgxpool.Pool
}

func NewPostgresTransactor(db *pgxpool.Pool) *PostgresTransactor {
	return &PostgresTransactor{
		db: db,
	}
}

// WithTx runs fn inside a transaction carried by the context. Nested calls
// join the outer transaction.
func (p *PostgresTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func conn(ctx context.Context, db *pgxpool.Pool) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}

	return db
}

// mapConstraintError translates constraint violations into domain errors so
// that pgconn types never leave this package.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case constraintBookingCode, constraintTicketCode:
			return fmt.Errorf("%w: %s", domain.ErrCodeCollision, pgErr.ConstraintName)
		case constraintActiveTicket:
			return domain.ErrSeatUnavailable
		}
	case pgerrcode.ForeignKeyViolation:
		switch pgErr.ConstraintName {
		case constraintTicketSeatFK:
			return domain.ErrSeatNotFound
		case constraintBookingShowFK:
			return domain.ErrShowtimeNotFound
		}
	}

	return err
}
