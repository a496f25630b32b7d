package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/showtime-booking-engine/internal/booking"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/testutil"
	"github.com/stretchr/testify/require"
)

func resetDatabase(t testing.TB, db *pgxpool.Pool) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`TRUNCATE tickets, bookings, seat_holds, showtimes, seats, rooms RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedCatalog(t testing.TB, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	_, err := db.Exec(ctx, `INSERT INTO rooms (id, name) VALUES ($1, 'Room 1')`, TestRoomId)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO seats (id, room_id, seat_row, seat_number, seat_type, price_multiplier, status)
		VALUES
			($1, $5, 'A', 1, 'standard', 1.00, 'active'),
			($2, $5, 'A', 2, 'vip', 1.50, 'active'),
			($3, $5, 'A', 3, 'standard', 1.00, 'active'),
			($4, $5, 'A', 4, 'standard', 1.00, 'broken')
	`, TestSeatA1, TestSeatA2, TestSeatA3, TestSeatBroken, TestRoomId)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO showtimes (id, room_id, title, start_time, end_time, base_price)
		VALUES
			($1, $3, 'Evening show', $4, $5, 85000),
			($2, $3, 'Matinee', $6, $7, 85000)
	`,
		TestShowtimeId,
		TestStartedShowtimeId,
		TestRoomId,
		TestShowtimeStart,
		TestShowtimeStart.Add(2*time.Hour),
		testutil.Now.Add(-30*time.Minute),
		testutil.Now.Add(90*time.Minute),
	)
	require.NoError(t, err)
}

func countActiveTickets(t testing.TB, db *pgxpool.Pool, showtimeID, seatID int) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM tickets
		WHERE showtime_id = $1 AND seat_id = $2 AND status = 'active'
	`, showtimeID, seatID).Scan(&count)
	require.NoError(t, err)

	return count
}

func bookingInput(userID int, method domain.PaymentMethod, seatIDs ...int) booking.CreateBookingInput {
	return booking.CreateBookingInput{
		UserID:        userID,
		ShowtimeID:    TestShowtimeId,
		SeatIDs:       seatIDs,
		PaymentMethod: method,
	}
}
