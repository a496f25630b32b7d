package integration_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/metinatakli/showtime-booking-engine/internal/booking"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/hold"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BookingsTestSuite struct {
	BaseSuite
}

func TestBookingsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(BookingsTestSuite))
}

func (s *BookingsTestSuite) createBooking(userID int, method domain.PaymentMethod, seatIDs ...int) *domain.Booking {
	b, err := s.app.Coordinator.CreateBooking(context.Background(), bookingInput(userID, method, seatIDs...))
	s.Require().NoError(err)

	return b
}

func (s *BookingsTestSuite) TestCreateBookingPersistsTickets() {
	ctx := context.Background()

	created := s.createBooking(TestUserId, domain.PaymentMethodCash, TestSeatA1, TestSeatA2)

	s.True(created.TotalAmount.Equal(decimal.NewFromInt(212500)))
	s.True(created.ExpiresAt.Equal(s.app.Clock.Now().Add(domain.CounterPaymentWindow)))

	stored, err := s.app.Coordinator.GetBookingByCode(ctx, created.Code)
	s.Require().NoError(err)

	opts := []cmp.Option{
		cmpopts.EquateApproxTime(time.Millisecond),
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	}
	if diff := cmp.Diff(created, stored, opts...); diff != "" {
		s.T().Errorf("stored booking mismatch (-created +stored):\n%s", diff)
	}

	statuses, err := s.app.Resolver.StatusMany(ctx, TestShowtimeId, []int{TestSeatA1, TestSeatA2, TestSeatA3}, TestOtherUserId)
	s.Require().NoError(err)
	s.Equal([]domain.SeatAvailability{
		{SeatID: TestSeatA1, Status: domain.SeatBooked, Reason: domain.ReasonBooked},
		{SeatID: TestSeatA2, Status: domain.SeatBooked, Reason: domain.ReasonBooked},
		{SeatID: TestSeatA3, Status: domain.SeatAvailable},
	}, statuses)
}

func (s *BookingsTestSuite) TestConcurrentBookingsSellSeatOnce() {
	ctx := context.Background()

	const contenders = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for i := range contenders {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			_, err := s.app.Coordinator.CreateBooking(ctx, booking.CreateBookingInput{
				UserID:        userID,
				ShowtimeID:    TestShowtimeId,
				SeatIDs:       []int{TestSeatA1, TestSeatA2},
				PaymentMethod: domain.PaymentMethodCreditCard,
			})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrSeatUnavailable):
				rejected++
			default:
				s.T().Errorf("unexpected booking error: %v", err)
			}
		}(2000 + i)
	}

	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(contenders-1, rejected)
	s.Equal(1, countActiveTickets(s.T(), s.app.DB, TestShowtimeId, TestSeatA1))
	s.Equal(1, countActiveTickets(s.T(), s.app.DB, TestShowtimeId, TestSeatA2))
}

func (s *BookingsTestSuite) TestBookingRespectsForeignHold() {
	ctx := context.Background()

	_, err := s.app.Holds.Claim(ctx, hold.ClaimInput{
		ShowtimeID: TestShowtimeId,
		SeatIDs:    []int{TestSeatA1},
		UserID:     TestUserId,
	})
	s.Require().NoError(err)

	_, err = s.app.Coordinator.CreateBooking(ctx, booking.CreateBookingInput{
		UserID:        TestOtherUserId,
		ShowtimeID:    TestShowtimeId,
		SeatIDs:       []int{TestSeatA1, TestSeatA3},
		PaymentMethod: domain.PaymentMethodCash,
	})

	var unavailable *domain.SeatUnavailableError
	s.Require().ErrorAs(err, &unavailable)
	s.Equal([]domain.SeatAvailability{
		{SeatID: TestSeatA1, Status: domain.SeatLocked, Reason: domain.ReasonLocked},
	}, unavailable.Seats)
	s.Equal(0, countActiveTickets(s.T(), s.app.DB, TestShowtimeId, TestSeatA3))

	s.createBooking(TestUserId, domain.PaymentMethodCash, TestSeatA1)

	holds, err := s.app.Holds.ListHolds(ctx, TestShowtimeId, TestUserId)
	s.Require().NoError(err)
	s.Empty(holds)
}

func (s *BookingsTestSuite) TestBookingRejectsUnbookableShowtime() {
	_, err := s.app.Coordinator.CreateBooking(context.Background(), booking.CreateBookingInput{
		UserID:        TestUserId,
		ShowtimeID:    TestStartedShowtimeId,
		SeatIDs:       []int{TestSeatA1},
		PaymentMethod: domain.PaymentMethodCash,
	})
	s.ErrorIs(err, domain.ErrShowtimeAlreadyStarted)

	_, err = s.app.Coordinator.CreateBooking(context.Background(), booking.CreateBookingInput{
		UserID:        TestUserId,
		ShowtimeID:    999,
		SeatIDs:       []int{TestSeatA1},
		PaymentMethod: domain.PaymentMethodCash,
	})
	s.ErrorIs(err, domain.ErrShowtimeNotFound)
}

func (s *BookingsTestSuite) TestPaymentLifecycle() {
	ctx := context.Background()

	created := s.createBooking(TestUserId, domain.PaymentMethodCash, TestSeatA1)

	paid, err := s.app.Coordinator.ConfirmPayment(ctx, created.ID, domain.PaymentMethodEWallet)
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusPaid, paid.PaymentStatus)
	s.Equal(domain.PaymentMethodEWallet, paid.PaymentMethod)

	_, err = s.app.Coordinator.CancelBooking(ctx, created.ID)
	s.ErrorIs(err, domain.ErrInvalidState)

	refunded, err := s.app.Coordinator.RefundBooking(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusRefunded, refunded.PaymentStatus)

	for _, ticket := range refunded.Tickets {
		s.Equal(domain.TicketStatusCancelled, ticket.Status)
	}

	s.createBooking(TestOtherUserId, domain.PaymentMethodCash, TestSeatA1)
}

func (s *BookingsTestSuite) TestConfirmAfterExpiryCancelsBooking() {
	ctx := context.Background()

	created := s.createBooking(TestUserId, domain.PaymentMethodCreditCard, TestSeatA1)

	s.app.Clock.Advance(domain.OnlinePaymentWindow)

	_, err := s.app.Coordinator.ConfirmPayment(ctx, created.ID, "")
	s.ErrorIs(err, domain.ErrBookingExpired)

	stored, err := s.app.Coordinator.GetBooking(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusCancelled, stored.PaymentStatus)
	s.Equal(0, countActiveTickets(s.T(), s.app.DB, TestShowtimeId, TestSeatA1))
}

func (s *BookingsTestSuite) TestListUserBookingsPaginates() {
	ctx := context.Background()

	first := s.createBooking(TestUserId, domain.PaymentMethodCash, TestSeatA1)
	s.app.Clock.Advance(time.Minute)
	second := s.createBooking(TestUserId, domain.PaymentMethodCash, TestSeatA2)
	s.createBooking(TestOtherUserId, domain.PaymentMethodCash, TestSeatA3)

	bookings, metadata, err := s.app.Coordinator.ListUserBookings(ctx, TestUserId, domain.Pagination{Page: 1, PageSize: 1})
	s.Require().NoError(err)
	s.Require().Len(bookings, 1)
	s.Equal(second.ID, bookings[0].ID)
	s.Equal(&domain.Metadata{CurrentPage: 1, FirstPage: 1, LastPage: 2, PageSize: 1, TotalRecords: 2}, metadata)

	bookings, _, err = s.app.Coordinator.ListUserBookings(ctx, TestUserId, domain.Pagination{Page: 2, PageSize: 1})
	s.Require().NoError(err)
	s.Require().Len(bookings, 1)
	s.Equal(first.ID, bookings[0].ID)
}
