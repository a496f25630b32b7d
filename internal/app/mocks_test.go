package app

import (
	"context"

	"github.com/metinatakli/showtime-booking-engine/internal/booking"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/hold"
	"github.com/metinatakli/showtime-booking-engine/internal/sweeper"
	"github.com/stretchr/testify/mock"
)

type MockSeatResolver struct {
	mock.Mock
}

func (m *MockSeatResolver) StatusMany(
	ctx context.Context,
	showtimeID int,
	seatIDs []int,
	callerID int) ([]domain.SeatAvailability, error) {

	args := m.Called(ctx, showtimeID, seatIDs, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatAvailability), args.Error(1)
}

type MockHoldService struct {
	mock.Mock
}

func (m *MockHoldService) Claim(ctx context.Context, in hold.ClaimInput) (*hold.ClaimResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hold.ClaimResult), args.Error(1)
}

func (m *MockHoldService) Release(ctx context.Context, in hold.ReleaseInput) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHoldService) Extend(ctx context.Context, in hold.ExtendInput) ([]domain.Hold, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Hold), args.Error(1)
}

func (m *MockHoldService) ListHolds(ctx context.Context, showtimeID, userID int) ([]domain.Hold, error) {
	args := m.Called(ctx, showtimeID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Hold), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, in booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ConfirmPayment(
	ctx context.Context,
	bookingID int,
	method domain.PaymentMethod) (*domain.Booking, error) {

	args := m.Called(ctx, bookingID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID int) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) RefundBooking(ctx context.Context, bookingID int) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID int) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) GetBookingByCode(ctx context.Context, code string) (*domain.Booking, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ListUserBookings(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	args := m.Called(ctx, userID, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(*domain.Metadata), args.Error(2)
}

type MockSweepRunner struct {
	mock.Mock
}

func (m *MockSweepRunner) SweepOnce(ctx context.Context) (sweeper.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).(sweeper.Result), args.Error(1)
}
