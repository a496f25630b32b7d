package app

import (
	"context"

	"github.com/metinatakli/showtime-booking-engine/internal/booking"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/hold"
	"github.com/metinatakli/showtime-booking-engine/internal/sweeper"
)

type seatResolver interface {
	StatusMany(ctx context.Context, showtimeID int, seatIDs []int, callerID int) ([]domain.SeatAvailability, error)
}

type holdService interface {
	Claim(ctx context.Context, in hold.ClaimInput) (*hold.ClaimResult, error)
	Release(ctx context.Context, in hold.ReleaseInput) (int64, error)
	Extend(ctx context.Context, in hold.ExtendInput) ([]domain.Hold, error)
	ListHolds(ctx context.Context, showtimeID, userID int) ([]domain.Hold, error)
}

type bookingService interface {
	CreateBooking(ctx context.Context, in booking.CreateBookingInput) (*domain.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID int, method domain.PaymentMethod) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID int) (*domain.Booking, error)
	RefundBooking(ctx context.Context, bookingID int) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID int) (*domain.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID int, pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error)
}

type sweepRunner interface {
	SweepOnce(ctx context.Context) (sweeper.Result, error)
}
