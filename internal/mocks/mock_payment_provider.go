package mocks

import (
	"context"

	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CreatePaymentSession(
	ctx context.Context,
	booking *domain.Booking) (*domain.PaymentSession, error) {

	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentSession), args.Error(1)
}
