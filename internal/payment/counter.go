package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

// CounterPaymentProvider handles bookings paid in cash at the box office.
// Staff confirm the payment through the booking API.
type CounterPaymentProvider struct{}

func NewCounterPaymentProvider() *CounterPaymentProvider {
	return &CounterPaymentProvider{}
}

func (c *CounterPaymentProvider) CreatePaymentSession(
	ctx context.Context,
	booking *domain.Booking) (*domain.PaymentSession, error) {

	return &domain.PaymentSession{
		ID: booking.Code,
		Instructions: fmt.Sprintf(
			"Present booking code %s at the counter and pay %s before %s",
			booking.Code,
			booking.TotalAmount.StringFixed(0),
			booking.ExpiresAt.UTC().Format(time.RFC3339),
		),
	}, nil
}

// MethodRouter dispatches to the counter provider for cash bookings and to the
// online provider for every other method.
type MethodRouter struct {
	counter domain.PaymentProvider
	online  domain.PaymentProvider
}

func NewMethodRouter(counter, online domain.PaymentProvider) *MethodRouter {
	return &MethodRouter{counter: counter, online: online}
}

func (m *MethodRouter) CreatePaymentSession(
	ctx context.Context,
	booking *domain.Booking) (*domain.PaymentSession, error) {

	if !booking.PaymentMethod.IsValid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	if booking.PaymentMethod.IsOnline() {
		if m.online == nil {
			return nil, fmt.Errorf("%w: online payments are not configured", domain.ErrInvalidPaymentMethod)
		}

		return m.online.CreatePaymentSession(ctx, booking)
	}

	return m.counter.CreatePaymentSession(ctx, booking)
}
