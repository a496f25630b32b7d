package domain

import "context"

type PaymentSession struct {
	ID           string
	RedirectURL  string
	Instructions string
}

// PaymentProvider is the payment collaborator. It is invoked after a booking
// exists and reports the outcome asynchronously.
type PaymentProvider interface {
	CreatePaymentSession(ctx context.Context, booking *Booking) (*PaymentSession, error)
}
