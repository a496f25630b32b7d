package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type WebhookAction int

const (
	WebhookIgnore WebhookAction = iota
	WebhookConfirm
	WebhookCancel
)

var ErrInvalidWebhook = errors.New("invalid webhook payload")

// WebhookEvent is the part of a Stripe event the booking flow acts on.
type WebhookEvent struct {
	ID        string
	Type      stripe.EventType
	Action    WebhookAction
	BookingID int
}

// ParseWebhook verifies the Stripe signature and extracts the booking the
// checkout session belongs to.
func ParseWebhook(payload []byte, signature, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}

	result := &WebhookEvent{ID: event.ID, Type: event.Type}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		result.Action = WebhookConfirm
	case stripe.EventTypeCheckoutSessionExpired, stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		result.Action = WebhookCancel
	default:
		return result, nil
	}

	var checkoutSession stripe.CheckoutSession
	err = json.Unmarshal(event.Data.Raw, &checkoutSession)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}

	// Completed sessions with delayed methods are confirmed later by the async event.
	if event.Type == stripe.EventTypeCheckoutSessionCompleted &&
		checkoutSession.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		result.Action = WebhookIgnore
		return result, nil
	}

	result.BookingID, err = strconv.Atoi(checkoutSession.Metadata[MetadataBookingID])
	if err != nil {
		return nil, fmt.Errorf("%w: missing booking id in session %s", ErrInvalidWebhook, checkoutSession.ID)
	}

	return result, nil
}
