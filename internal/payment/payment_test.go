package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func testBooking(method domain.PaymentMethod) *domain.Booking {
	return &domain.Booking{
		ID:            42,
		Code:          "BKM7QX1A2B",
		UserID:        7,
		ShowtimeID:    1,
		TotalAmount:   decimal.NewFromInt(212500),
		PaymentMethod: method,
		ExpiresAt:     time.Date(2025, 3, 1, 16, 10, 0, 0, time.UTC),
		Tickets: []domain.Ticket{
			{Code: "TKM7QX1A01", SeatID: 1, Price: decimal.NewFromInt(85000)},
			{Code: "TKM7QX1A02", SeatID: 2, Price: decimal.NewFromInt(127500)},
		},
	}
}

func TestStripePaymentProvider_CreatePaymentSession(t *testing.T) {
	tests := []struct {
		name       string
		currency   string
		wantAmount []int64
	}{
		{name: "zero decimal currency", currency: "VND", wantAmount: []int64{85000, 127500}},
		{name: "two decimal currency", currency: "usd", wantAmount: []int64{8500000, 12750000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewStripePaymentProvider(tt.currency, "https://example.com/failure", "https://example.com/success")

			var captured *stripe.CheckoutSessionParams
			provider.newSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
				captured = params
				return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/cs_test_1"}, nil
			}

			got, err := provider.CreatePaymentSession(context.Background(), testBooking(domain.PaymentMethodCreditCard))
			require.NoError(t, err)

			assert.Equal(t, &domain.PaymentSession{ID: "cs_test_1", RedirectURL: "https://checkout.stripe.com/c/cs_test_1"}, got)

			require.Len(t, captured.LineItems, 2)
			for i, item := range captured.LineItems {
				assert.Equal(t, tt.wantAmount[i], *item.PriceData.UnitAmount)
				assert.Equal(t, int64(1), *item.Quantity)
			}
			assert.Equal(t, "42", captured.Metadata[MetadataBookingID])
			assert.Equal(t, "BKM7QX1A2B", *captured.ClientReferenceID)
			assert.Equal(t, time.Date(2025, 3, 1, 16, 10, 0, 0, time.UTC).Unix(), *captured.ExpiresAt)
		})
	}
}

func TestStripePaymentProvider_SessionError(t *testing.T) {
	provider := NewStripePaymentProvider("vnd", "", "")
	provider.newSession = func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("card_declined")
	}

	_, err := provider.CreatePaymentSession(context.Background(), testBooking(domain.PaymentMethodCreditCard))
	assert.ErrorContains(t, err, "card_declined")
}

func TestMethodRouter(t *testing.T) {
	counter := NewCounterPaymentProvider()

	t.Run("cash goes to the counter", func(t *testing.T) {
		router := NewMethodRouter(counter, nil)

		got, err := router.CreatePaymentSession(context.Background(), testBooking(domain.PaymentMethodCash))
		require.NoError(t, err)

		assert.Equal(t, "BKM7QX1A2B", got.ID)
		assert.Empty(t, got.RedirectURL)
		assert.Contains(t, got.Instructions, "212500")
		assert.Contains(t, got.Instructions, "2025-03-01T16:10:00Z")
	})

	t.Run("online method without provider", func(t *testing.T) {
		router := NewMethodRouter(counter, nil)

		_, err := router.CreatePaymentSession(context.Background(), testBooking(domain.PaymentMethodEWallet))
		assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
	})

	t.Run("unknown method", func(t *testing.T) {
		router := NewMethodRouter(counter, counter)

		_, err := router.CreatePaymentSession(context.Background(), testBooking("cheque"))
		assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
	})
}

func signedPayload(t *testing.T, payload string) (string, []byte) {
	t.Helper()

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})

	return signed.Header, signed.Payload
}

func eventPayload(eventType, paymentStatus, bookingID string) string {
	return fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"type": %q,
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"payment_status": %q,
				"metadata": {"booking_id": %q}
			}
		}
	}`, eventType, paymentStatus, bookingID)
}

func TestParseWebhook(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		wantAction    WebhookAction
		wantBookingID int
		wantErr       bool
	}{
		{
			name:          "completed and paid",
			payload:       eventPayload("checkout.session.completed", "paid", "42"),
			wantAction:    WebhookConfirm,
			wantBookingID: 42,
		},
		{
			name:       "completed but unpaid",
			payload:    eventPayload("checkout.session.completed", "unpaid", "42"),
			wantAction: WebhookIgnore,
		},
		{
			name:          "session expired",
			payload:       eventPayload("checkout.session.expired", "unpaid", "42"),
			wantAction:    WebhookCancel,
			wantBookingID: 42,
		},
		{
			name:       "unrelated event",
			payload:    eventPayload("customer.created", "", ""),
			wantAction: WebhookIgnore,
		},
		{
			name:    "missing booking id",
			payload: eventPayload("checkout.session.completed", "paid", ""),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body := signedPayload(t, tt.payload)

			got, err := ParseWebhook(body, header, testWebhookSecret)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWebhook)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, got.Action)
			assert.Equal(t, tt.wantBookingID, got.BookingID)
		})
	}
}

func TestParseWebhook_BadSignature(t *testing.T) {
	header, body := signedPayload(t, eventPayload("checkout.session.completed", "paid", "42"))

	_, err := ParseWebhook(body, header, "whsec_other")
	assert.ErrorIs(t, err, ErrInvalidWebhook)
}
