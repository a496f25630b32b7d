package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

const MetadataBookingID = "booking_id"

// Stripe expects amounts of these currencies in whole units rather than cents.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

type StripePaymentProvider struct {
	currency   string
	failureUrl string
	successUrl string
	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewStripePaymentProvider(currency, failureUrl, successUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		currency:   strings.ToLower(currency),
		failureUrl: failureUrl,
		successUrl: successUrl,
		newSession: session.New,
	}
}

func (s *StripePaymentProvider) CreatePaymentSession(
	ctx context.Context,
	booking *domain.Booking) (*domain.PaymentSession, error) {

	params := s.checkoutParams(booking)

	checkoutSession, err := s.newSession(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session for booking %d: %w", booking.ID, err)
	}

	return &domain.PaymentSession{
		ID:          checkoutSession.ID,
		RedirectURL: checkoutSession.URL,
	}, nil
}

func (s *StripePaymentProvider) checkoutParams(booking *domain.Booking) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(booking.Tickets))

	for _, ticket := range booking.Tickets {
		lineItem := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(s.minorUnits(ticket.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(fmt.Sprintf("Ticket %s", ticket.Code)),
					Description: stripe.String(fmt.Sprintf("Booking %s • Seat %d", booking.Code, ticket.SeatID)),
				},
			},
			Quantity: stripe.Int64(1),
		}

		lineItems = append(lineItems, lineItem)
	}

	return &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl),
		CancelURL:  stripe.String(s.failureUrl),
		ExpiresAt:  stripe.Int64(booking.ExpiresAt.Unix()),
		Metadata: map[string]string{
			MetadataBookingID: strconv.Itoa(booking.ID),
			"booking_code":    booking.Code,
			"user_id":         strconv.Itoa(booking.UserID),
		},
		ClientReferenceID: stripe.String(booking.Code),
	}
}

func (s *StripePaymentProvider) minorUnits(amount decimal.Decimal) int64 {
	if zeroDecimalCurrencies[s.currency] {
		return amount.Round(0).IntPart()
	}

	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
