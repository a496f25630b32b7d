package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/jsonutil"
	"github.com/metinatakli/showtime-booking-engine/internal/payment"
)

const maxWebhookBodyBytes = 65536

func (app *application) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	bookingID, err := readIdParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b, ok := app.loadOwnBooking(w, r, bookingID)
	if !ok {
		return
	}

	if b.PaymentStatus != domain.PaymentStatusPending {
		app.editConflictResponseWithErr(w, r, fmt.Errorf("%w: booking is %s", domain.ErrInvalidState, b.PaymentStatus))
		return
	}

	if b.IsExpired(app.clock.Now()) {
		app.goneResponse(w, r, domain.ErrBookingExpired)
		return
	}

	session, err := app.payments.CreatePaymentSession(r.Context(), b)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPaymentMethod) {
			app.unprocessableEntityResponse(w, r, err)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	logger.InfoContext(r.Context(), "payment session created",
		"booking_id", b.ID, "method", b.PaymentMethod, "session_id", session.ID)

	resp := api.CheckoutSessionResponse{
		SessionId:    session.ID,
		RedirectUrl:  session.RedirectURL,
		Instructions: session.Instructions,
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// StripeWebhookHandler applies checkout outcomes to bookings. Outcomes that
// can no longer apply are acknowledged so Stripe stops retrying them.
func (app *application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to read webhook body: %w", err))
		return
	}

	event, err := payment.ParseWebhook(payload, r.Header.Get("Stripe-Signature"), app.config.Stripe.WebhookSecret)
	if err != nil {
		logger.WarnContext(r.Context(), "rejected webhook", "error", err)
		app.badRequestResponse(w, r, payment.ErrInvalidWebhook)
		return
	}

	logger = logger.With("event_id", event.ID, "event_type", event.Type, "booking_id", event.BookingID)

	switch event.Action {
	case payment.WebhookConfirm:
		_, err = app.bookings.ConfirmPayment(r.Context(), event.BookingID, "")
	case payment.WebhookCancel:
		_, err = app.bookings.CancelBooking(r.Context(), event.BookingID)
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	switch {
	case err == nil:
		logger.InfoContext(r.Context(), "webhook applied")
	case errors.Is(err, domain.ErrBookingExpired):
		// The payment arrived after the window closed and needs a manual refund.
		logger.ErrorContext(r.Context(), "payment received for expired booking", "error", err)
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrBookingNotFound):
		logger.WarnContext(r.Context(), "webhook ignored", "error", err)
	default:
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
