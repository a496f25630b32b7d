package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/booking"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/jsonutil"
)

func (app *application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CreateBookingRequest

	err := jsonutil.ReadJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	created, err := app.bookings.CreateBooking(r.Context(), booking.CreateBookingInput{
		UserID:        app.contextGetUserId(r),
		ShowtimeID:    input.ShowtimeId,
		SeatIDs:       input.SeatIdList,
		PaymentMethod: domain.PaymentMethod(input.PaymentMethod),
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = jsonutil.WriteJSON(w, http.StatusCreated, toBookingResponse(created), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ListUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	params, err := readPagination(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)
	pagination := domain.Pagination{Page: params.Page, PageSize: params.PageSize}

	bookings, metadata, err := app.bookings.ListUserBookings(r.Context(), userId, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: make([]api.BookingResponse, len(bookings)),
		Metadata: toApiMetadata(metadata),
	}

	for i := range bookings {
		resp.Bookings[i] = toBookingResponse(&bookings[i])
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := readIdParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b, ok := app.loadOwnBooking(w, r, bookingID)
	if !ok {
		return
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, toBookingResponse(b), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetBookingByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	b, err := app.bookings.GetBookingByCode(r.Context(), code)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	if b.UserID != app.contextGetUserId(r) {
		app.notFoundResponse(w, r)
		return
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, toBookingResponse(b), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ConfirmPaymentHandler records a payment taken at the counter. Online
// payments are confirmed by the payment provider webhook instead.
func (app *application) ConfirmPaymentHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := readIdParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ConfirmPaymentRequest

	if r.ContentLength != 0 {
		err = jsonutil.ReadJSON(w, r, &input)
		if err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	paid, err := app.bookings.ConfirmPayment(r.Context(), bookingID, domain.PaymentMethod(input.PaymentMethod))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, toBookingResponse(paid), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := readIdParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.loadOwnBooking(w, r, bookingID); !ok {
		return
	}

	cancelled, err := app.bookings.CancelBooking(r.Context(), bookingID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, toBookingResponse(cancelled), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) RefundBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := readIdParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	refunded, err := app.bookings.RefundBooking(r.Context(), bookingID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, toBookingResponse(refunded), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// loadOwnBooking fetches the booking and answers 404 when it belongs to
// someone else, so booking ids cannot be enumerated.
func (app *application) loadOwnBooking(w http.ResponseWriter, r *http.Request, bookingID int) (*domain.Booking, bool) {
	b, err := app.bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return nil, false
	}

	if b.UserID != app.contextGetUserId(r) {
		app.notFoundResponse(w, r)
		return nil, false
	}

	return b, true
}
