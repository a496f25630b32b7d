package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/jsonutil"
	appvalidator "github.com/metinatakli/showtime-booking-engine/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrUnauthorizedAccess = "You must be authenticated to access this resource"
	ErrForbidden          = "You do not have permission to access this resource"
	ErrFailedValidation   = "One or more fields are invalid"
	ErrSeatsUnavailable   = "One or more seats are unavailable"
	ErrInvalidIdParameter = "invalid %s parameter"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.contextGetLogger(r).ErrorContext(r.Context(), err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := jsonutil.WriteJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorizedAccess)
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, ErrForbidden)
}

func (app *application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (app *application) unprocessableEntityResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

func (app *application) goneResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusGone, err.Error())
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, len(validationErrs)),
	}

	for i, fieldErr := range validationErrs {
		resp.ValidationErrors[i] = api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		}
	}

	err = jsonutil.WriteJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) seatConflictResponse(w http.ResponseWriter, r *http.Request, seatErr *domain.SeatUnavailableError) {
	resp := api.SeatConflictResponse{
		Message:   ErrSeatsUnavailable,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
		Seats:     make([]api.SeatConflict, len(seatErr.Seats)),
	}

	for i, seat := range seatErr.Seats {
		resp.Seats[i] = api.SeatConflict{
			SeatId: seat.SeatID,
			Status: string(seat.Status),
			Reason: seat.Reason,
		}
	}

	err := jsonutil.WriteJSON(w, http.StatusConflict, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// serviceErrorResponse maps errors returned by the hold manager and the
// booking coordinator onto HTTP responses.
func (app *application) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logger := app.contextGetLogger(r)

	var seatErr *domain.SeatUnavailableError

	switch {
	case errors.As(err, &seatErr):
		logger.WarnContext(r.Context(), "seat conflict", "error", err)
		app.seatConflictResponse(w, r, seatErr)

	case errors.Is(err, domain.ErrShowtimeNotFound),
		errors.Is(err, domain.ErrSeatNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		app.notFoundResponseWithErr(w, r, err)

	case errors.Is(err, domain.ErrSeatUnavailable),
		errors.Is(err, domain.ErrInvalidState):
		logger.WarnContext(r.Context(), "state conflict", "error", err)
		app.editConflictResponseWithErr(w, r, err)

	case errors.Is(err, domain.ErrBookingExpired):
		app.goneResponse(w, r, domain.ErrBookingExpired)

	case errors.Is(err, domain.ErrShowtimeAlreadyStarted),
		errors.Is(err, domain.ErrShowtimeNotBookable),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrNoSeatsSelected):
		app.unprocessableEntityResponse(w, r, err)

	default:
		app.serverErrorResponse(w, r, err)
	}
}
