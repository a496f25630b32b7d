package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/hold"
	"github.com/metinatakli/showtime-booking-engine/internal/jsonutil"
)

func (app *application) ClaimSeatsHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID, err := readIdParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ClaimSeatsRequest

	err = jsonutil.ReadJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	result, err := app.holds.Claim(r.Context(), hold.ClaimInput{
		ShowtimeID: showtimeID,
		SeatIDs:    input.SeatIdList,
		UserID:     userID,
		TTL:        time.Duration(input.TtlSeconds) * time.Second,
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	if len(result.Denied) > 0 {
		logger.InfoContext(r.Context(), "some seats could not be held",
			"showtime_id", showtimeID, "granted", result.Granted, "denied", len(result.Denied))
	}

	resp := api.ClaimSeatsResponse{
		Granted: result.Granted,
		Denied:  make([]api.DeniedSeat, len(result.Denied)),
	}

	if resp.Granted == nil {
		resp.Granted = []int{}
	}

	for i, d := range result.Denied {
		resp.Denied[i] = api.DeniedSeat{SeatId: d.SeatID, Reason: d.Reason}
	}

	if len(result.Granted) > 0 {
		resp.ExpiresAt = &result.ExpiresAt
	}

	status := http.StatusCreated
	if len(result.Granted) == 0 {
		status = http.StatusConflict
	}

	err = jsonutil.WriteJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ExtendHoldsHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := readIdParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ExtendHoldsRequest

	err = jsonutil.ReadJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	holds, err := app.holds.Extend(r.Context(), hold.ExtendInput{
		ShowtimeID: showtimeID,
		SeatIDs:    input.SeatIdList,
		UserID:     app.contextGetUserId(r),
		By:         time.Duration(input.BySeconds) * time.Second,
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeHolds(w, r, showtimeID, holds)
}

func (app *application) ListHoldsHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := readIdParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	holds, err := app.holds.ListHolds(r.Context(), showtimeID, app.contextGetUserId(r))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeHolds(w, r, showtimeID, holds)
}

// ReleaseSeatsHandler releases the listed seats, or every hold of the caller
// on the showtime when the body is empty.
func (app *application) ReleaseSeatsHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := readIdParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ReleaseSeatsRequest

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

	released, err := app.holds.Release(r.Context(), hold.ReleaseInput{
		ShowtimeID: showtimeID,
		SeatIDs:    input.SeatIdList,
		UserID:     app.contextGetUserId(r),
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, api.ReleaseSeatsResponse{Released: released}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) writeHolds(w http.ResponseWriter, r *http.Request, showtimeID int, holds []domain.Hold) {
	resp := api.HoldsResponse{
		ShowtimeId: showtimeID,
		Holds:      make([]api.Hold, len(holds)),
	}

	for i, h := range holds {
		resp.Holds[i] = api.Hold{SeatId: h.SeatID, ExpiresAt: h.ExpiresAt}
	}

	err := jsonutil.WriteJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
