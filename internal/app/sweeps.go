package app

import (
	"net/http"

	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/jsonutil"
)

// SweepHandler runs one expiration sweep on demand.
func (app *application) SweepHandler(w http.ResponseWriter, r *http.Request) {
	result, err := app.sweeper.SweepOnce(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.SweepResponse{
		CancelledBookings: result.CancelledBookings,
		CleanedHolds:      result.CleanedHolds,
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
