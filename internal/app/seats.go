package app

import (
	"net/http"
	"time"

	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/metinatakli/showtime-booking-engine/internal/jsonutil"
)

// GetSeatMapHandler reports the availability of every seat in the showtime's
// room as seen by the caller. Anonymous callers see their own holds as locked.
func (app *application) GetSeatMapHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID, err := readIdParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showtime, err := app.catalog.GetShowtime(r.Context(), showtimeID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	seats, err := app.catalog.GetSeatsByRoom(r.Context(), showtime.RoomID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(seats) == 0 {
		logger.WarnContext(r.Context(), "seat map not found for showtime", "showtime_id", showtimeID)
		app.notFoundResponse(w, r)
		return
	}

	seatIDs := make([]int, len(seats))
	for i, seat := range seats {
		seatIDs[i] = seat.ID
	}

	callerID := app.contextOptionalUserId(r)

	statuses, err := app.resolver.StatusMany(r.Context(), showtimeID, seatIDs, callerID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	ownHolds := make(map[int]time.Time)
	if callerID != 0 {
		holds, err := app.holds.ListHolds(r.Context(), showtimeID, callerID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		for _, h := range holds {
			ownHolds[h.SeatID] = h.ExpiresAt
		}
	}

	resp := api.SeatMapResponse{
		ShowtimeId: showtimeID,
		RoomId:     showtime.RoomID,
		StartTime:  showtime.StartTime,
		Seats:      make([]api.SeatStatus, len(seats)),
	}

	for i, seat := range seats {
		status := statuses[i]
		if !seat.IsActive() {
			status = domain.SeatAvailability{
				SeatID: seat.ID,
				Status: domain.SeatOutOfService,
				Reason: domain.ReasonSeatInactive,
			}
		}

		item := api.SeatStatus{
			SeatId: seat.ID,
			Row:    seat.Row,
			Number: seat.Number,
			Type:   seat.Type,
			Price:  domain.SeatPrice(showtime.BasePrice, seat.PriceMultiplier),
			Status: string(status.Status),
			Reason: status.Reason,
		}

		if expiresAt, ok := ownHolds[seat.ID]; ok && status.IsAvailable() {
			item.HeldByRequester = true
			item.HoldExpiresAt = &expiresAt
		}

		resp.Seats[i] = item
	}

	err = jsonutil.WriteJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
