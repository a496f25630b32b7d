package app

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/showtime-booking-engine/api"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

func readIdParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		return 0, fmt.Errorf(ErrInvalidIdParameter, name)
	}

	return id, nil
}

type paginationParams struct {
	Page     int `json:"page" validate:"min=1"`
	PageSize int `json:"pageSize" validate:"min=1,max=100"`
}

func readPagination(r *http.Request) (paginationParams, error) {
	params := paginationParams{
		Page:     domain.DefaultPage,
		PageSize: domain.DefaultPageSize,
	}

	q := r.URL.Query()

	if page := q.Get("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return params, fmt.Errorf("page must be an integer")
		}
		params.Page = n
	}

	if pageSize := q.Get("pageSize"); pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil {
			return params, fmt.Errorf("pageSize must be an integer")
		}
		params.PageSize = n
	}

	return params, nil
}

func toBookingResponse(b *domain.Booking) api.BookingResponse {
	tickets := make([]api.Ticket, len(b.Tickets))
	for i, t := range b.Tickets {
		tickets[i] = api.Ticket{
			Id:     t.ID,
			Code:   t.Code,
			SeatId: t.SeatID,
			Price:  t.Price,
			Status: string(t.Status),
		}
	}

	return api.BookingResponse{
		Id:            b.ID,
		Code:          b.Code,
		ShowtimeId:    b.ShowtimeID,
		TotalAmount:   b.TotalAmount,
		PaymentStatus: string(b.PaymentStatus),
		PaymentMethod: string(b.PaymentMethod),
		CreatedAt:     b.CreatedAt,
		ExpiresAt:     b.ExpiresAt,
		Tickets:       tickets,
	}
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		PageSize:     metadata.PageSize,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		TotalRecords: metadata.TotalRecords,
	}
}
