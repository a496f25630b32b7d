// Package api holds the request and response bodies of the HTTP API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// SeatConflictResponse lists every seat that made an all-or-nothing request fail.
type SeatConflictResponse struct {
	Message   string         `json:"message"`
	RequestId string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Seats     []SeatConflict `json:"seats"`
}

type SeatConflict struct {
	SeatId int    `json:"seatId"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status       string            `json:"status"`
	SystemInfo   SystemInfo        `json:"systemInfo"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	TotalRecords int `json:"totalRecords"`
}

type SeatStatus struct {
	SeatId          int             `json:"seatId"`
	Row             string          `json:"row"`
	Number          int             `json:"number"`
	Type            string          `json:"type"`
	Price           decimal.Decimal `json:"price"`
	Status          string          `json:"status"`
	Reason          string          `json:"reason,omitempty"`
	HoldExpiresAt   *time.Time      `json:"holdExpiresAt,omitempty"`
	HeldByRequester bool            `json:"heldByRequester,omitempty"`
}

type SeatMapResponse struct {
	ShowtimeId int          `json:"showtimeId"`
	RoomId     int          `json:"roomId"`
	StartTime  time.Time    `json:"startTime"`
	Seats      []SeatStatus `json:"seats"`
}

type ClaimSeatsRequest struct {
	SeatIdList []int `json:"seatIdList" validate:"required,min=1,max=10,unique,dive,gt=0"`
	// Hold duration in seconds. Zero uses the server default.
	TtlSeconds int `json:"ttlSeconds,omitempty" validate:"gte=0"`
}

type DeniedSeat struct {
	SeatId int    `json:"seatId"`
	Reason string `json:"reason"`
}

type ClaimSeatsResponse struct {
	Granted   []int        `json:"granted"`
	Denied    []DeniedSeat `json:"denied"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

type ExtendHoldsRequest struct {
	SeatIdList []int `json:"seatIdList" validate:"required,min=1,unique,dive,gt=0"`
	// Extension in seconds. Zero uses the server default.
	BySeconds int `json:"bySeconds,omitempty" validate:"gte=0"`
}

// ReleaseSeatsRequest releases the listed seats. A nil list releases every
// hold of the caller on the showtime.
type ReleaseSeatsRequest struct {
	SeatIdList []int `json:"seatIdList,omitempty" validate:"omitempty,unique,dive,gt=0"`
}

type ReleaseSeatsResponse struct {
	Released int64 `json:"released"`
}

type Hold struct {
	SeatId    int       `json:"seatId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type HoldsResponse struct {
	ShowtimeId int    `json:"showtimeId"`
	Holds      []Hold `json:"holds"`
}

type CreateBookingRequest struct {
	ShowtimeId    int    `json:"showtimeId" validate:"required,gt=0"`
	SeatIdList    []int  `json:"seatIdList" validate:"required,min=1,max=10,unique,dive,gt=0"`
	PaymentMethod string `json:"paymentMethod" validate:"required,payment_method"`
}

type ConfirmPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod,omitempty" validate:"omitempty,payment_method"`
}

type Ticket struct {
	Id     int             `json:"id"`
	Code   string          `json:"code"`
	SeatId int             `json:"seatId"`
	Price  decimal.Decimal `json:"price"`
	Status string          `json:"status"`
}

type BookingResponse struct {
	Id            int             `json:"id"`
	Code          string          `json:"code"`
	ShowtimeId    int             `json:"showtimeId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentStatus string          `json:"paymentStatus"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	Tickets       []Ticket        `json:"tickets"`
}

type UserBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Metadata Metadata          `json:"metadata"`
}

type CheckoutSessionResponse struct {
	SessionId    string `json:"sessionId"`
	RedirectUrl  string `json:"redirectUrl,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type SweepResponse struct {
	CancelledBookings int   `json:"cancelledBookings"`
	CleanedHolds      int64 `json:"cleanedHolds"`
}
