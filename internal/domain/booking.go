package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodEWallet      PaymentMethod = "e_wallet"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

const (
	CounterPaymentWindow = 30 * time.Minute
	OnlinePaymentWindow  = 10 * time.Minute
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodEWallet, PaymentMethodBankTransfer:
		return true
	}

	return false
}

func (m PaymentMethod) IsOnline() bool {
	return m != PaymentMethodCash
}

// PaymentWindow is how long a pending booking waits for payment.
func (m PaymentMethod) PaymentWindow() time.Duration {
	if m == PaymentMethodCash {
		return CounterPaymentWindow
	}

	return OnlinePaymentWindow
}

type Booking struct {
	ID            int
	Code          string
	UserID        int
	ShowtimeID    int
	TotalAmount   decimal.Decimal
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     time.Time
	Tickets       []Ticket
}

// IsExpired is only meaningful for pending bookings.
func (b *Booking) IsExpired(now time.Time) bool {
	return b.PaymentStatus == PaymentStatusPending && !b.ExpiresAt.After(now)
}

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

type Ticket struct {
	ID         int
	Code       string
	BookingID  int
	SeatID     int
	ShowtimeID int
	Price      decimal.Decimal
	Status     TicketStatus
	CreatedAt  time.Time
}

type BookingRepository interface {
	CodeExists(ctx context.Context, code string) (bool, error)
	// Create inserts the booking and its tickets, filling generated ids.
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id int) (*Booking, error)
	GetByIDForUpdate(ctx context.Context, id int) (*Booking, error)
	GetByCode(ctx context.Context, code string) (*Booking, error)
	ListByUser(ctx context.Context, userID int, pagination Pagination) ([]Booking, *Metadata, error)
	// UpdateStatus moves a booking to status and, when status releases the
	// seats, cancels its active tickets in the same step.
	UpdateStatus(ctx context.Context, id int, status PaymentStatus, method PaymentMethod, now time.Time) error
	// CancelExpired cancels every pending booking whose expiry is before now
	// together with its tickets, returning the affected booking ids.
	CancelExpired(ctx context.Context, now time.Time) ([]int, error)
}

// Transactor runs fn in one store transaction. Repositories called with the
// context handed to fn join that transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
