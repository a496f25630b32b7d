package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/metinatakli/showtime-booking-engine/internal/domain"
)

type holdKey struct {
	seatID     int
	showtimeID int
}

type memoryState struct {
	showtimes     map[int]domain.Showtime
	seats         map[int]domain.Seat
	holds         map[holdKey]domain.Hold
	bookings      map[int]domain.Booking
	codes         map[string]struct{}
	nextBookingID int
	nextTicketID  int
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		showtimes:     make(map[int]domain.Showtime, len(s.showtimes)),
		seats:         make(map[int]domain.Seat, len(s.seats)),
		holds:         make(map[holdKey]domain.Hold, len(s.holds)),
		bookings:      make(map[int]domain.Booking, len(s.bookings)),
		codes:         make(map[string]struct{}, len(s.codes)),
		nextBookingID: s.nextBookingID,
		nextTicketID:  s.nextTicketID,
	}

	for k, v := range s.showtimes {
		c.showtimes[k] = v
	}
	for k, v := range s.seats {
		c.seats[k] = v
	}
	for k, v := range s.holds {
		c.holds[k] = v
	}
	for k, v := range s.bookings {
		v.Tickets = slices.Clone(v.Tickets)
		c.bookings[k] = v
	}
	for k := range s.codes {
		c.codes[k] = struct{}{}
	}

	return c
}

type memoryTxKey struct{}

// MemoryStore keeps catalog, holds and bookings in process memory. Every
// repository interface and the Transactor are implemented on the same value,
// and a transaction holds the store mutex for its whole duration, so it
// offers the same isolation the Postgres repositories get from row locks and
// constraints.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			showtimes:     make(map[int]domain.Showtime),
			seats:         make(map[int]domain.Seat),
			holds:         make(map[holdKey]domain.Hold),
			bookings:      make(map[int]domain.Booking),
			codes:         make(map[string]struct{}),
			nextBookingID: 1,
			nextTicketID:  1,
		},
	}
}

func (m *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.inTx(ctx) {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()

	err := fn(context.WithValue(ctx, memoryTxKey{}, m))
	if err != nil {
		m.state = snapshot
		return err
	}

	return nil
}

func (m *MemoryStore) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(memoryTxKey{}).(*MemoryStore)
	return owner == m
}

// lock acquires the store mutex unless ctx already runs inside one of this
// store's transactions. The returned func releases what was acquired.
func (m *MemoryStore) lock(ctx context.Context) func() {
	if m.inTx(ctx) {
		return func() {}
	}

	m.mu.Lock()

	return m.mu.Unlock
}

func (m *MemoryStore) AddShowtime(showtime domain.Showtime) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.showtimes[showtime.ID] = showtime
}

func (m *MemoryStore) AddSeats(seats ...domain.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, seat := range seats {
		m.state.seats[seat.ID] = seat
	}
}

func (m *MemoryStore) GetShowtime(ctx context.Context, id int) (*domain.Showtime, error) {
	defer m.lock(ctx)()

	showtime, ok := m.state.showtimes[id]
	if !ok {
		return nil, domain.ErrShowtimeNotFound
	}

	return &showtime, nil
}

func (m *MemoryStore) GetSeats(ctx context.Context, ids []int) ([]domain.Seat, error) {
	defer m.lock(ctx)()

	seats := make([]domain.Seat, 0, len(ids))
	seen := make(map[int]bool, len(ids))

	for _, id := range ids {
		seat, ok := m.state.seats[id]
		if !ok || seen[id] {
			continue
		}

		seen[id] = true
		seats = append(seats, seat)
	}

	sort.Slice(seats, func(i, j int) bool { return seats[i].ID < seats[j].ID })

	return seats, nil
}

func (m *MemoryStore) GetSeatsByRoom(ctx context.Context, roomID int) ([]domain.Seat, error) {
	defer m.lock(ctx)()

	seats := make([]domain.Seat, 0)
	for _, seat := range m.state.seats {
		if seat.RoomID == roomID {
			seats = append(seats, seat)
		}
	}

	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Number < seats[j].Number
	})

	return seats, nil
}

func (m *MemoryStore) ListSeatStates(
	ctx context.Context,
	showtimeID int,
	seatIDs []int,
	now time.Time) ([]domain.SeatState, error) {

	defer m.lock(ctx)()

	states := make([]domain.SeatState, len(seatIDs))

	for i, seatID := range seatIDs {
		state := domain.SeatState{
			SeatID: seatID,
			Booked: m.seatBooked(showtimeID, seatID),
		}

		if hold, ok := m.state.holds[holdKey{seatID, showtimeID}]; ok && hold.IsActive(now) {
			userID, expiresAt := hold.UserID, hold.ExpiresAt
			state.HoldUserID = &userID
			state.HoldExpiresAt = &expiresAt
		}

		states[i] = state
	}

	return states, nil
}

// seatBooked must be called with the mutex held.
func (m *MemoryStore) seatBooked(showtimeID, seatID int) bool {
	for _, booking := range m.state.bookings {
		if booking.ShowtimeID != showtimeID {
			continue
		}

		if booking.PaymentStatus != domain.PaymentStatusPending && booking.PaymentStatus != domain.PaymentStatusPaid {
			continue
		}

		for _, ticket := range booking.Tickets {
			if ticket.SeatID == seatID && ticket.Status == domain.TicketStatusActive {
				return true
			}
		}
	}

	return false
}

func (m *MemoryStore) activeTicketExists(showtimeID, seatID int) bool {
	for _, booking := range m.state.bookings {
		for _, ticket := range booking.Tickets {
			if ticket.ShowtimeID == showtimeID && ticket.SeatID == seatID && ticket.Status == domain.TicketStatusActive {
				return true
			}
		}
	}

	return false
}

func (m *MemoryStore) TryAcquire(ctx context.Context, hold domain.Hold) (*domain.Hold, bool, error) {
	defer m.lock(ctx)()

	if m.seatBooked(hold.ShowtimeID, hold.SeatID) {
		return nil, false, nil
	}

	key := holdKey{hold.SeatID, hold.ShowtimeID}

	if current, ok := m.state.holds[key]; ok {
		switch {
		case current.UserID == hold.UserID:
			hold.ID = current.ID
			hold.CreatedAt = current.CreatedAt
		case current.IsActive(hold.CreatedAt):
			return nil, false, nil
		}
	}

	m.state.holds[key] = hold

	return &hold, true, nil
}

func (m *MemoryStore) Extend(
	ctx context.Context,
	showtimeID int,
	seatIDs []int,
	userID int,
	by time.Duration,
	now time.Time) ([]domain.Hold, error) {

	defer m.lock(ctx)()

	extended := make([]domain.Hold, 0, len(seatIDs))

	for _, seatID := range seatIDs {
		key := holdKey{seatID, showtimeID}

		hold, ok := m.state.holds[key]
		if !ok || hold.UserID != userID || !hold.IsActive(now) {
			continue
		}

		hold.ExpiresAt = hold.ExpiresAt.Add(by)
		m.state.holds[key] = hold
		extended = append(extended, hold)
	}

	return extended, nil
}

func (m *MemoryStore) Release(ctx context.Context, showtimeID int, seatIDs []int, userID int) (int64, error) {
	defer m.lock(ctx)()

	var released int64

	for key, hold := range m.state.holds {
		if key.showtimeID != showtimeID || hold.UserID != userID {
			continue
		}

		if seatIDs != nil && !slices.Contains(seatIDs, key.seatID) {
			continue
		}

		delete(m.state.holds, key)
		released++
	}

	return released, nil
}

func (m *MemoryStore) ListActiveByUser(
	ctx context.Context,
	showtimeID,
	userID int,
	now time.Time) ([]domain.Hold, error) {

	defer m.lock(ctx)()

	holds := make([]domain.Hold, 0)
	for key, hold := range m.state.holds {
		if key.showtimeID == showtimeID && hold.UserID == userID && hold.IsActive(now) {
			holds = append(holds, hold)
		}
	}

	sort.Slice(holds, func(i, j int) bool { return holds[i].SeatID < holds[j].SeatID })

	return holds, nil
}

func (m *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	defer m.lock(ctx)()

	var deleted int64

	for key, hold := range m.state.holds {
		if !hold.IsActive(now) {
			delete(m.state.holds, key)
			deleted++
		}
	}

	return deleted, nil
}

func (m *MemoryStore) CodeExists(ctx context.Context, code string) (bool, error) {
	defer m.lock(ctx)()

	_, ok := m.state.codes[code]

	return ok, nil
}

func (m *MemoryStore) Create(ctx context.Context, booking *domain.Booking) error {
	defer m.lock(ctx)()

	if _, ok := m.state.showtimes[booking.ShowtimeID]; !ok {
		return domain.ErrShowtimeNotFound
	}

	if _, ok := m.state.codes[booking.Code]; ok {
		return fmt.Errorf("%w: %s", domain.ErrCodeCollision, constraintBookingCode)
	}

	pending := make(map[string]struct{}, len(booking.Tickets))
	for _, ticket := range booking.Tickets {
		if _, ok := m.state.seats[ticket.SeatID]; !ok {
			return domain.ErrSeatNotFound
		}

		_, taken := m.state.codes[ticket.Code]
		_, dup := pending[ticket.Code]
		if taken || dup || ticket.Code == booking.Code {
			return fmt.Errorf("%w: %s", domain.ErrCodeCollision, constraintTicketCode)
		}

		if m.activeTicketExists(ticket.ShowtimeID, ticket.SeatID) {
			return domain.ErrSeatUnavailable
		}

		pending[ticket.Code] = struct{}{}
	}

	booking.ID = m.state.nextBookingID
	m.state.nextBookingID++
	booking.UpdatedAt = booking.CreatedAt

	for i := range booking.Tickets {
		booking.Tickets[i].ID = m.state.nextTicketID
		booking.Tickets[i].BookingID = booking.ID
		booking.Tickets[i].CreatedAt = booking.CreatedAt
		m.state.nextTicketID++
		m.state.codes[booking.Tickets[i].Code] = struct{}{}
	}

	m.state.codes[booking.Code] = struct{}{}

	stored := *booking
	stored.Tickets = slices.Clone(booking.Tickets)
	m.state.bookings[booking.ID] = stored

	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int) (*domain.Booking, error) {
	defer m.lock(ctx)()

	return m.getBooking(id)
}

func (m *MemoryStore) GetByIDForUpdate(ctx context.Context, id int) (*domain.Booking, error) {
	return m.GetByID(ctx, id)
}

func (m *MemoryStore) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	defer m.lock(ctx)()

	for id, booking := range m.state.bookings {
		if booking.Code == code {
			return m.getBooking(id)
		}
	}

	return nil, domain.ErrBookingNotFound
}

func (m *MemoryStore) getBooking(id int) (*domain.Booking, error) {
	booking, ok := m.state.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	booking.Tickets = slices.Clone(booking.Tickets)

	return &booking, nil
}

func (m *MemoryStore) ListByUser(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	defer m.lock(ctx)()

	all := make([]domain.Booking, 0)
	for _, booking := range m.state.bookings {
		if booking.UserID == userID {
			booking.Tickets = slices.Clone(booking.Tickets)
			all = append(all, booking)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := min(pagination.Offset(), len(all))
	end := min(start+pagination.Limit(), len(all))

	metadata := domain.NewMetadata(len(all), pagination.Page, pagination.PageSize)

	return all[start:end], metadata, nil
}

func (m *MemoryStore) UpdateStatus(
	ctx context.Context,
	id int,
	status domain.PaymentStatus,
	method domain.PaymentMethod,
	now time.Time) error {

	defer m.lock(ctx)()

	booking, ok := m.state.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}

	m.state.bookings[id] = transitionBooking(booking, status, method, now)

	return nil
}

func (m *MemoryStore) CancelExpired(ctx context.Context, now time.Time) ([]int, error) {
	defer m.lock(ctx)()

	ids := make([]int, 0)

	for id, booking := range m.state.bookings {
		if !booking.IsExpired(now) {
			continue
		}

		m.state.bookings[id] = transitionBooking(booking, domain.PaymentStatusCancelled, "", now)
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids, nil
}

func transitionBooking(
	booking domain.Booking,
	status domain.PaymentStatus,
	method domain.PaymentMethod,
	now time.Time) domain.Booking {

	booking.PaymentStatus = status
	booking.UpdatedAt = now

	if method != "" {
		booking.PaymentMethod = method
	}

	tickets := slices.Clone(booking.Tickets)
	if status == domain.PaymentStatusCancelled || status == domain.PaymentStatusRefunded {
		for i := range tickets {
			if tickets[i].Status == domain.TicketStatusActive {
				tickets[i].Status = domain.TicketStatusCancelled
			}
		}
	}
	booking.Tickets = tickets

	return booking
}
