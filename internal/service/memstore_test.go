package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/iliyamo/theater-booking/internal/model"
	"github.com/iliyamo/theater-booking/internal/repository"
)

type seatKey struct {
	performanceID uint64
	row, seat     int
}

// memStore is an in-memory Store.  A seat is claimed by the first
// transaction that inserts it; any other insert of the same seat fails
// with repository.ErrSeatTaken until the claim is released by rollback.
type memStore struct {
	mu           sync.Mutex
	performances map[uint64]model.Performance
	committed    map[seatKey]model.Ticket
	claims       map[seatKey]*memTx
	reservations map[uint64]model.Reservation
	nextID       uint64

	perfLookups int

	errBegin       error
	errReservation error
	errTicket      error
	errCommit      error
}

func newMemStore(perfs ...model.Performance) *memStore {
	s := &memStore{
		performances: make(map[uint64]model.Performance),
		committed:    make(map[seatKey]model.Ticket),
		claims:       make(map[seatKey]*memTx),
		reservations: make(map[uint64]model.Reservation),
	}
	for _, p := range perfs {
		s.performances[p.ID] = p
	}
	return s
}

func (s *memStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) BeginTx(ctx context.Context) (Tx, error) {
	if s.errBegin != nil {
		return nil, s.errBegin
	}
	return &memTx{store: s}, nil
}

func (s *memStore) AvailableSeats(ctx context.Context, performanceID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.performances[performanceID]
	if !ok {
		return 0, repository.ErrPerformanceNotFound
	}
	taken := 0
	for k := range s.committed {
		if k.performanceID == performanceID {
			taken++
		}
	}
	return p.Hall.Available(taken), nil
}

// seed commits a ticket outside any reservation flow.
func (s *memStore) seed(performanceID uint64, row, seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := seatKey{performanceID, row, seat}
	s.committed[k] = model.Ticket{ID: s.id(), Row: row, Seat: seat, PerformanceID: performanceID}
}

func (s *memStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed)
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

func (s *memStore) ticketsFor(reservationID uint64) []model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Ticket
	for _, t := range s.committed {
		if t.ReservationID == reservationID {
			out = append(out, t)
		}
	}
	return out
}

type memTx struct {
	store        *memStore
	reservations []model.Reservation
	tickets      []model.Ticket
	done         bool
}

func (t *memTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	if t.store.errReservation != nil {
		return t.store.errReservation
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	res.ID = t.store.id()
	t.reservations = append(t.reservations, *res)
	return nil
}

func (t *memTx) GetPerformance(ctx context.Context, id uint64) (*model.Performance, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.perfLookups++
	p, ok := t.store.performances[id]
	if !ok {
		return nil, repository.ErrPerformanceNotFound
	}
	return &p, nil
}

func (t *memTx) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	if t.store.errTicket != nil {
		return t.store.errTicket
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if _, ok := t.store.performances[ticket.PerformanceID]; !ok {
		return repository.ErrPerformanceNotFound
	}
	k := seatKey{ticket.PerformanceID, ticket.Row, ticket.Seat}
	if _, ok := t.store.committed[k]; ok {
		return repository.ErrSeatTaken
	}
	if _, ok := t.store.claims[k]; ok {
		return repository.ErrSeatTaken
	}
	t.store.claims[k] = t
	ticket.ID = t.store.id()
	t.tickets = append(t.tickets, *ticket)
	return nil
}

func (t *memTx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	if t.store.errCommit != nil {
		return t.store.errCommit
	}
	for _, ticket := range t.tickets {
		k := seatKey{ticket.PerformanceID, ticket.Row, ticket.Seat}
		delete(t.store.claims, k)
		t.store.committed[k] = ticket
	}
	for _, r := range t.reservations {
		t.store.reservations[r.ID] = r
	}
	t.done = true
	return nil
}

func (t *memTx) Rollback() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	for _, ticket := range t.tickets {
		delete(t.store.claims, seatKey{ticket.PerformanceID, ticket.Row, ticket.Seat})
	}
	t.tickets = nil
	t.reservations = nil
	t.done = true
	return nil
}
