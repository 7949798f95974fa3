package service

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theater-booking/internal/model"
	"github.com/iliyamo/theater-booking/internal/repository"
)

// Store is the persistence the reservation service depends on.  It must
// enforce uniqueness of (performance, row, seat) itself and roll back
// every write of a Tx that is not committed.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	AvailableSeats(ctx context.Context, performanceID uint64) (int, error)
}

// Tx is one transactional unit of work.
//
// GetPerformance returns repository.ErrPerformanceNotFound for unknown
// IDs.  CreateTicket returns repository.ErrSeatTaken when the seat is
// already occupied, which is decided by the store at insert time.
type Tx interface {
	CreateReservation(ctx context.Context, res *model.Reservation) error
	GetPerformance(ctx context.Context, id uint64) (*model.Performance, error)
	CreateTicket(ctx context.Context, t *model.Ticket) error
	Commit() error
	Rollback() error
}

// sqlStore adapts the MySQL repositories to Store.
type sqlStore struct {
	db           *sql.DB
	performances *repository.PerformanceRepo
	reservations *repository.ReservationRepo
}

// NewSQLStore returns a Store backed by db.  All dependencies must be non-nil.
func NewSQLStore(db *sql.DB, performances *repository.PerformanceRepo, reservations *repository.ReservationRepo) Store {
	if db == nil || performances == nil || reservations == nil {
		panic("nil dependency passed to NewSQLStore")
	}
	return &sqlStore{db: db, performances: performances, reservations: reservations}
}

func (s *sqlStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx, performances: s.performances, reservations: s.reservations}, nil
}

func (s *sqlStore) AvailableSeats(ctx context.Context, performanceID uint64) (int, error) {
	return s.performances.AvailableSeats(ctx, performanceID)
}

type sqlTx struct {
	tx           *sql.Tx
	performances *repository.PerformanceRepo
	reservations *repository.ReservationRepo
}

func (t *sqlTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	return t.reservations.CreateTx(ctx, t.tx, res)
}

func (t *sqlTx) GetPerformance(ctx context.Context, id uint64) (*model.Performance, error) {
	return t.performances.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlTx) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	return t.reservations.CreateTicketTx(ctx, t.tx, ticket)
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }
