package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions

	"github.com/iliyamo/theater-booking/internal/model"
)

// ErrHallNotFound is returned when a hall lookup fails.
var ErrHallNotFound = errors.New("hall not found")

// HallRepo provides methods to create and retrieve theater halls.
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// Create inserts a new hall.  Rows and SeatsInRow must be positive; the
// table CHECK constraints reject anything else.  A name already in use
// yields ErrDuplicateName.
func (r *HallRepo) Create(ctx context.Context, h *model.TheaterHall) error {
	const q = `INSERT INTO theater_halls (name, seat_rows, seats_in_row) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, h.Name, h.Rows, h.SeatsInRow)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateName
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when
// no row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.TheaterHall, error) {
	const q = `SELECT id, name, seat_rows, seats_in_row FROM theater_halls WHERE id = ?`
	var h model.TheaterHall
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all halls ordered by ID.
func (r *HallRepo) List(ctx context.Context) ([]model.TheaterHall, error) {
	const q = `SELECT id, name, seat_rows, seats_in_row FROM theater_halls ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TheaterHall{}
	for rows.Next() {
		var h model.TheaterHall
		if err := rows.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
