// Package repository contains data access logic for Performance domain
// operations.  This file defines the performance lookups used by the
// reservation service (geometry and availability) and the catalog
// listings.  All timestamps are stored in UTC.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel definitions
	"time"

	"github.com/iliyamo/theater-booking/internal/model"
)

// ErrPerformanceNotFound indicates that a performance was not located in the DB.
var ErrPerformanceNotFound = errors.New("performance not found")

// PerformanceSummary is a performance joined with its play title, its hall
// and the number of seats still free.  TicketsAvailable is computed by
// the query from committed tickets only.
type PerformanceSummary struct {
	ID               uint64
	PlayID           uint64
	PlayTitle        string
	Hall             model.TheaterHall
	ShowTime         time.Time
	TicketsAvailable int
}

// PerformanceRepo manages persistence for performances.
type PerformanceRepo struct {
	db *sql.DB
}

// NewPerformanceRepo constructs a PerformanceRepo with the given DB handle.
func NewPerformanceRepo(db *sql.DB) *PerformanceRepo {
	return &PerformanceRepo{db: db}
}

const performanceSummarySelect = `SELECT p.id, p.play_id, pl.title, h.id, h.name, h.seat_rows, h.seats_in_row, p.show_time,
       h.seat_rows * h.seats_in_row - COUNT(t.id) AS tickets_available
FROM performances p
JOIN plays pl ON pl.id = p.play_id
JOIN theater_halls h ON h.id = p.theater_hall_id
LEFT JOIN tickets t ON t.performance_id = p.id`

const performanceSummaryGroup = `
GROUP BY p.id, p.play_id, pl.title, h.id, h.name, h.seat_rows, h.seats_in_row, p.show_time`

// Create inserts a performance for p.PlayID in hall p.Hall.ID.  Unknown
// play or hall IDs yield ErrInvalidReference.
func (r *PerformanceRepo) Create(ctx context.Context, p *model.Performance) error {
	const q = `INSERT INTO performances (play_id, theater_hall_id, show_time) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.PlayID, p.Hall.ID, p.ShowTime.UTC())
	if err != nil {
		if isMissingReference(err) {
			return ErrInvalidReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByIDTx loads a performance and its hall geometry inside the given
// transaction.  It returns ErrPerformanceNotFound when no row matches.
func (r *PerformanceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Performance, error) {
	const q = `SELECT p.id, p.play_id, p.show_time, h.id, h.name, h.seat_rows, h.seats_in_row
	           FROM performances p
	           JOIN theater_halls h ON h.id = p.theater_hall_id
	           WHERE p.id = ?`
	var p model.Performance
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.PlayID, &p.ShowTime, &p.Hall.ID, &p.Hall.Name, &p.Hall.Rows, &p.Hall.SeatsInRow,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns every performance ordered by show time, each with its
// current number of free seats.
func (r *PerformanceRepo) List(ctx context.Context) ([]PerformanceSummary, error) {
	q := performanceSummarySelect + performanceSummaryGroup + `
ORDER BY p.show_time, p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PerformanceSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSummary returns a single performance summary.  It returns
// ErrPerformanceNotFound when no row matches.
func (r *PerformanceRepo) GetSummary(ctx context.Context, id uint64) (*PerformanceSummary, error) {
	q := performanceSummarySelect + `
WHERE p.id = ?` + performanceSummaryGroup
	s, err := scanSummary(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, err
	}
	return &s, nil
}

// AvailableSeats returns hall capacity minus the committed tickets of the
// performance.  The value is computed on every call.
func (r *PerformanceRepo) AvailableSeats(ctx context.Context, id uint64) (int, error) {
	const q = `SELECT h.seat_rows * h.seats_in_row - (SELECT COUNT(*) FROM tickets t WHERE t.performance_id = p.id)
	           FROM performances p
	           JOIN theater_halls h ON h.id = p.theater_hall_id
	           WHERE p.id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPerformanceNotFound
		}
		return 0, err
	}
	return n, nil
}

// TakenSeats lists the row and seat of every ticket already sold for the
// performance, ordered by row then seat.
func (r *PerformanceRepo) TakenSeats(ctx context.Context, id uint64) ([]model.Ticket, error) {
	const q = `SELECT id, row_num, seat_num, performance_id, reservation_id
	           FROM tickets WHERE performance_id = ? ORDER BY row_num, seat_num`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.Row, &t.Seat, &t.PerformanceID, &t.ReservationID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a performance.  Its tickets are removed by the
// ON DELETE CASCADE foreign key.  It returns ErrPerformanceNotFound when
// nothing was deleted.
func (r *PerformanceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM performances WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPerformanceNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(s rowScanner) (PerformanceSummary, error) {
	var out PerformanceSummary
	err := s.Scan(
		&out.ID, &out.PlayID, &out.PlayTitle,
		&out.Hall.ID, &out.Hall.Name, &out.Hall.Rows, &out.Hall.SeatsInRow,
		&out.ShowTime, &out.TicketsAvailable,
	)
	return out, err
}
