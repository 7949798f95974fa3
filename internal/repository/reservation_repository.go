package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/theater-booking/internal/model"
)

// ReservationRepo provides create and read operations for reservations
// and their tickets.  Writes always happen inside a caller-owned
// transaction so that a reservation and all of its tickets commit or
// roll back together.  All timestamp fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID.  The caller must commit
// or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, created_at) VALUES (?, ?)`
	result, err := tx.ExecContext(ctx, q, res.UserID, res.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// CreateTicketTx inserts one ticket within the given transaction.  When
// the (performance, row, seat) unique key is violated it returns
// ErrSeatTaken; InnoDB makes a concurrent writer of the same seat wait
// for the first transaction to finish before deciding.  A writer chosen
// as deadlock victim, or one that times out on that wait, lost the race
// for a contested seat and also gets ErrSeatTaken.  A performance
// deleted in the meantime yields ErrPerformanceNotFound.
func (r *ReservationRepo) CreateTicketTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (row_num, seat_num, performance_id, reservation_id) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, t.Row, t.Seat, t.PerformanceID, t.ReservationID)
	if err != nil {
		if isDuplicateKey(err) || isLockConflict(err) {
			return ErrSeatTaken
		}
		if isMissingReference(err) {
			return ErrPerformanceNotFound
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// TicketDetail is a ticket joined with the performance it admits to.
type TicketDetail struct {
	ID            uint64
	Row           int
	Seat          int
	PerformanceID uint64
	PlayTitle     string
	HallName      string
	ShowTime      time.Time
}

// ReservationDetail is a reservation with all of its tickets, ready to
// be rendered for the owning user.
type ReservationDetail struct {
	ID        uint64
	UserID    uint64
	CreatedAt time.Time
	Tickets   []TicketDetail
}

// CountByUser returns how many reservations the user owns.
func (r *ReservationRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// ListByUser returns one page of the user's reservations, newest first,
// with their tickets ordered by row and seat.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]ReservationDetail, error) {
	const q = `SELECT id, user_id, created_at FROM reservations
	           WHERE user_id = ?
	           ORDER BY created_at DESC, id DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := []ReservationDetail{}
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		d.Tickets = []TicketDetail{}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if err := r.loadTickets(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDForUser returns a single reservation of the given user.  When
// no reservation with the specified ID exists for the user,
// sql.ErrNoRows is returned.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*ReservationDetail, error) {
	const q = `SELECT id, user_id, created_at FROM reservations WHERE id = ? AND user_id = ?`
	var d ReservationDetail
	if err := r.db.QueryRowContext(ctx, q, reservationID, userID).Scan(&d.ID, &d.UserID, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Tickets = []TicketDetail{}
	list := []ReservationDetail{d}
	if err := r.loadTickets(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// loadTickets fills the Tickets of every reservation with a single query.
func (r *ReservationRepo) loadTickets(ctx context.Context, list []ReservationDetail) error {
	if len(list) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(list))
	args := make([]interface{}, 0, len(list))
	for i := range list {
		index[list[i].ID] = i
		args = append(args, list[i].ID)
	}
	q := `SELECT t.reservation_id, t.id, t.row_num, t.seat_num, t.performance_id, pl.title, h.name, p.show_time
	      FROM tickets t
	      JOIN performances p ON p.id = t.performance_id
	      JOIN plays pl ON pl.id = p.play_id
	      JOIN theater_halls h ON h.id = p.theater_hall_id
	      WHERE t.reservation_id IN (` + placeholders(len(list)) + `)
	      ORDER BY t.row_num, t.seat_num`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var resID uint64
		var t TicketDetail
		if err := rows.Scan(&resID, &t.ID, &t.Row, &t.Seat, &t.PerformanceID, &t.PlayTitle, &t.HallName, &t.ShowTime); err != nil {
			return err
		}
		if i, ok := index[resID]; ok {
			list[i].Tickets = append(list[i].Tickets, t)
		}
	}
	return rows.Err()
}
