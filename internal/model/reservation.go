package model

import "time"

// Reservation is an atomic batch purchase of one or more tickets by a
// single user.  The reservation and its tickets are always created in
// the same transaction; a reservation without tickets never persists.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who made the reservation.
//  CreatedAt – creation timestamp, immutable.
//  Tickets   – tickets owned by the reservation (loaded on demand).
type Reservation struct {
	ID        uint64    // reservations.id
	UserID    uint64    // reservations.user_id
	CreatedAt time.Time // reservations.created_at
	Tickets   []Ticket
}

// Ticket is a single seat sold for one performance.  The triple
// (PerformanceID, Row, Seat) is unique across all tickets.  Tickets are
// never updated; they disappear only when their reservation or
// performance is deleted.
//
// Fields:
//  ID            – primary key identifier.
//  Row           – 1-indexed row number.
//  Seat          – 1-indexed seat number within the row.
//  PerformanceID – performance the seat belongs to.
//  ReservationID – owning reservation.
type Ticket struct {
	ID            uint64 // tickets.id
	Row           int    // tickets.row_num
	Seat          int    // tickets.seat_num
	PerformanceID uint64 // tickets.performance_id
	ReservationID uint64 // tickets.reservation_id
}
