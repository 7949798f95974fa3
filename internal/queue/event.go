// Package queue defines message payloads exchanged over the message
// broker together with the publisher and the background consumer.
package queue

// ReservationCreatedQueue is the durable queue reservation events are
// routed to through the default exchange.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published after a reservation and all of
// its tickets have been committed.  It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type ReservationCreatedEvent struct {
	EventID       string        `json:"event_id"`
	ReservationID uint64        `json:"reservation_id"`
	UserID        uint64        `json:"user_id"`
	CreatedAt     string        `json:"created_at"`
	Tickets       []TicketEntry `json:"tickets"`
}

// TicketEntry is a single seat of a ReservationCreatedEvent.
type TicketEntry struct {
	PerformanceID uint64 `json:"performance_id"`
	HallName      string `json:"hall_name"`
	ShowTime      string `json:"show_time"`
	Row           int    `json:"row"`
	Seat          int    `json:"seat"`
}
