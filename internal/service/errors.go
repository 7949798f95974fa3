package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/theater-booking/internal/repository"
)

// ErrEmptyRequest is returned when a reservation is submitted without
// tickets.  Nothing is written.
var ErrEmptyRequest = errors.New("reservation must contain at least one ticket")

// PerformanceNotFoundError is returned when a ticket request or an
// availability query names a performance that does not exist.
type PerformanceNotFoundError struct {
	PerformanceID uint64
}

func (e *PerformanceNotFoundError) Error() string {
	return fmt.Sprintf("performance %d does not exist", e.PerformanceID)
}

func (e *PerformanceNotFoundError) Unwrap() error { return repository.ErrPerformanceNotFound }

// InvalidSeatError is returned when the ticket at position Index of the
// request lies outside its hall.  The embedded range error names the
// offending field and the accepted range.
type InvalidSeatError struct {
	Index int
	*SeatRangeError
}

func (e *InvalidSeatError) Unwrap() error { return e.SeatRangeError }

// SeatTakenError is returned when a seat already has a ticket for the
// performance, either from an earlier reservation, a concurrent one that
// committed first, or a duplicate inside the same request.
type SeatTakenError struct {
	Row           int
	Seat          int
	PerformanceID uint64
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat (row %d, seat %d) is already taken for performance %d", e.Row, e.Seat, e.PerformanceID)
}

func (e *SeatTakenError) Unwrap() error { return repository.ErrSeatTaken }
