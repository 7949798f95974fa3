package service

import (
	"fmt"

	"github.com/iliyamo/theater-booking/internal/model"
)

// SeatRangeError reports a row or seat number outside the hall grid.
// Field is the ticket attribute ("row" or "seat"), Limit the hall
// attribute bounding it and Max its value; the accepted range is
// always (1, Max).
type SeatRangeError struct {
	Field string
	Limit string
	Max   int
}

func (e *SeatRangeError) Error() string {
	return fmt.Sprintf("%s number must be in available range: (1, %s): (1, %d)", e.Field, e.Limit, e.Max)
}

// ValidateSeat checks that (row, seat) lies inside the grid of hall.  The
// row is checked first, so a request wrong on both axes reports the row.
func ValidateSeat(row, seat int, hall model.TheaterHall) error {
	checks := []struct {
		value int
		field string
		limit string
		max   int
	}{
		{row, "row", "rows", hall.Rows},
		{seat, "seat", "seats_in_row", hall.SeatsInRow},
	}
	for _, c := range checks {
		if c.value < 1 || c.value > c.max {
			return &SeatRangeError{Field: c.field, Limit: c.limit, Max: c.max}
		}
	}
	return nil
}
