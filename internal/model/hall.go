package model

// TheaterHall represents a hall in which performances take place.  The
// seating layout is a plain grid: every row holds the same number of
// seats.  Row and seat numbers are 1-indexed.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – unique hall name.
//  Rows       – number of seating rows (always positive).
//  SeatsInRow – number of seats in every row (always positive).
type TheaterHall struct {
	ID         uint64 // theater_halls.id
	Name       string // theater_halls.name
	Rows       int    // theater_halls.seat_rows
	SeatsInRow int    // theater_halls.seats_in_row
}

// Capacity returns the total number of seats in the hall.
func (h TheaterHall) Capacity() int {
	return h.Rows * h.SeatsInRow
}

// Available returns how many seats remain once taken seats are sold.
func (h TheaterHall) Available(taken int) int {
	return h.Capacity() - taken
}
