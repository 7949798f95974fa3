package model

import "time"

// Performance is a scheduled showing of a play in a theater hall.  Many
// tickets may reference one performance.  The hall is embedded by value
// because every seat check needs its geometry.
//
// Fields:
//  ID       – primary key identifier.
//  PlayID   – play being performed.
//  Hall     – hall the performance takes place in.
//  ShowTime – when the performance starts (UTC).
type Performance struct {
	ID       uint64      // performances.id
	PlayID   uint64      // performances.play_id
	Hall     TheaterHall // performances.theater_hall_id joined with theater_halls
	ShowTime time.Time   // performances.show_time
}
