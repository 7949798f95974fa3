package model

// Actor is a performer that can appear in plays.
type Actor struct {
	ID        uint64 // actors.id
	FirstName string // actors.first_name
	LastName  string // actors.last_name
}

// FullName joins first and last name with a single space.
func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Genre classifies plays.  Names are unique.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}

// Play is a stage work that can be scheduled as performances.  Actors
// and genres are many-to-many relations stored in link tables.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – play title; plays are listed ordered by title.
//  Description – free text, may be empty.
//  Actors      – actors appearing in the play.
//  Genres      – genres the play belongs to.
type Play struct {
	ID          uint64 // plays.id
	Title       string // plays.title
	Description string // plays.description
	Actors      []Actor
	Genres      []Genre
}
