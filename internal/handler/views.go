package handler

import (
	"time"

	"github.com/iliyamo/theater-booking/internal/model"
	"github.com/iliyamo/theater-booking/internal/repository"
)

// Response representations.  Each endpoint renders one of these; the
// mapping functions below are pure so they can be tested without HTTP.

type ActorView struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

type GenreView struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type HallView struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seats_in_row"`
	Capacity   int    `json:"capacity"`
}

// PlayListItem names genres and actors instead of nesting them.
type PlayListItem struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

type PlayDetail struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Genres      []GenreView `json:"genres"`
	Actors      []ActorView `json:"actors"`
}

type PerformanceListItem struct {
	ID                  uint64    `json:"id"`
	PlayTitle           string    `json:"play_title"`
	TheaterHallName     string    `json:"theater_hall_name"`
	TheaterHallCapacity int       `json:"theater_hall_capacity"`
	ShowTime            time.Time `json:"show_time"`
	TicketsAvailable    int       `json:"tickets_available"`
}

// TakenPlace is an occupied seat of a performance.
type TakenPlace struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type PerformanceDetail struct {
	ID          uint64       `json:"id"`
	Play        PlayDetail   `json:"play"`
	TheaterHall HallView     `json:"theater_hall"`
	ShowTime    time.Time    `json:"show_time"`
	TakenPlaces []TakenPlace `json:"taken_places"`
}

// TicketPerformance is the performance a ticket admits to.
type TicketPerformance struct {
	ID              uint64    `json:"id"`
	PlayTitle       string    `json:"play_title"`
	TheaterHallName string    `json:"theater_hall_name"`
	ShowTime        time.Time `json:"show_time"`
}

type TicketView struct {
	ID          uint64            `json:"id"`
	Row         int               `json:"row"`
	Seat        int               `json:"seat"`
	Performance TicketPerformance `json:"performance"`
}

type ReservationListItem struct {
	ID        uint64       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Tickets   []TicketView `json:"tickets"`
}

func actorView(a model.Actor) ActorView {
	return ActorView{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

func genreView(g model.Genre) GenreView {
	return GenreView{ID: g.ID, Name: g.Name}
}

func hallView(h model.TheaterHall) HallView {
	return HallView{ID: h.ID, Name: h.Name, Rows: h.Rows, SeatsInRow: h.SeatsInRow, Capacity: h.Capacity()}
}

func playListItem(p model.Play) PlayListItem {
	item := PlayListItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Genres:      make([]string, 0, len(p.Genres)),
		Actors:      make([]string, 0, len(p.Actors)),
	}
	for _, g := range p.Genres {
		item.Genres = append(item.Genres, g.Name)
	}
	for _, a := range p.Actors {
		item.Actors = append(item.Actors, a.FullName())
	}
	return item
}

func playDetail(p model.Play) PlayDetail {
	d := PlayDetail{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Genres:      make([]GenreView, 0, len(p.Genres)),
		Actors:      make([]ActorView, 0, len(p.Actors)),
	}
	for _, g := range p.Genres {
		d.Genres = append(d.Genres, genreView(g))
	}
	for _, a := range p.Actors {
		d.Actors = append(d.Actors, actorView(a))
	}
	return d
}

func performanceListItem(s repository.PerformanceSummary) PerformanceListItem {
	return PerformanceListItem{
		ID:                  s.ID,
		PlayTitle:           s.PlayTitle,
		TheaterHallName:     s.Hall.Name,
		TheaterHallCapacity: s.Hall.Capacity(),
		ShowTime:            s.ShowTime.UTC(),
		TicketsAvailable:    s.TicketsAvailable,
	}
}

func performanceDetail(s repository.PerformanceSummary, play model.Play, taken []model.Ticket) PerformanceDetail {
	d := PerformanceDetail{
		ID:          s.ID,
		Play:        playDetail(play),
		TheaterHall: hallView(s.Hall),
		ShowTime:    s.ShowTime.UTC(),
		TakenPlaces: make([]TakenPlace, 0, len(taken)),
	}
	for _, t := range taken {
		d.TakenPlaces = append(d.TakenPlaces, TakenPlace{Row: t.Row, Seat: t.Seat})
	}
	return d
}

func reservationListItem(r repository.ReservationDetail) ReservationListItem {
	item := ReservationListItem{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC(),
		Tickets:   make([]TicketView, 0, len(r.Tickets)),
	}
	for _, t := range r.Tickets {
		item.Tickets = append(item.Tickets, TicketView{
			ID:   t.ID,
			Row:  t.Row,
			Seat: t.Seat,
			Performance: TicketPerformance{
				ID:              t.PerformanceID,
				PlayTitle:       t.PlayTitle,
				TheaterHallName: t.HallName,
				ShowTime:        t.ShowTime.UTC(),
			},
		})
	}
	return item
}

// committedReservation renders a reservation as the engine returned it.
// Performances carry only their id.
func committedReservation(r model.Reservation) ReservationListItem {
	item := ReservationListItem{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC(),
		Tickets:   make([]TicketView, 0, len(r.Tickets)),
	}
	for _, t := range r.Tickets {
		item.Tickets = append(item.Tickets, TicketView{
			ID:          t.ID,
			Row:         t.Row,
			Seat:        t.Seat,
			Performance: TicketPerformance{ID: t.PerformanceID},
		})
	}
	return item
}
