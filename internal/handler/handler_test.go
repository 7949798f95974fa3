package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-booking/internal/model"
	"github.com/iliyamo/theater-booking/internal/repository"
	"github.com/iliyamo/theater-booking/internal/service"
)

// newEcho returns an Echo instance with the request validator and a
// middleware that authenticates every request as userID.
func newEcho(userID uint64) *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != 0 {
				c.Set("user_id", userID)
			}
			return next(c)
		}
	})
	return e
}

func request(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type fakeActors struct {
	list   []model.Actor
	nextID uint64
	err    error
}

func (f *fakeActors) Create(_ context.Context, a *model.Actor) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	a.ID = f.nextID
	f.list = append(f.list, *a)
	return nil
}

func (f *fakeActors) List(context.Context) ([]model.Actor, error) { return f.list, f.err }

type fakeGenres struct {
	list []model.Genre
	err  error
}

func (f *fakeGenres) Create(_ context.Context, g *model.Genre) error {
	for _, have := range f.list {
		if have.Name == g.Name {
			return repository.ErrDuplicateName
		}
	}
	if f.err != nil {
		return f.err
	}
	g.ID = uint64(len(f.list) + 1)
	f.list = append(f.list, *g)
	return nil
}

func (f *fakeGenres) List(context.Context) ([]model.Genre, error) { return f.list, f.err }

type fakeHalls struct {
	list []model.TheaterHall
}

func (f *fakeHalls) Create(_ context.Context, h *model.TheaterHall) error {
	for _, have := range f.list {
		if have.Name == h.Name {
			return repository.ErrDuplicateName
		}
	}
	h.ID = uint64(len(f.list) + 1)
	f.list = append(f.list, *h)
	return nil
}

func (f *fakeHalls) List(context.Context) ([]model.TheaterHall, error) { return f.list, nil }

// fakePlays resolves actor and genre ids against the known catalog.
type fakePlays struct {
	actors map[uint64]model.Actor
	genres map[uint64]model.Genre
	plays  map[uint64]model.Play
}

func newFakePlays() *fakePlays {
	return &fakePlays{
		actors: map[uint64]model.Actor{},
		genres: map[uint64]model.Genre{},
		plays:  map[uint64]model.Play{},
	}
}

func (f *fakePlays) Create(_ context.Context, p *model.Play) error {
	for i, a := range p.Actors {
		full, ok := f.actors[a.ID]
		if !ok {
			return repository.ErrInvalidReference
		}
		p.Actors[i] = full
	}
	for i, g := range p.Genres {
		full, ok := f.genres[g.ID]
		if !ok {
			return repository.ErrInvalidReference
		}
		p.Genres[i] = full
	}
	p.ID = uint64(len(f.plays) + 1)
	f.plays[p.ID] = *p
	return nil
}

func (f *fakePlays) GetByID(_ context.Context, id uint64) (*model.Play, error) {
	p, ok := f.plays[id]
	if !ok {
		return nil, repository.ErrPlayNotFound
	}
	return &p, nil
}

func (f *fakePlays) List(context.Context) ([]model.Play, error) {
	out := make([]model.Play, 0, len(f.plays))
	for id := uint64(1); id <= uint64(len(f.plays)); id++ {
		out = append(out, f.plays[id])
	}
	return out, nil
}

type fakePerformances struct {
	summaries map[uint64]repository.PerformanceSummary
	taken     map[uint64][]model.Ticket
	halls     map[uint64]model.TheaterHall
	plays     *fakePlays
	deleted   []uint64
}

func (f *fakePerformances) Create(_ context.Context, p *model.Performance) error {
	hall, ok := f.halls[p.Hall.ID]
	if !ok {
		return repository.ErrInvalidReference
	}
	play, ok := f.plays.plays[p.PlayID]
	if !ok {
		return repository.ErrInvalidReference
	}
	p.ID = uint64(len(f.summaries) + 1)
	f.summaries[p.ID] = repository.PerformanceSummary{
		ID:               p.ID,
		PlayID:           p.PlayID,
		PlayTitle:        play.Title,
		Hall:             hall,
		ShowTime:         p.ShowTime,
		TicketsAvailable: hall.Capacity(),
	}
	return nil
}

func (f *fakePerformances) List(context.Context) ([]repository.PerformanceSummary, error) {
	out := make([]repository.PerformanceSummary, 0, len(f.summaries))
	for id := uint64(1); id <= uint64(len(f.summaries)); id++ {
		if s, ok := f.summaries[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakePerformances) GetSummary(_ context.Context, id uint64) (*repository.PerformanceSummary, error) {
	s, ok := f.summaries[id]
	if !ok {
		return nil, repository.ErrPerformanceNotFound
	}
	return &s, nil
}

func (f *fakePerformances) TakenSeats(_ context.Context, id uint64) ([]model.Ticket, error) {
	return f.taken[id], nil
}

func (f *fakePerformances) Delete(_ context.Context, id uint64) error {
	if _, ok := f.summaries[id]; !ok {
		return repository.ErrPerformanceNotFound
	}
	delete(f.summaries, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSeats struct {
	available map[uint64]int
	err       error
}

func (f *fakeSeats) AvailableSeats(_ context.Context, id uint64) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, ok := f.available[id]
	if !ok {
		return 0, &service.PerformanceNotFoundError{PerformanceID: id}
	}
	return n, nil
}

// fakeEngine books every request as reservation id, numbering tickets
// from 100.
type fakeEngine struct {
	id      uint64
	created time.Time
	err     error

	gotUser    uint64
	gotTickets []service.TicketRequest
}

func (f *fakeEngine) Reserve(_ context.Context, userID uint64, tickets []service.TicketRequest) (*model.Reservation, error) {
	f.gotUser, f.gotTickets = userID, tickets
	if f.err != nil {
		return nil, f.err
	}
	res := &model.Reservation{ID: f.id, UserID: userID, CreatedAt: f.created}
	for i, t := range tickets {
		res.Tickets = append(res.Tickets, model.Ticket{
			ID: uint64(100 + i), Row: t.Row, Seat: t.Seat, PerformanceID: t.PerformanceID, ReservationID: f.id,
		})
	}
	return res, nil
}

type fakeReservations struct {
	list []repository.ReservationDetail // newest first

	gotLimit, gotOffset int
}

func (f *fakeReservations) CountByUser(_ context.Context, userID uint64) (int, error) {
	n := 0
	for _, r := range f.list {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeReservations) ListByUser(_ context.Context, userID uint64, limit, offset int) ([]repository.ReservationDetail, error) {
	f.gotLimit, f.gotOffset = limit, offset
	var mine []repository.ReservationDetail
	for _, r := range f.list {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	if offset >= len(mine) {
		return nil, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], nil
}

func (f *fakeReservations) GetByIDForUser(_ context.Context, id, userID uint64) (*repository.ReservationDetail, error) {
	for _, r := range f.list {
		if r.ID == id && r.UserID == userID {
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}
