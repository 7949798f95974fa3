package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-booking/internal/model"
)

var (
	errDuplicate = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	errNoParent  = &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	errDeadlock  = &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock; try restarting transaction"}
	errLockWait  = &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded; try restarting transaction"}
	showTime     = time.Date(2025, 11, 1, 19, 30, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestGenreCreateDuplicateName(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO genres (name)")).
		WithArgs("drama").
		WillReturnError(errDuplicate)

	err := NewGenreRepo(db).Create(context.Background(), &model.Genre{Name: "drama"})
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHallCreateAndGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHallRepo(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO theater_halls (name, seat_rows, seats_in_row)")).
		WithArgs("Blue", int64(10), int64(12)).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM theater_halls WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "seat_rows", "seats_in_row"}).AddRow(3, "Blue", 10, 12))
	mock.ExpectQuery(regexp.QuoteMeta("FROM theater_halls WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "seat_rows", "seats_in_row"}))

	h := &model.TheaterHall{Name: "Blue", Rows: 10, SeatsInRow: 12}
	require.NoError(t, repo.Create(ctx, h))
	assert.Equal(t, uint64(3), h.ID)

	got, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 120, got.Capacity())

	_, err = repo.GetByID(ctx, 9)
	assert.ErrorIs(t, err, ErrHallNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayCreateRollsBackOnUnknownGenre(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plays (title, description)")).
		WithArgs("Hamlet", "").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO play_actors")).
		WithArgs(int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO play_genres")).
		WithArgs(int64(4), int64(77)).
		WillReturnError(errNoParent)
	mock.ExpectRollback()

	err := NewPlayRepo(db).Create(context.Background(), &model.Play{
		Title:  "Hamlet",
		Actors: []model.Actor{{ID: 1}},
		Genres: []model.Genre{{ID: 77}},
	})
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayGetByIDLoadsRelations(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description FROM plays WHERE id = ?")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description"}).AddRow(4, "Hamlet", "Prince of Denmark"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM play_actors pa JOIN actors a")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "first_name", "last_name"}).
			AddRow(4, 1, "Laurence", "Olivier").
			AddRow(4, 2, "Jean", "Simmons"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM play_genres pg JOIN genres g")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "name"}).AddRow(4, 5, "tragedy"))

	p, err := NewPlayRepo(db).GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Hamlet", p.Title)
	require.Len(t, p.Actors, 2)
	assert.Equal(t, "Laurence Olivier", p.Actors[0].FullName())
	assert.Equal(t, []model.Genre{{ID: 5, Name: "tragedy"}}, p.Genres)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM plays WHERE id = ?")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description"}))

	_, err := NewPlayRepo(db).GetByID(context.Background(), 4)
	assert.ErrorIs(t, err, ErrPlayNotFound)
}

func TestPerformanceCreateUnknownReference(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO performances (play_id, theater_hall_id, show_time)")).
		WithArgs(int64(1), int64(2), showTime).
		WillReturnError(errNoParent)

	err := NewPerformanceRepo(db).Create(context.Background(), &model.Performance{
		PlayID: 1, Hall: model.TheaterHall{ID: 2}, ShowTime: showTime,
	})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestPerformanceListComputesAvailability(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "play_id", "title", "hall_id", "name", "seat_rows", "seats_in_row", "show_time", "tickets_available"}
	mock.ExpectQuery(`LEFT JOIN tickets t ON t.performance_id = p.id\s+GROUP BY .+\s+ORDER BY p.show_time, p.id`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 4, "Hamlet", 2, "Blue", 10, 10, showTime, 97).
			AddRow(2, 4, "Hamlet", 2, "Blue", 10, 10, showTime.Add(24*time.Hour), 100))

	list, err := NewPerformanceRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 97, list[0].TicketsAvailable)
	assert.Equal(t, "Blue", list[0].Hall.Name)
	assert.Equal(t, 100, list[1].Hall.Capacity())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPerformanceRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM performances WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM performances WHERE id = ?")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), ErrPerformanceNotFound)
}

func TestCreateTicketTxMapsConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate seat", errDuplicate, ErrSeatTaken},
		{"missing performance", errNoParent, ErrPerformanceNotFound},
		{"deadlock victim", errDeadlock, ErrSeatTaken},
		{"lock wait timeout", errLockWait, ErrSeatTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets (row_num, seat_num, performance_id, reservation_id)")).
				WithArgs(int64(1), int64(1), int64(8), int64(3)).
				WillReturnError(tt.err)
			mock.ExpectRollback()

			tx, err := db.Begin()
			require.NoError(t, err)
			err = NewReservationRepo(db).CreateTicketTx(context.Background(), tx, &model.Ticket{
				Row: 1, Seat: 1, PerformanceID: 8, ReservationID: 3,
			})
			assert.ErrorIs(t, err, tt.want)
			require.NoError(t, tx.Rollback())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListByUserLoadsTickets(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations")).
		WithArgs(int64(7), int64(10), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).
			AddRow(6, 7, created.Add(time.Hour)).
			AddRow(5, 7, created))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.reservation_id IN (?, ?)")).
		WithArgs(int64(6), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "id", "row_num", "seat_num", "performance_id", "title", "name", "show_time"}).
			AddRow(5, 20, 1, 1, 8, "Hamlet", "Blue", showTime).
			AddRow(5, 21, 1, 2, 8, "Hamlet", "Blue", showTime))

	list, err := NewReservationRepo(db).ListByUser(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint64(6), list[0].ID)
	assert.Empty(t, list[0].Tickets)
	require.Len(t, list[1].Tickets, 2)
	assert.Equal(t, 2, list[1].Tickets[1].Seat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
