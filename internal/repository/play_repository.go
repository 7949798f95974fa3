package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/theater-booking/internal/model"
)

// ErrPlayNotFound indicates that a play was not located in the DB.
var ErrPlayNotFound = errors.New("play not found")

// PlayRepo manages persistence for plays and their actor/genre links.
type PlayRepo struct {
	db *sql.DB
}

// NewPlayRepo constructs a PlayRepo with the given DB handle.
func NewPlayRepo(db *sql.DB) *PlayRepo {
	return &PlayRepo{db: db}
}

// Create inserts a play together with its actor and genre links in one
// transaction.  Unknown actor or genre IDs roll everything back and
// return ErrInvalidReference.  Only the IDs of p.Actors and p.Genres are
// read.
func (r *PlayRepo) Create(ctx context.Context, p *model.Play) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO plays (title, description) VALUES (?, ?)`
	res, err := tx.ExecContext(ctx, q, p.Title, p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	for _, a := range p.Actors {
		if _, err := tx.ExecContext(ctx, `INSERT INTO play_actors (play_id, actor_id) VALUES (?, ?)`, p.ID, a.ID); err != nil {
			if isMissingReference(err) {
				return ErrInvalidReference
			}
			return err
		}
	}
	for _, g := range p.Genres {
		if _, err := tx.ExecContext(ctx, `INSERT INTO play_genres (play_id, genre_id) VALUES (?, ?)`, p.ID, g.ID); err != nil {
			if isMissingReference(err) {
				return ErrInvalidReference
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a play with its actors and genres.  It returns
// ErrPlayNotFound if there is no matching row.
func (r *PlayRepo) GetByID(ctx context.Context, id uint64) (*model.Play, error) {
	const q = `SELECT id, title, description FROM plays WHERE id = ?`
	var p model.Play
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Title, &p.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayNotFound
		}
		return nil, err
	}
	plays := []model.Play{p}
	if err := r.loadRelations(ctx, plays); err != nil {
		return nil, err
	}
	return &plays[0], nil
}

// List returns all plays ordered by title with actors and genres loaded.
func (r *PlayRepo) List(ctx context.Context) ([]model.Play, error) {
	const q = `SELECT id, title, description FROM plays ORDER BY title, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Play{}
	for rows.Next() {
		var p model.Play
		if err := rows.Scan(&p.ID, &p.Title, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadRelations fills Actors and Genres of every play with two IN
// queries.  Relations keep the ordering of the link queries.
func (r *PlayRepo) loadRelations(ctx context.Context, plays []model.Play) error {
	if len(plays) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(plays))
	args := make([]interface{}, 0, len(plays))
	for i := range plays {
		index[plays[i].ID] = i
		plays[i].Actors = []model.Actor{}
		plays[i].Genres = []model.Genre{}
		args = append(args, plays[i].ID)
	}
	in := placeholders(len(plays))

	actorQ := `SELECT pa.play_id, a.id, a.first_name, a.last_name
	           FROM play_actors pa JOIN actors a ON a.id = pa.actor_id
	           WHERE pa.play_id IN (` + in + `) ORDER BY a.id`
	rows, err := r.db.QueryContext(ctx, actorQ, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var playID uint64
		var a model.Actor
		if err := rows.Scan(&playID, &a.ID, &a.FirstName, &a.LastName); err != nil {
			rows.Close()
			return err
		}
		if i, ok := index[playID]; ok {
			plays[i].Actors = append(plays[i].Actors, a)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	genreQ := `SELECT pg.play_id, g.id, g.name
	           FROM play_genres pg JOIN genres g ON g.id = pg.genre_id
	           WHERE pg.play_id IN (` + in + `) ORDER BY g.id`
	rows, err = r.db.QueryContext(ctx, genreQ, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var playID uint64
		var g model.Genre
		if err := rows.Scan(&playID, &g.ID, &g.Name); err != nil {
			return err
		}
		if i, ok := index[playID]; ok {
			plays[i].Genres = append(plays[i].Genres, g)
		}
	}
	return rows.Err()
}

// placeholders returns "?, ?, ?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
