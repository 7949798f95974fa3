package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theater-booking/internal/model"
)

// ActorRepo provides create and list operations for actors.
type ActorRepo struct {
	db *sql.DB
}

// NewActorRepo returns a new ActorRepo bound to the given database.
func NewActorRepo(db *sql.DB) *ActorRepo { return &ActorRepo{db: db} }

// Create inserts an actor and sets its generated ID.
func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	const q = `INSERT INTO actors (first_name, last_name) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.FirstName, a.LastName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// List returns all actors ordered by ID.
func (r *ActorRepo) List(ctx context.Context) ([]model.Actor, error) {
	const q = `SELECT id, first_name, last_name FROM actors ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Actor{}
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
