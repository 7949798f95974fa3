package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theater-booking/internal/model"
)

// GenreRepo provides create and list operations for genres.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo returns a new GenreRepo bound to the given database.
func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{db: db} }

// Create inserts a genre.  A name that already exists yields
// ErrDuplicateName.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	const q = `INSERT INTO genres (name) VALUES (?)`
	res, err := r.db.ExecContext(ctx, q, g.Name)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateName
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// List returns all genres ordered by ID.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	const q = `SELECT id, name FROM genres ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
