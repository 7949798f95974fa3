package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-booking/internal/model"
	"github.com/iliyamo/theater-booking/internal/repository"
)

// Catalog persistence consumed by CatalogHandler.  The repository types
// satisfy these.
type (
	ActorStore interface {
		Create(ctx context.Context, a *model.Actor) error
		List(ctx context.Context) ([]model.Actor, error)
	}
	GenreStore interface {
		Create(ctx context.Context, g *model.Genre) error
		List(ctx context.Context) ([]model.Genre, error)
	}
	HallStore interface {
		Create(ctx context.Context, h *model.TheaterHall) error
		List(ctx context.Context) ([]model.TheaterHall, error)
	}
	PlayStore interface {
		Create(ctx context.Context, p *model.Play) error
		GetByID(ctx context.Context, id uint64) (*model.Play, error)
		List(ctx context.Context) ([]model.Play, error)
	}
)

// CatalogHandler serves actors, genres, theater halls and plays.  Reads
// are open to every authenticated user; writes are wired behind the
// admin role by the router.
type CatalogHandler struct {
	Actors ActorStore
	Genres GenreStore
	Halls  HallStore
	Plays  PlayStore
}

// NewCatalogHandler panics if any store is nil.
func NewCatalogHandler(actors ActorStore, genres GenreStore, halls HallStore, plays PlayStore) *CatalogHandler {
	if actors == nil || genres == nil || halls == nil || plays == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Actors: actors, Genres: genres, Halls: halls, Plays: plays}
}

type createActorRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
}

type createGenreRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type createHallRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Rows       int    `json:"rows" validate:"required,min=1"`
	SeatsInRow int    `json:"seats_in_row" validate:"required,min=1"`
}

type createPlayRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Actors      []uint64 `json:"actors" validate:"dive,min=1"`
	Genres      []uint64 `json:"genres" validate:"dive,min=1"`
}

// ListActors handles GET /api/theater/actors.
func (h *CatalogHandler) ListActors(c echo.Context) error {
	actors, err := h.Actors.List(c.Request().Context())
	if err != nil {
		return internalError(c, err, "list actors")
	}
	out := make([]ActorView, 0, len(actors))
	for _, a := range actors {
		out = append(out, actorView(a))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateActor handles POST /api/theater/actors.
func (h *CatalogHandler) CreateActor(c echo.Context) error {
	var req createActorRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	a := model.Actor{FirstName: strings.TrimSpace(req.FirstName), LastName: strings.TrimSpace(req.LastName)}
	if err := h.Actors.Create(c.Request().Context(), &a); err != nil {
		return internalError(c, err, "create actor")
	}
	return c.JSON(http.StatusCreated, actorView(a))
}

// ListGenres handles GET /api/theater/genres.
func (h *CatalogHandler) ListGenres(c echo.Context) error {
	genres, err := h.Genres.List(c.Request().Context())
	if err != nil {
		return internalError(c, err, "list genres")
	}
	out := make([]GenreView, 0, len(genres))
	for _, g := range genres {
		out = append(out, genreView(g))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateGenre handles POST /api/theater/genres.  Genre names are unique.
func (h *CatalogHandler) CreateGenre(c echo.Context) error {
	var req createGenreRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	g := model.Genre{Name: strings.TrimSpace(req.Name)}
	if err := h.Genres.Create(c.Request().Context(), &g); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "genre with this name already exists", "field": "name"})
		}
		return internalError(c, err, "create genre")
	}
	return c.JSON(http.StatusCreated, genreView(g))
}

// ListHalls handles GET /api/theater/theater-halls.
func (h *CatalogHandler) ListHalls(c echo.Context) error {
	halls, err := h.Halls.List(c.Request().Context())
	if err != nil {
		return internalError(c, err, "list halls")
	}
	out := make([]HallView, 0, len(halls))
	for _, hall := range halls {
		out = append(out, hallView(hall))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateHall handles POST /api/theater/theater-halls.
func (h *CatalogHandler) CreateHall(c echo.Context) error {
	var req createHallRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	hall := model.TheaterHall{Name: strings.TrimSpace(req.Name), Rows: req.Rows, SeatsInRow: req.SeatsInRow}
	if err := h.Halls.Create(c.Request().Context(), &hall); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "theater hall with this name already exists", "field": "name"})
		}
		return internalError(c, err, "create hall")
	}
	return c.JSON(http.StatusCreated, hallView(hall))
}

// ListPlays handles GET /api/theater/plays.
func (h *CatalogHandler) ListPlays(c echo.Context) error {
	plays, err := h.Plays.List(c.Request().Context())
	if err != nil {
		return internalError(c, err, "list plays")
	}
	out := make([]PlayListItem, 0, len(plays))
	for _, p := range plays {
		out = append(out, playListItem(p))
	}
	return c.JSON(http.StatusOK, out)
}

// GetPlay handles GET /api/theater/plays/:id.
func (h *CatalogHandler) GetPlay(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	p, err := h.Plays.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return internalError(c, err, "get play")
	}
	return c.JSON(http.StatusOK, playDetail(*p))
}

// CreatePlay handles POST /api/theater/plays.  Actors and genres are
// given by id and must exist.
func (h *CatalogHandler) CreatePlay(c echo.Context) error {
	var req createPlayRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p := model.Play{Title: strings.TrimSpace(req.Title), Description: req.Description}
	for _, id := range dedupe(req.Actors) {
		p.Actors = append(p.Actors, model.Actor{ID: id})
	}
	for _, id := range dedupe(req.Genres) {
		p.Genres = append(p.Genres, model.Genre{ID: id})
	}

	ctx := c.Request().Context()
	if err := h.Plays.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown actor or genre"})
		}
		return internalError(c, err, "create play")
	}
	created, err := h.Plays.GetByID(ctx, p.ID)
	if err != nil {
		return internalError(c, err, "reload play")
	}
	return c.JSON(http.StatusCreated, playDetail(*created))
}

// dedupe drops repeated ids keeping first occurrences.
func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
