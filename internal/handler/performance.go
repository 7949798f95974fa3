package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-booking/internal/model"
	"github.com/iliyamo/theater-booking/internal/repository"
	"github.com/iliyamo/theater-booking/internal/service"
)

// PerformanceStore is the performance persistence used by PerformanceHandler.
type PerformanceStore interface {
	Create(ctx context.Context, p *model.Performance) error
	List(ctx context.Context) ([]repository.PerformanceSummary, error)
	GetSummary(ctx context.Context, id uint64) (*repository.PerformanceSummary, error)
	TakenSeats(ctx context.Context, id uint64) ([]model.Ticket, error)
	Delete(ctx context.Context, id uint64) error
}

// SeatCounter reports free seats of a performance.
type SeatCounter interface {
	AvailableSeats(ctx context.Context, performanceID uint64) (int, error)
}

// PerformanceHandler serves scheduled performances.  Nothing here is
// cached: availability must always reflect committed tickets.
type PerformanceHandler struct {
	Performances PerformanceStore
	Plays        PlayStore
	Seats        SeatCounter
}

// NewPerformanceHandler panics if any dependency is nil.
func NewPerformanceHandler(performances PerformanceStore, plays PlayStore, seats SeatCounter) *PerformanceHandler {
	if performances == nil || plays == nil || seats == nil {
		panic("nil dependency passed to NewPerformanceHandler")
	}
	return &PerformanceHandler{Performances: performances, Plays: plays, Seats: seats}
}

type createPerformanceRequest struct {
	Play        uint64    `json:"play" validate:"required"`
	TheaterHall uint64    `json:"theater_hall" validate:"required"`
	ShowTime    time.Time `json:"show_time" validate:"required"`
}

// ListPerformances handles GET /api/theater/performances, ordered by show time.
func (h *PerformanceHandler) ListPerformances(c echo.Context) error {
	list, err := h.Performances.List(c.Request().Context())
	if err != nil {
		return internalError(c, err, "list performances")
	}
	out := make([]PerformanceListItem, 0, len(list))
	for _, s := range list {
		out = append(out, performanceListItem(s))
	}
	return c.JSON(http.StatusOK, out)
}

// CreatePerformance handles POST /api/theater/performances.
func (h *PerformanceHandler) CreatePerformance(c echo.Context) error {
	var req createPerformanceRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	p := model.Performance{PlayID: req.Play, Hall: model.TheaterHall{ID: req.TheaterHall}, ShowTime: req.ShowTime.UTC()}
	if err := h.Performances.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown play or theater hall"})
		}
		return internalError(c, err, "create performance")
	}
	s, err := h.Performances.GetSummary(ctx, p.ID)
	if err != nil {
		return internalError(c, err, "reload performance")
	}
	return c.JSON(http.StatusCreated, performanceListItem(*s))
}

// GetPerformance handles GET /api/theater/performances/:id.  The detail
// lists every taken place so clients can draw the hall.
func (h *PerformanceHandler) GetPerformance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	s, err := h.Performances.GetSummary(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return internalError(c, err, "get performance")
	}
	play, err := h.Plays.GetByID(ctx, s.PlayID)
	if err != nil {
		return internalError(c, err, "get performance play")
	}
	taken, err := h.Performances.TakenSeats(ctx, id)
	if err != nil {
		return internalError(c, err, "get taken seats")
	}
	return c.JSON(http.StatusOK, performanceDetail(*s, *play, taken))
}

// DeletePerformance handles DELETE /api/theater/performances/:id.  Its
// tickets are deleted with it.
func (h *PerformanceHandler) DeletePerformance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Performances.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return internalError(c, err, "delete performance")
	}
	return c.NoContent(http.StatusNoContent)
}

// AvailableSeats handles GET /api/theater/performances/:id/available-seats.
func (h *PerformanceHandler) AvailableSeats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	n, err := h.Seats.AvailableSeats(c.Request().Context(), id)
	if err != nil {
		var notFound *service.PerformanceNotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
		}
		return internalError(c, err, "available seats")
	}
	return c.JSON(http.StatusOK, echo.Map{"performance": id, "available_seats": n})
}
