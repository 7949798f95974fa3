package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-booking/internal/logger"
	"github.com/iliyamo/theater-booking/internal/model"
	"github.com/iliyamo/theater-booking/internal/repository"
	"github.com/iliyamo/theater-booking/internal/service"
)

// ReservationCreator is the reservation engine.
type ReservationCreator interface {
	Reserve(ctx context.Context, userID uint64, tickets []service.TicketRequest) (*model.Reservation, error)
}

// ReservationReader lists reservations of one user.
type ReservationReader interface {
	CountByUser(ctx context.Context, userID uint64) (int, error)
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]repository.ReservationDetail, error)
	GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*repository.ReservationDetail, error)
}

// ReservationHandler lets an authenticated user book seats and list
// their own reservations.
type ReservationHandler struct {
	Engine       ReservationCreator
	Reservations ReservationReader
}

// NewReservationHandler panics if any dependency is nil.
func NewReservationHandler(engine ReservationCreator, reservations ReservationReader) *ReservationHandler {
	if engine == nil || reservations == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Engine: engine, Reservations: reservations}
}

type ticketInput struct {
	Row         int    `json:"row"`
	Seat        int    `json:"seat"`
	Performance uint64 `json:"performance" validate:"required"`
}

type createReservationRequest struct {
	Tickets []ticketInput `json:"tickets" validate:"dive"`
}

// ListReservations handles GET /api/theater/reservations.  Results are
// the caller's reservations, newest first, paged by limit and offset.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, offset, err := parsePage(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	count, err := h.Reservations.CountByUser(ctx, userID)
	if err != nil {
		return internalError(c, err, "count reservations")
	}
	list, err := h.Reservations.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return internalError(c, err, "list reservations")
	}

	page := Page[ReservationListItem]{Count: count, Results: make([]ReservationListItem, 0, len(list))}
	page.Next, page.Previous = pageLinks(c, count, limit, offset)
	for _, r := range list {
		page.Results = append(page.Results, reservationListItem(r))
	}
	return c.JSON(http.StatusOK, page)
}

// CreateReservation handles POST /api/theater/reservations.  Every
// ticket is booked or none is; a rejected request answers 400 naming
// what was wrong.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	tickets := make([]service.TicketRequest, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		tickets = append(tickets, service.TicketRequest{Row: t.Row, Seat: t.Seat, PerformanceID: t.Performance})
	}

	ctx := c.Request().Context()
	created, err := h.Engine.Reserve(ctx, userID, tickets)
	if err != nil {
		return reservationError(c, err)
	}
	res, err := h.Reservations.GetByIDForUser(ctx, created.ID, userID)
	if err != nil {
		// The seats are booked; answer with what the engine returned.
		logger.FromContext(ctx).WithError(err).WithField("reservation_id", created.ID).
			Warn("reload reservation failed")
		return c.JSON(http.StatusCreated, committedReservation(*created))
	}
	return c.JSON(http.StatusCreated, reservationListItem(*res))
}

// reservationError maps engine errors to responses.  Every rejection a
// user can correct is a 400; anything else is an internal fault.
func reservationError(c echo.Context, err error) error {
	var (
		notFound *service.PerformanceNotFoundError
		invalid  *service.InvalidSeatError
		taken    *service.SeatTakenError
	)
	switch {
	case errors.Is(err, service.ErrEmptyRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "field": "tickets"})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "field": "performance", "performance": notFound.PerformanceID})
	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "field": invalid.Field, "index": invalid.Index})
	case errors.As(err, &taken):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":       err.Error(),
			"row":         taken.Row,
			"seat":        taken.Seat,
			"performance": taken.PerformanceID,
		})
	case errors.Is(err, context.DeadlineExceeded):
		logger.FromContext(c.Request().Context()).WithError(err).Warn("reservation timed out")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "reservation timed out"})
	case errors.Is(err, context.Canceled):
		logger.FromContext(c.Request().Context()).WithError(err).Warn("reservation cancelled by client")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "reservation cancelled"})
	}
	return internalError(c, err, "create reservation")
}
