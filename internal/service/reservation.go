package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-booking/internal/model"
	"github.com/iliyamo/theater-booking/internal/queue"
	"github.com/iliyamo/theater-booking/internal/repository"
)

// TicketRequest asks for one seat of one performance.
type TicketRequest struct {
	Row           int
	Seat          int
	PerformanceID uint64
}

// EventPublisher receives reservation events after commit.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

const publishTimeout = 3 * time.Second

// ReservationService creates reservations atomically.  It keeps no state
// between calls; seat uniqueness is left to the Store.
type ReservationService struct {
	store     Store
	publisher EventPublisher

	// Timeout bounds a whole CreateReservation call when positive.
	Timeout time.Duration
	// Now is the clock used for CreatedAt.
	Now func() time.Time

	log *logrus.Entry
}

// NewReservationService builds a service over store.  publisher may be
// nil, in which case no events are emitted.
func NewReservationService(store Store, publisher EventPublisher) *ReservationService {
	if store == nil {
		panic("nil store passed to NewReservationService")
	}
	return &ReservationService{
		store:     store,
		publisher: publisher,
		Now:       time.Now,
		log:       logrus.WithField("component", "reservation-service"),
	}
}

// CreateReservation reserves every requested seat for userID in one
// transaction and returns the new reservation id.  Any failure rolls back
// the reservation and all tickets written so far.
//
// Returned errors are ErrEmptyRequest, *PerformanceNotFoundError,
// *InvalidSeatError, *SeatTakenError, a context error, or a wrapped
// storage failure.
func (s *ReservationService) CreateReservation(ctx context.Context, userID uint64, tickets []TicketRequest) (uint64, error) {
	res, err := s.Reserve(ctx, userID, tickets)
	if err != nil {
		return 0, err
	}
	return res.ID, nil
}

// Reserve is CreateReservation returning the committed reservation with
// its tickets in request order.
func (s *ReservationService) Reserve(ctx context.Context, userID uint64, tickets []TicketRequest) (*model.Reservation, error) {
	if len(tickets) == 0 {
		return nil, ErrEmptyRequest
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reservation tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res := &model.Reservation{UserID: userID, CreatedAt: s.Now().UTC()}
	if err := tx.CreateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	performances := make(map[uint64]*model.Performance)
	for i, req := range tickets {
		perf, ok := performances[req.PerformanceID]
		if !ok {
			perf, err = tx.GetPerformance(ctx, req.PerformanceID)
			if errors.Is(err, repository.ErrPerformanceNotFound) {
				return nil, &PerformanceNotFoundError{PerformanceID: req.PerformanceID}
			}
			if err != nil {
				return nil, fmt.Errorf("load performance %d: %w", req.PerformanceID, err)
			}
			performances[req.PerformanceID] = perf
		}

		if err := ValidateSeat(req.Row, req.Seat, perf.Hall); err != nil {
			var rangeErr *SeatRangeError
			errors.As(err, &rangeErr)
			return nil, &InvalidSeatError{Index: i, SeatRangeError: rangeErr}
		}

		t := model.Ticket{Row: req.Row, Seat: req.Seat, PerformanceID: req.PerformanceID, ReservationID: res.ID}
		if err := tx.CreateTicket(ctx, &t); err != nil {
			switch {
			case errors.Is(err, repository.ErrSeatTaken):
				return nil, &SeatTakenError{Row: req.Row, Seat: req.Seat, PerformanceID: req.PerformanceID}
			case errors.Is(err, repository.ErrPerformanceNotFound):
				return nil, &PerformanceNotFoundError{PerformanceID: req.PerformanceID}
			default:
				return nil, fmt.Errorf("insert ticket %d: %w", i, err)
			}
		}
		res.Tickets = append(res.Tickets, t)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reservation: %w", err)
	}
	committed = true

	s.publish(ctx, res, performances)
	return res, nil
}

// AvailableSeats returns the number of seats of the performance that
// have no committed ticket.
func (s *ReservationService) AvailableSeats(ctx context.Context, performanceID uint64) (int, error) {
	n, err := s.store.AvailableSeats(ctx, performanceID)
	if errors.Is(err, repository.ErrPerformanceNotFound) {
		return 0, &PerformanceNotFoundError{PerformanceID: performanceID}
	}
	if err != nil {
		return 0, fmt.Errorf("available seats of performance %d: %w", performanceID, err)
	}
	return n, nil
}

func (s *ReservationService) publish(ctx context.Context, res *model.Reservation, performances map[uint64]*model.Performance) {
	if s.publisher == nil {
		return
	}
	ev := queue.ReservationCreatedEvent{
		EventID:       uuid.NewString(),
		ReservationID: res.ID,
		UserID:        res.UserID,
		CreatedAt:     res.CreatedAt.Format(time.RFC3339),
		Tickets:       make([]queue.TicketEntry, 0, len(res.Tickets)),
	}
	for _, t := range res.Tickets {
		p := performances[t.PerformanceID]
		ev.Tickets = append(ev.Tickets, queue.TicketEntry{
			PerformanceID: t.PerformanceID,
			HallName:      p.Hall.Name,
			ShowTime:      p.ShowTime.UTC().Format(time.RFC3339),
			Row:           t.Row,
			Seat:          t.Seat,
		})
	}

	// The reservation is committed; a cancelled request must not drop the event.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishReservationCreated(pubCtx, ev); err != nil {
		s.log.WithError(err).WithField("reservation_id", res.ID).Warn("publish reservation.created failed")
	}
}
