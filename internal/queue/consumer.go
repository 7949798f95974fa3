package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer listens to the reservation.created queue and appends one line
// per event to a log file.
type Consumer struct {
	URL     string
	LogPath string
	log     *logrus.Entry
}

// NewConsumer returns a Consumer for the broker at url writing to
// logPath (logs/reservations.log when empty).
func NewConsumer(url, logPath string) *Consumer {
	if logPath == "" {
		logPath = filepath.Join("logs", "reservations.log")
	}
	return &Consumer{URL: url, LogPath: logPath, log: logrus.WithField("component", "reservation-consumer")}
}

// Run connects to the broker, declares the queue and consumes messages
// until ctx is cancelled.  Lost connections are retried with
// exponential backoff capped at 30s.  Messages that cannot be handled
// are rejected without requeue to avoid tight loops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(ReservationCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ReservationCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(d.Body); err != nil {
				c.log.WithError(err).Error("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev ReservationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return WriteLogLine(f, ev)
}

// WriteLogLine renders ev as a single human-friendly line.
func WriteLogLine(w io.Writer, ev ReservationCreatedEvent) error {
	seats := make([]string, 0, len(ev.Tickets))
	for _, t := range ev.Tickets {
		seats = append(seats, fmt.Sprintf("p%d:r%d:s%d", t.PerformanceID, t.Row, t.Seat))
	}
	line := fmt.Sprintf("[%s] Reservation created | reservation_id=%d | user_id=%d | event_id=%s | tickets=%d | seats=[%s]\n",
		ev.CreatedAt, ev.ReservationID, ev.UserID, ev.EventID, len(ev.Tickets), strings.Join(seats, ","))
	if _, err := io.WriteString(w, line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// StartReservationConsumer runs a Consumer for url in a background
// goroutine until ctx is cancelled.
func StartReservationConsumer(ctx context.Context, url string) {
	c := NewConsumer(url, "")
	go func() {
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.log.WithError(err).Warn("consumer stopped")
		}
	}()
}
