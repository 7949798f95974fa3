package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends domain events to RabbitMQ.  Each publish dials the
// broker, so a Publisher holds no connection state and is safe for
// concurrent use.  Errors are logged and returned so callers can choose
// to ignore them without interrupting the main request flow.
type Publisher struct {
	URL         string
	DialTimeout time.Duration
	log         *logrus.Entry
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url, DialTimeout: 2 * time.Second, log: logrus.WithField("component", "rabbitmq-publisher")}
}

// PublishReservationCreated publishes ev to the reservation.created
// queue.  Messages are marked as persistent.
func (p *Publisher) PublishReservationCreated(ctx context.Context, ev ReservationCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.DialTimeout),
	})
	if err != nil {
		p.log.WithError(err).Warn("dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Warn("channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		ReservationCreatedQueue, // name
		true,                    // durable
		false,                   // autoDelete
		false,                   // exclusive
		false,                   // noWait
		nil,                     // args
	); err != nil {
		p.log.WithError(err).Warn("queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                      // default exchange
		ReservationCreatedQueue, // routing key = queue name
		false,                   // mandatory
		false,                   // immediate
		pub,
	); err != nil {
		p.log.WithError(err).Warn("publish failed")
		return err
	}
	return nil
}
