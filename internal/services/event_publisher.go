package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/config"
)

// BookingConfirmedQueue is the durable queue booking.confirmed events go to
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once per newly stored booking
type BookingConfirmedEvent struct {
	BookingID        int64     `json:"bookingId"`
	UserID           int64     `json:"userId"`
	CompanyID        int64     `json:"companyId"`
	SiteID           int64     `json:"siteId"`
	ReservationType  string    `json:"reservationType"`
	StartsAt         time.Time `json:"startsAt"`
	EndsAt           time.Time `json:"endsAt"`
	Price            int64     `json:"price"`
	PaymentReference string    `json:"paymentReference,omitempty"`
	ConfirmedAt      time.Time `json:"confirmedAt"`
}

// EventPublisher publishes domain events
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error
	Close() error
}

// NewEventPublisher returns a RabbitMQ publisher, or a no-op one when no
// broker URL is configured
func NewEventPublisher(cfg config.RabbitMQConfig, logger *logrus.Logger) EventPublisher {
	if cfg.URL == "" {
		logger.Info("RABBITMQ_URL not set, domain events are disabled")
		return noopPublisher{}
	}
	return &RabbitMQPublisher{
		url:    cfg.URL,
		logger: logger,
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	return nil
}

func (noopPublisher) Close() error { return nil }

// RabbitMQPublisher publishes persistent JSON messages to the default exchange.
// The connection is opened on first use and reopened after it drops.
type RabbitMQPublisher struct {
	url    string
	logger *logrus.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// PublishBookingConfirmed sends event to the booking.confirmed queue
func (p *RabbitMQPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",                    // default exchange
		BookingConfirmedQueue, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.reset()
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	p.logger.WithField("booking_id", event.BookingID).Debug("Booking confirmed event published")
	return nil
}

// channel returns an open channel with the queue declared; p.mu must be held
func (p *RabbitMQPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	p.conn = conn
	p.ch = ch
	return ch, nil
}

func (p *RabbitMQPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close closes the broker connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
