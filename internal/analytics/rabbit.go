package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "storefront.events"
	producerName   = "courtside"
)

// RoutingKey is the topic key for events of type t, e.g. analytics.view.v1.
func RoutingKey(t EventType) string {
	return "analytics." + string(t) + ".v1"
}

// Envelope is the message body published for every event.
type Envelope struct {
	EventName    string    `json:"eventName"`
	EventVersion int       `json:"eventVersion"`
	EventID      string    `json:"eventId"`
	Producer     string    `json:"producer"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      Event     `json:"payload"`
}

// Dial connects to RabbitMQ with a bounded dial timeout.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return conn, nil
}

// RabbitSink publishes events to the storefront topic exchange.
type RabbitSink struct {
	ch *amqp.Channel
}

func NewRabbitSink(conn *amqp.Connection) (*RabbitSink, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare %s: %w", EventsExchange, err)
	}
	return &RabbitSink{ch: ch}, nil
}

func (s *RabbitSink) Close() error {
	return s.ch.Close()
}

func (s *RabbitSink) Record(ctx context.Context, e Event) error {
	body, err := json.Marshal(Envelope{
		EventName:    string(e.Type),
		EventVersion: 1,
		EventID:      uuid.NewString(),
		Producer:     producerName,
		OccurredAt:   e.OccurredAt,
		Payload:      e,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return s.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		RoutingKey(e.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
}
