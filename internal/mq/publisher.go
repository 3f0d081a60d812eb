package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/septivank/petdoor-curfew-worker/internal/event"
	"go.uber.org/zap"
)

// RoutingKeyPrefix is prepended to every event type
const RoutingKeyPrefix = "petdoor."

// Publisher handles door event publishing to RabbitMQ
type Publisher struct {
	conn     *Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher creates a new RabbitMQ publisher
func NewPublisher(conn *Connection, exchange string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// Declare exchange
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Name identifies the sink in logs
func (p *Publisher) Name() string {
	return "rabbitmq"
}

// Publish sends ev to the exchange under RoutingKey(ev)
func (p *Publisher) Publish(ctx context.Context, ev event.DoorEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	routingKey := RoutingKey(ev)
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.RunID + "/" + ev.Type,
			Timestamp:    ev.OccurredAt,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("published door event",
		zap.String("routing_key", routingKey),
		zap.String("run_id", ev.RunID),
	)

	return nil
}

// RoutingKey maps an event onto its topic routing key
func RoutingKey(ev event.DoorEvent) string {
	return RoutingKeyPrefix + ev.Type
}

// Close closes the publisher channel
func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
