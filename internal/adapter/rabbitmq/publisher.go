package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher struct {
	conn     Connection
	exchange string
}

// NewPublisher publishes order events to a durable topic exchange, routed
// by event type (order.placed, order.assigned, order.delivered).
func NewPublisher(conn Connection, exchange string) interfaces.MessagePublisher {
	return &publisher{conn: conn, exchange: exchange}
}

func (p *publisher) PublishOrderEvent(ctx context.Context, msg interfaces.OrderEventMessage) error {
	if p.conn.IsClosed() {
		if err := p.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, string(msg.Type), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    msg.EventID,
		Timestamp:    msg.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

type noopPublisher struct{}

// NewNoopPublisher drops every event. Used when RabbitMQ is disabled.
func NewNoopPublisher() interfaces.MessagePublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishOrderEvent(context.Context, interfaces.OrderEventMessage) error {
	return nil
}
