package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderEventsBinding matches every order lifecycle event
const OrderEventsBinding = "order.#"

type ConsumerOptions struct {
	Exchange       string
	Queue          string
	Prefetch       int
	ReconnectDelay time.Duration
}

type consumer struct {
	conn   Connection
	opts   ConsumerOptions
	logger logger.Logger
}

func NewConsumer(conn Connection, opts ConsumerOptions, logger logger.Logger) interfaces.MessageConsumer {
	if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = 5 * time.Second
	}
	return &consumer{conn: conn, opts: opts, logger: logger}
}

// ConsumeOrderEvents blocks until ctx is cancelled, re-establishing the
// channel after broker disconnects.
func (c *consumer) ConsumeOrderEvents(ctx context.Context, handler interfaces.NotificationHandler) error {
	for {
		err := c.consume(ctx, handler)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("consumer_disconnected", "Order events consumer disconnected, reconnecting", "",
			map[string]interface{}{"delay": c.opts.ReconnectDelay.String()}, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.ReconnectDelay):
		}

		if c.conn.IsClosed() {
			if err := c.conn.Reconnect(); err != nil {
				c.logger.Error("rabbitmq_reconnect_failed", "Failed to reconnect to RabbitMQ", "", nil, err)
			}
		}
	}
}

func (c *consumer) consume(ctx context.Context, handler interfaces.NotificationHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose(make(chan *amqp.Error, 1))

	if err := ch.Qos(c.opts.Prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := c.setupInfrastructure(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(c.opts.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			// failed events go to the dead letter queue
			if err := handler(ctx, msg.Body); err != nil {
				_ = msg.Nack(false, false)
			} else {
				_ = msg.Ack(false)
			}
		}
	}
}

func (c *consumer) setupInfrastructure(ch Channel) error {
	if err := ch.ExchangeDeclare(c.opts.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare orders exchange: %w", err)
	}

	dlqExchange := c.opts.Exchange + "_dlq"
	if err := ch.ExchangeDeclare(dlqExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	dlqQueue := c.opts.Queue + "_dlq"
	if _, err := ch.QueueDeclare(dlqQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueue, "#", dlqExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": dlqExchange,
	}
	q, err := ch.QueueDeclare(c.opts.Queue, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare %s queue: %w", c.opts.Queue, err)
	}

	if err := ch.QueueBind(q.Name, OrderEventsBinding, c.opts.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s queue: %w", c.opts.Queue, err)
	}

	return nil
}
