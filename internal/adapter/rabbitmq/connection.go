package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/YelzhanWeb/little-lemon/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection is a broker connection that can be dialed again after the
// broker drops it.
type Connection interface {
	Channel() (Channel, error)
	IsClosed() bool
	Reconnect() error
	Close() error
}

// Channel is the part of *amqp.Channel the publisher and consumer use.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

type amqpConnection struct {
	url string

	mu       sync.Mutex
	conn     *amqp.Connection
	shutdown bool
}

func Connect(cfg config.RabbitMQConfig) (Connection, error) {
	c := &amqpConnection{url: cfg.URL()}
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c, nil
}

// dial must be called with mu held, or before c is shared
func (c *amqpConnection) dial() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	c.conn = conn
	return nil
}

func (c *amqpConnection) Channel() (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

func (c *amqpConnection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.IsClosed()
}

// Reconnect dials again if the broker dropped the connection. It fails
// after Close.
func (c *amqpConnection) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return errors.New("connection closed")
	}
	if !c.conn.IsClosed() {
		return nil
	}
	return c.dial()
}

func (c *amqpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shutdown = true
	if c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}
