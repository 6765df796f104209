package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
)

// RabbitMQ messages
type OrderEventMessage struct {
	EventID        string                `json:"event_id"`
	Type           domain.OrderEventType `json:"type"`
	OrderID        int64                 `json:"order_id"`
	UserID         int64                 `json:"user_id"`
	DeliveryCrewID *int64                `json:"delivery_crew_id"`
	Delivered      bool                  `json:"delivered"`
	Total          string                `json:"total"`
	ChangedBy      string                `json:"changed_by"`
	Timestamp      time.Time             `json:"timestamp"`
}

// Messaging ports (adapter/rabbitmq)
type MessagePublisher interface {
	PublishOrderEvent(ctx context.Context, msg OrderEventMessage) error
}

type MessageConsumer interface {
	ConsumeOrderEvents(ctx context.Context, handler NotificationHandler) error
}

type NotificationHandler func(ctx context.Context, body []byte) error
