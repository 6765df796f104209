package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

// NewNotificationHandler prints a one-line notice per order event to out.
func NewNotificationHandler(logger logger.Logger, out io.Writer) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    out,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.OrderEventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order event", "", nil, err)
		return err
	}
	if msg.OrderID == 0 || msg.Type == "" {
		err := fmt.Errorf("order event %q is missing order id or type", msg.EventID)
		h.logger.Error("message_invalid", "Invalid order event", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received %s for order %d", msg.Type, msg.OrderID),
		msg.EventID, map[string]interface{}{
			"order_id":   msg.OrderID,
			"event":      string(msg.Type),
			"changed_by": msg.ChangedBy,
		})

	_, err := fmt.Fprintln(h.out, Describe(msg))
	return err
}

// Describe renders the event as a human readable notice
func Describe(msg interfaces.OrderEventMessage) string {
	switch msg.Type {
	case domain.EventOrderPlaced:
		return fmt.Sprintf("Order %d placed by user %d, total %s", msg.OrderID, msg.UserID, msg.Total)
	case domain.EventOrderAssigned:
		crew := "nobody"
		if msg.DeliveryCrewID != nil {
			crew = fmt.Sprintf("delivery crew %d", *msg.DeliveryCrewID)
		}
		return fmt.Sprintf("Order %d assigned to %s by %s", msg.OrderID, crew, msg.ChangedBy)
	case domain.EventOrderDelivered:
		return fmt.Sprintf("Order %d delivered, marked by %s", msg.OrderID, msg.ChangedBy)
	default:
		return fmt.Sprintf("Order %d: %s", msg.OrderID, msg.Type)
	}
}
