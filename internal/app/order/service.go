package order

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/app/access"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"github.com/google/uuid"
)

// Order listing limits
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type Service struct {
	repo      interfaces.OrderRepository
	users     interfaces.UserRepository
	publisher interfaces.MessagePublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewService(repo interfaces.OrderRepository, users interfaces.UserRepository, publisher interfaces.MessagePublisher, logger logger.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceOrder turns the actor's cart into an order. Building the order,
// inserting it and emptying the cart happen in one repository transaction.
func (s *Service) PlaceOrder(ctx context.Context, actor domain.Actor) (*domain.Order, error) {
	if err := access.Authorize(actor, access.PlaceOrder); err != nil {
		return nil, err
	}
	requestID := logger.RequestID(ctx)

	order, err := s.repo.PlaceFromCart(ctx, actor.UserID, func(lines []domain.CartLine) (*domain.Order, error) {
		return domain.NewOrderFromCart(actor.UserID, lines, s.now())
	})
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyCart) {
			s.logger.Error("db_transaction_failed", "Failed to place order", requestID, map[string]interface{}{"user_id": actor.UserID}, err)
		}
		return nil, err
	}

	s.logger.Info("order_placed", "Order placed", requestID, map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"lines":    len(order.Lines),
		"total":    order.Total.StringFixed(2),
	})

	s.publish(ctx, domain.EventOrderPlaced, order, actor)
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, actor domain.Actor, query interfaces.OrderQuery) (*interfaces.Page[*domain.Order], error) {
	if err := access.Authorize(actor, access.ReadOrders); err != nil {
		return nil, err
	}
	if err := NormalizeQuery(&query); err != nil {
		return nil, err
	}

	orders, total, err := s.repo.List(ctx, access.OrderScope(actor), query)
	if err != nil {
		return nil, err
	}
	return &interfaces.Page[*domain.Order]{
		Items:   orders,
		Count:   total,
		Page:    query.Page,
		PerPage: query.PerPage,
	}, nil
}

// NormalizeQuery fills paging defaults and rejects out-of-range values
func NormalizeQuery(query *interfaces.OrderQuery) error {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Page < 1 {
		return domain.NewValidationError("page", "page must be at least 1")
	}
	if query.PerPage == 0 {
		query.PerPage = DefaultPerPage
	}
	if query.PerPage < 1 || query.PerPage > MaxPerPage {
		return domain.NewValidationError("perpage", "perpage must be between 1 and 100")
	}
	if query.Page > interfaces.MaxPage(query.PerPage) {
		return domain.NewValidationError("page", "page is out of range")
	}
	return nil
}

// GetOrder returns NotFound for orders outside the actor's visibility
func (s *Service) GetOrder(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	if err := access.Authorize(actor, access.ReadOrders); err != nil {
		return nil, err
	}
	return s.visibleOrder(ctx, actor, id)
}

// UpdateOrder applies the requested delivery crew and status changes.
// Visibility and field authorization run against the locked order, so a
// concurrent update cannot be overwritten with stale values. A request
// with any unauthorized change applies nothing.
func (s *Service) UpdateOrder(ctx context.Context, actor domain.Actor, id int64, changes domain.OrderChanges) (*domain.Order, error) {
	if err := access.Authenticated(actor); err != nil {
		return nil, err
	}
	requestID := logger.RequestID(ctx)

	// crew membership is checked outside the order lock; it only matters
	// if the crew actually changes
	var crewErr error
	if changes.DeliveryCrewSet && changes.DeliveryCrewID != nil {
		crewErr = s.requireDeliveryCrew(ctx, *changes.DeliveryCrewID)
	}

	var (
		changed             []string
		assigned, delivered bool
	)
	order, err := s.repo.Update(ctx, id, func(order *domain.Order) error {
		if !order.IsVisibleTo(actor) {
			return domain.NotFoundf("order %d", id)
		}

		changed = order.ChangedFields(changes)
		if err := access.AuthorizeOrderUpdate(actor, order, changed); err != nil {
			s.logger.Debug("order_update_denied", "Order update rejected", requestID, map[string]interface{}{
				"order_id": order.ID,
				"actor":    actor.Username,
				"fields":   changed,
			})
			return err
		}

		if slices.Contains(changed, domain.FieldDeliveryCrew) {
			if changes.DeliveryCrewID != nil {
				if crewErr != nil {
					return crewErr
				}
				assigned = true
			}
			order.AssignDeliveryCrew(changes.DeliveryCrewID)
		}
		if changes.Status != nil {
			delivered = order.SetStatus(*changes.Status)
		}
		return nil
	})
	if err != nil {
		if !isClientError(err) {
			s.logger.Error("order_update_failed", "Failed to update order", requestID, map[string]interface{}{"order_id": id}, err)
		}
		return nil, err
	}
	if len(changed) == 0 {
		return order, nil
	}

	s.logger.Info("order_updated", "Order updated", requestID, map[string]interface{}{
		"order_id": order.ID,
		"actor":    actor.Username,
		"fields":   changed,
		"status":   order.Status.String(),
	})

	if assigned {
		s.publish(ctx, domain.EventOrderAssigned, order, actor)
	}
	if delivered {
		s.publish(ctx, domain.EventOrderDelivered, order, actor)
	}
	return order, nil
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrValidation)
}

// DeleteOrder is Admin only. Callers who cannot see the order get NotFound.
func (s *Service) DeleteOrder(ctx context.Context, actor domain.Actor, id int64) error {
	if err := access.Authenticated(actor); err != nil {
		return err
	}
	if _, err := s.visibleOrder(ctx, actor, id); err != nil {
		return err
	}
	if err := access.Authorize(actor, access.DeleteOrder); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("order_deleted", "Order deleted", logger.RequestID(ctx), map[string]interface{}{"order_id": id, "actor": actor.Username})
	return nil
}

func (s *Service) visibleOrder(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsVisibleTo(actor) {
		return nil, domain.NotFoundf("order %d", id)
	}
	return order, nil
}

func (s *Service) requireDeliveryCrew(ctx context.Context, userID int64) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError(domain.FieldDeliveryCrew, "user does not exist")
	}
	if err != nil {
		return err
	}
	if !slices.Contains(user.Groups, domain.GroupDeliveryCrew) {
		return domain.NewValidationError(domain.FieldDeliveryCrew, "user is not in the Delivery Crew group")
	}
	return nil
}

// publish never fails the request: the order change is already committed
func (s *Service) publish(ctx context.Context, eventType domain.OrderEventType, order *domain.Order, actor domain.Actor) {
	msg := interfaces.OrderEventMessage{
		EventID:        uuid.NewString(),
		Type:           eventType,
		OrderID:        order.ID,
		UserID:         order.UserID,
		DeliveryCrewID: order.DeliveryCrewID,
		Delivered:      order.Status.Bool(),
		Total:          order.Total.StringFixed(2),
		ChangedBy:      actor.Username,
		Timestamp:      s.now().UTC(),
	}

	requestID := logger.RequestID(ctx)
	if err := s.publisher.PublishOrderEvent(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order event", requestID, map[string]interface{}{
			"order_id": order.ID,
			"event":    string(eventType),
		}, err)
		return
	}
	s.logger.Debug("order_event_published", "Order event published to RabbitMQ", requestID, map[string]interface{}{
		"order_id": order.ID,
		"event":    string(eventType),
	})
}
