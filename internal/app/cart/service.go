package cart

import (
	"context"
	"errors"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/app/access"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

type Service struct {
	cart   interfaces.CartRepository
	items  interfaces.MenuItemRepository
	logger logger.Logger
}

func NewService(cart interfaces.CartRepository, items interfaces.MenuItemRepository, logger logger.Logger) *Service {
	return &Service{
		cart:   cart,
		items:  items,
		logger: logger,
	}
}

// AddItem puts the menu item in the actor's cart at its current price.
// Adding an item already in the cart replaces the quantity.
func (s *Service) AddItem(ctx context.Context, actor domain.Actor, menuItemID int64, quantity int) (*domain.CartLine, error) {
	if err := access.Authorize(actor, access.UseCart); err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(ctx, menuItemID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("menuitem_id", "menu item does not exist")
	}
	if err != nil {
		return nil, err
	}

	line, err := domain.NewCartLine(actor.UserID, item, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.cart.Upsert(ctx, line); err != nil {
		return nil, err
	}

	s.logger.Debug("cart_line_saved", "Cart line saved", logger.RequestID(ctx), map[string]interface{}{
		"user_id":      actor.UserID,
		"menu_item_id": menuItemID,
		"quantity":     quantity,
	})
	return line, nil
}

func (s *Service) ListCart(ctx context.Context, actor domain.Actor) ([]domain.CartLine, error) {
	if err := access.Authorize(actor, access.UseCart); err != nil {
		return nil, err
	}
	return s.cart.ListByUser(ctx, actor.UserID)
}

func (s *Service) RemoveItem(ctx context.Context, actor domain.Actor, menuItemID int64) error {
	if err := access.Authorize(actor, access.UseCart); err != nil {
		return err
	}
	return s.cart.DeleteLine(ctx, actor.UserID, menuItemID)
}

func (s *Service) ClearCart(ctx context.Context, actor domain.Actor) (int, error) {
	if err := access.Authorize(actor, access.UseCart); err != nil {
		return 0, err
	}
	return s.cart.Clear(ctx, actor.UserID)
}
