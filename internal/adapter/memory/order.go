package memory

import (
	"context"
	"sort"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

type OrderRepository struct {
	s *Store
}

// PlaceFromCart holds the store lock for the whole read-build-write, so
// of two concurrent placements the second sees an empty cart.
func (r *OrderRepository) PlaceFromCart(ctx context.Context, userID int64, build interfaces.BuildOrderFunc) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, err := build(r.s.cartLines(userID))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order.ID = r.s.nextID()
	for i := range order.Lines {
		order.Lines[i].ID = r.s.nextID()
		order.Lines[i].OrderID = order.ID
	}
	r.s.orders[order.ID] = copyOrder(order)
	r.s.clearCart(userID)
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.orders[id]
	if !ok {
		return nil, domain.NotFoundf("order %d", id)
	}
	return r.load(order), nil
}

func (r *OrderRepository) List(ctx context.Context, scope interfaces.OrderScope, query interfaces.OrderQuery) ([]*domain.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.Order, 0)
	for _, order := range r.s.orders {
		if scope.UserID != nil && order.UserID != *scope.UserID {
			continue
		}
		if scope.DeliveryCrewID != nil && (order.DeliveryCrewID == nil || *order.DeliveryCrewID != *scope.DeliveryCrewID) {
			continue
		}
		if query.Status != nil && order.Status != *query.Status {
			continue
		}
		matched = append(matched, r.load(order))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := min(query.Offset(), total)
	end := min(start+query.PerPage, total)
	return matched[start:end], total, nil
}

// Update runs apply and the write under the store lock. Only delivery
// crew and status are persisted.
func (r *OrderRepository) Update(ctx context.Context, id int64, apply interfaces.UpdateOrderFunc) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.orders[id]
	if !ok {
		return nil, domain.NotFoundf("order %d", id)
	}
	order := r.load(stored)
	if err := apply(order); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if order.DeliveryCrewID != nil {
		if _, ok := r.s.users[*order.DeliveryCrewID]; !ok {
			return nil, domain.NewValidationError(domain.FieldDeliveryCrew, "user does not exist")
		}
		crew := *order.DeliveryCrewID
		stored.DeliveryCrewID = &crew
	} else {
		stored.DeliveryCrewID = nil
	}
	stored.Status = order.Status
	stored.UpdatedAt = order.UpdatedAt
	r.s.orders[id] = stored
	return order, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return domain.NotFoundf("order %d", id)
	}
	delete(r.s.orders, id)
	return nil
}

// load returns a detached copy with menu items attached to the lines;
// must be called with the lock held
func (r *OrderRepository) load(order domain.Order) *domain.Order {
	out := copyOrder(&order)
	for i := range out.Lines {
		if item, ok := r.s.menuItems[out.Lines[i].MenuItemID]; ok {
			out.Lines[i].MenuItem = &item
		}
	}
	return &out
}

func copyOrder(order *domain.Order) domain.Order {
	out := *order
	if order.DeliveryCrewID != nil {
		crew := *order.DeliveryCrewID
		out.DeliveryCrewID = &crew
	}
	out.Lines = make([]domain.OrderLine, len(order.Lines))
	copy(out.Lines, order.Lines)
	for i := range out.Lines {
		out.Lines[i].MenuItem = nil
	}
	return out
}
