package memory

import (
	"context"
	"sort"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
)

type CartRepository struct {
	s *Store
}

func (r *CartRepository) Upsert(ctx context.Context, line *domain.CartLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.menuItems[line.MenuItemID]
	if !ok {
		return domain.NewValidationError("menuitem_id", "menu item does not exist")
	}

	key := cartKey{userID: line.UserID, menuItemID: line.MenuItemID}
	if existing, ok := r.s.cart[key]; ok {
		line.ID = existing.ID
		line.CreatedAt = existing.CreatedAt
	} else {
		line.ID = r.s.nextID()
	}

	stored := *line
	stored.MenuItem = nil
	r.s.cart[key] = stored
	line.MenuItem = &item
	return nil
}

func (r *CartRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.cartLines(userID), nil
}

func (r *CartRepository) DeleteLine(ctx context.Context, userID, menuItemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := cartKey{userID: userID, menuItemID: menuItemID}
	if _, ok := r.s.cart[key]; !ok {
		return domain.NotFoundf("cart line for menu item %d", menuItemID)
	}
	delete(r.s.cart, key)
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.clearCart(userID), nil
}

// cartLines must be called with the lock held
func (s *Store) cartLines(userID int64) []domain.CartLine {
	lines := make([]domain.CartLine, 0)
	for key, line := range s.cart {
		if key.userID != userID {
			continue
		}
		if item, ok := s.menuItems[line.MenuItemID]; ok {
			line.MenuItem = &item
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

// clearCart must be called with the write lock held
func (s *Store) clearCart(userID int64) int {
	removed := 0
	for key := range s.cart {
		if key.userID == userID {
			delete(s.cart, key)
			removed++
		}
	}
	return removed
}
