package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

type CategoryRepository struct {
	s *Store
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(category.Slug, 0) {
		return domain.Conflictf("category slug %q already exists", category.Slug)
	}
	category.ID = r.s.nextID()
	r.s.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.NotFoundf("category %d", id)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[category.ID]; !ok {
		return domain.NotFoundf("category %d", category.ID)
	}
	if r.slugTaken(category.Slug, category.ID) {
		return domain.Conflictf("category slug %q already exists", category.Slug)
	}
	r.s.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return domain.NotFoundf("category %d", id)
	}
	for _, item := range r.s.menuItems {
		if item.CategoryID == id {
			return domain.Conflictf("category %d still has menu items", id)
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *CategoryRepository) slugTaken(slug string, exceptID int64) bool {
	for _, c := range r.s.categories {
		if c.Slug == slug && c.ID != exceptID {
			return true
		}
	}
	return false
}

type MenuItemRepository struct {
	s *Store
}

func (r *MenuItemRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[item.CategoryID]; !ok {
		return domain.NewValidationError("category_id", "category does not exist")
	}
	item.ID = r.s.nextID()
	stored := *item
	stored.Category = nil
	r.s.menuItems[item.ID] = stored
	item.Category = r.category(item.CategoryID)
	return nil
}

func (r *MenuItemRepository) FindByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.menuItems[id]
	if !ok {
		return nil, domain.NotFoundf("menu item %d", id)
	}
	item.Category = r.category(item.CategoryID)
	return &item, nil
}

func (r *MenuItemRepository) List(ctx context.Context, query interfaces.MenuItemQuery) ([]*domain.MenuItem, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(query.Search)
	matched := make([]*domain.MenuItem, 0)
	for _, item := range r.s.menuItems {
		if query.CategoryID != nil && item.CategoryID != *query.CategoryID {
			continue
		}
		if query.Featured != nil && item.Featured != *query.Featured {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Title), search) {
			continue
		}
		item := item
		item.Category = r.category(item.CategoryID)
		matched = append(matched, &item)
	}

	sort.SliceStable(matched, menuItemLess(matched, query.Ordering))

	total := len(matched)
	start := min(query.Offset(), total)
	end := min(start+query.PerPage, total)
	return matched[start:end], total, nil
}

// menuItemLess sorts by the requested key, ties broken by id
func menuItemLess(items []*domain.MenuItem, ordering string) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := items[i], items[j]
		switch ordering {
		case interfaces.OrderByPrice:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case interfaces.OrderByPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case interfaces.OrderByTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		case interfaces.OrderByTitleDesc:
			if a.Title != b.Title {
				return a.Title > b.Title
			}
		}
		return a.ID < b.ID
	}
}

func (r *MenuItemRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.menuItems[item.ID]; !ok {
		return domain.NotFoundf("menu item %d", item.ID)
	}
	if _, ok := r.s.categories[item.CategoryID]; !ok {
		return domain.NewValidationError("category_id", "category does not exist")
	}
	stored := *item
	stored.Category = nil
	r.s.menuItems[item.ID] = stored
	item.Category = r.category(item.CategoryID)
	return nil
}

func (r *MenuItemRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.menuItems[id]; !ok {
		return domain.NotFoundf("menu item %d", id)
	}
	for _, order := range r.s.orders {
		for _, line := range order.Lines {
			if line.MenuItemID == id {
				return domain.Conflictf("menu item %d is referenced by order %d", id, order.ID)
			}
		}
	}
	for key := range r.s.cart {
		if key.menuItemID == id {
			delete(r.s.cart, key)
		}
	}
	delete(r.s.menuItems, id)
	return nil
}

// category must be called with the lock held
func (r *MenuItemRepository) category(id int64) *domain.Category {
	c, ok := r.s.categories[id]
	if !ok {
		return nil
	}
	return &c
}
