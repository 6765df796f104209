package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/app/access"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

// Menu listing limits
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type Service struct {
	categories interfaces.CategoryRepository
	items      interfaces.MenuItemRepository
	logger     logger.Logger
}

func NewService(categories interfaces.CategoryRepository, items interfaces.MenuItemRepository, logger logger.Logger) *Service {
	return &Service{
		categories: categories,
		items:      items,
		logger:     logger,
	}
}

func (s *Service) ListCategories(ctx context.Context, actor domain.Actor) ([]*domain.Category, error) {
	if err := access.Authorize(actor, access.ReadCatalog); err != nil {
		return nil, err
	}
	return s.categories.List(ctx)
}

func (s *Service) GetCategory(ctx context.Context, actor domain.Actor, id int64) (*domain.Category, error) {
	if err := access.Authorize(actor, access.ReadCatalog); err != nil {
		return nil, err
	}
	return s.categories.FindByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, actor domain.Actor, cmd interfaces.CategoryCommand) (*domain.Category, error) {
	if err := access.Authorize(actor, access.WriteCategories); err != nil {
		return nil, err
	}

	category, err := domain.NewCategory(cmd.Slug, cmd.Title)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Debug("category_created", "Category created", logger.RequestID(ctx), map[string]interface{}{"category_id": category.ID, "slug": category.Slug})
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor domain.Actor, id int64, cmd interfaces.CategoryPatch) (*domain.Category, error) {
	if err := access.Authorize(actor, access.WriteCategories); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Slug != nil {
		category.Slug = strings.TrimSpace(*cmd.Slug)
	}
	if cmd.Title != nil {
		category.Title = strings.TrimSpace(*cmd.Title)
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, actor domain.Actor, id int64) error {
	if err := access.Authorize(actor, access.WriteCategories); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category_deleted", "Category deleted", logger.RequestID(ctx), map[string]interface{}{"category_id": id, "by": actor.Username})
	return nil
}

func (s *Service) ListMenuItems(ctx context.Context, actor domain.Actor, query interfaces.MenuItemQuery) (*interfaces.Page[*domain.MenuItem], error) {
	if err := access.Authorize(actor, access.ReadCatalog); err != nil {
		return nil, err
	}
	if err := NormalizeQuery(&query); err != nil {
		return nil, err
	}

	items, total, err := s.items.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &interfaces.Page[*domain.MenuItem]{
		Items:   items,
		Count:   total,
		Page:    query.Page,
		PerPage: query.PerPage,
	}, nil
}

// NormalizeQuery fills defaults and rejects out-of-range paging or an
// unknown ordering.
func NormalizeQuery(query *interfaces.MenuItemQuery) error {
	query.Search = strings.TrimSpace(query.Search)

	switch query.Ordering {
	case "":
		query.Ordering = interfaces.OrderByID
	case interfaces.OrderByID, interfaces.OrderByPrice, interfaces.OrderByPriceDesc,
		interfaces.OrderByTitle, interfaces.OrderByTitleDesc:
	default:
		return domain.NewValidationError("ordering", "ordering must be one of id, price, -price, title, -title")
	}

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

func (s *Service) GetMenuItem(ctx context.Context, actor domain.Actor, id int64) (*domain.MenuItem, error) {
	if err := access.Authorize(actor, access.ReadCatalog); err != nil {
		return nil, err
	}
	return s.items.FindByID(ctx, id)
}

func (s *Service) CreateMenuItem(ctx context.Context, actor domain.Actor, cmd interfaces.MenuItemCommand) (*domain.MenuItem, error) {
	if err := access.Authorize(actor, access.WriteMenuItems); err != nil {
		return nil, err
	}

	item, err := domain.NewMenuItem(cmd.Title, cmd.Price, cmd.Featured, cmd.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, item.CategoryID); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("menu_item_created", "Menu item created", logger.RequestID(ctx), map[string]interface{}{"menu_item_id": item.ID, "price": item.Price.StringFixed(2)})
	return item, nil
}

func (s *Service) UpdateMenuItem(ctx context.Context, actor domain.Actor, id int64, cmd interfaces.MenuItemPatch) (*domain.MenuItem, error) {
	if err := access.Authorize(actor, access.WriteMenuItems); err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Title != nil {
		item.Title = strings.TrimSpace(*cmd.Title)
	}
	if cmd.Price != nil {
		item.Price = *cmd.Price
	}
	if cmd.Featured != nil {
		item.Featured = *cmd.Featured
	}
	if cmd.CategoryID != nil {
		item.CategoryID = *cmd.CategoryID
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, item.CategoryID); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteMenuItem(ctx context.Context, actor domain.Actor, id int64) error {
	if err := access.Authorize(actor, access.WriteMenuItems); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("menu_item_deleted", "Menu item deleted", logger.RequestID(ctx), map[string]interface{}{"menu_item_id": id, "by": actor.Username})
	return nil
}

// requireCategory turns a missing category into a validation error on the item
func (s *Service) requireCategory(ctx context.Context, id int64) error {
	_, err := s.categories.FindByID(ctx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError("category_id", "category does not exist")
	}
	return err
}
