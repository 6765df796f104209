package interfaces

import (
	"context"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/shopspring/decimal"
)

// Service ports (business logic) consumed by the HTTP adapter.

type CatalogService interface {
	ListCategories(ctx context.Context, actor domain.Actor) ([]*domain.Category, error)
	GetCategory(ctx context.Context, actor domain.Actor, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, actor domain.Actor, cmd CategoryCommand) (*domain.Category, error)
	UpdateCategory(ctx context.Context, actor domain.Actor, id int64, cmd CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, actor domain.Actor, id int64) error

	ListMenuItems(ctx context.Context, actor domain.Actor, query MenuItemQuery) (*Page[*domain.MenuItem], error)
	GetMenuItem(ctx context.Context, actor domain.Actor, id int64) (*domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, actor domain.Actor, cmd MenuItemCommand) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, actor domain.Actor, id int64, cmd MenuItemPatch) (*domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, actor domain.Actor, id int64) error
}

type CartService interface {
	AddItem(ctx context.Context, actor domain.Actor, menuItemID int64, quantity int) (*domain.CartLine, error)
	ListCart(ctx context.Context, actor domain.Actor) ([]domain.CartLine, error)
	RemoveItem(ctx context.Context, actor domain.Actor, menuItemID int64) error
	ClearCart(ctx context.Context, actor domain.Actor) (int, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, actor domain.Actor) (*domain.Order, error)
	ListOrders(ctx context.Context, actor domain.Actor, query OrderQuery) (*Page[*domain.Order], error)
	GetOrder(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)
	UpdateOrder(ctx context.Context, actor domain.Actor, id int64, changes domain.OrderChanges) (*domain.Order, error)
	DeleteOrder(ctx context.Context, actor domain.Actor, id int64) error
}

type AccountService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error)
	EnsureAdmin(ctx context.Context, cmd RegisterCommand) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
	Me(ctx context.Context, actor domain.Actor) (*domain.User, error)

	ListGroupMembers(ctx context.Context, actor domain.Actor, group string) ([]*domain.User, error)
	AddToGroup(ctx context.Context, actor domain.Actor, group, username string) (*domain.User, error)
	RemoveFromGroup(ctx context.Context, actor domain.Actor, group string, userID int64) (*domain.User, error)
}

// Commands for the services

type CategoryCommand struct {
	Slug  string
	Title string
}

type CategoryPatch struct {
	Slug  *string
	Title *string
}

type MenuItemCommand struct {
	Title      string
	Price      decimal.Decimal
	Featured   bool
	CategoryID int64
}

type MenuItemPatch struct {
	Title      *string
	Price      *decimal.Decimal
	Featured   *bool
	CategoryID *int64
}

type RegisterCommand struct {
	Username string
	Email    string
	Password string
}

// Page is one page of a listing together with the total match count
type Page[T any] struct {
	Items   []T
	Count   int
	Page    int
	PerPage int
}

// HasNext reports whether another page follows
func (p *Page[T]) HasNext() bool {
	if p.PerPage < 1 || p.Count < 1 {
		return false
	}
	return p.Page <= (p.Count-1)/p.PerPage
}
