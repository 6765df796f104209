package interfaces

import (
	"context"
	"math"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
)

// Repository ports (adapter/postgres, adapter/memory).
//
// Lookups return an error wrapping domain.ErrNotFound for missing rows and
// domain.ErrConflict for uniqueness or reference violations.

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	// Delete refuses categories that still have menu items.
	Delete(ctx context.Context, id int64) error
}

type MenuItemRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	FindByID(ctx context.Context, id int64) (*domain.MenuItem, error)
	List(ctx context.Context, query MenuItemQuery) ([]*domain.MenuItem, int, error)
	Update(ctx context.Context, item *domain.MenuItem) error
	Delete(ctx context.Context, id int64) error
}

type CartRepository interface {
	// Upsert stores the line, replacing quantity and price snapshot of an
	// existing (user, menu item) line.
	Upsert(ctx context.Context, line *domain.CartLine) error
	ListByUser(ctx context.Context, userID int64) ([]domain.CartLine, error)
	DeleteLine(ctx context.Context, userID, menuItemID int64) error
	Clear(ctx context.Context, userID int64) (int, error)
}

// BuildOrderFunc turns the locked cart lines into the order to persist.
type BuildOrderFunc func(lines []domain.CartLine) (*domain.Order, error)

// UpdateOrderFunc changes the locked order in place. An error aborts the
// update and nothing is written.
type UpdateOrderFunc func(order *domain.Order) error

type OrderRepository interface {
	// PlaceFromCart locks the user's cart lines, builds the order from them,
	// inserts order and lines and empties the cart in one transaction.
	PlaceFromCart(ctx context.Context, userID int64, build BuildOrderFunc) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, scope OrderScope, query OrderQuery) ([]*domain.Order, int, error)
	// Update locks the order, hands it to apply and writes back its delivery
	// crew and status before the lock is released.
	Update(ctx context.Context, id int64, apply UpdateOrderFunc) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
	ListByGroup(ctx context.Context, group string) ([]*domain.User, error)
	AddToGroup(ctx context.Context, userID int64, group string) error
	RemoveFromGroup(ctx context.Context, userID int64, group string) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *domain.AuthToken) error
	FindUser(ctx context.Context, hash string) (*domain.User, error)
	Delete(ctx context.Context, hash string) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Menu item list ordering values
const (
	OrderByID        = "id"
	OrderByPrice     = "price"
	OrderByPriceDesc = "-price"
	OrderByTitle     = "title"
	OrderByTitleDesc = "-title"
)

// MenuItemQuery filters, sorts and paginates the menu
type MenuItemQuery struct {
	CategoryID *int64
	Featured   *bool
	Search     string
	Ordering   string
	Page       int
	PerPage    int
}

// Offset returns the number of rows to skip for the page
func (q MenuItemQuery) Offset() int {
	return offset(q.Page, q.PerPage)
}

// OrderScope restricts an order listing. Nil fields do not filter.
type OrderScope struct {
	UserID         *int64
	DeliveryCrewID *int64
}

// OrderQuery paginates and filters an order listing. Orders are always
// returned by id ascending.
type OrderQuery struct {
	Status  *domain.OrderStatus
	Page    int
	PerPage int
}

// Offset returns the number of rows to skip for the page
func (q OrderQuery) Offset() int {
	return offset(q.Page, q.PerPage)
}

// MaxPage is the highest page number a listing accepts for perPage rows
// per page. Page*perPage stays representable up to it.
func MaxPage(perPage int) int {
	if perPage < 1 {
		return math.MaxInt
	}
	return math.MaxInt / perPage
}

// offset saturates at math.MaxInt instead of wrapping negative
func offset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}
