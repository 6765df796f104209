// Package memory keeps every repository in process maps guarded by one
// mutex. It backs the "memory" storage driver and the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
)

type cartKey struct {
	userID     int64
	menuItemID int64
}

type Store struct {
	mu sync.RWMutex

	seq        int64
	categories map[int64]domain.Category
	menuItems  map[int64]domain.MenuItem
	cart       map[cartKey]domain.CartLine
	orders     map[int64]domain.Order
	users      map[int64]domain.User
	tokens     map[string]domain.AuthToken
}

func NewStore() *Store {
	return &Store{
		categories: make(map[int64]domain.Category),
		menuItems:  make(map[int64]domain.MenuItem),
		cart:       make(map[cartKey]domain.CartLine),
		orders:     make(map[int64]domain.Order),
		users:      make(map[int64]domain.User),
		tokens:     make(map[string]domain.AuthToken),
	}
}

// nextID must be called with the write lock held
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s} }
func (s *Store) MenuItems() *MenuItemRepository  { return &MenuItemRepository{s} }
func (s *Store) Cart() *CartRepository           { return &CartRepository{s} }
func (s *Store) Orders() *OrderRepository        { return &OrderRepository{s} }
func (s *Store) Users() *UserRepository          { return &UserRepository{s} }
func (s *Store) Tokens() *TokenRepository        { return &TokenRepository{s} }
