package postgres

import "github.com/YelzhanWeb/little-lemon/internal/interfaces"

// Repositories bundles every repository over one pool
type Repositories struct {
	Categories interfaces.CategoryRepository
	MenuItems  interfaces.MenuItemRepository
	Cart       interfaces.CartRepository
	Orders     interfaces.OrderRepository
	Users      interfaces.UserRepository
	Tokens     interfaces.TokenRepository
}

func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Categories: NewCategoryRepository(db),
		MenuItems:  NewMenuItemRepository(db),
		Cart:       NewCartRepository(db),
		Orders:     NewOrderRepository(db),
		Users:      NewUserRepository(db),
		Tokens:     NewTokenRepository(db),
	}
}
