package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"github.com/shopspring/decimal"
)

func seedMenu(t *testing.T, s *Store) (*domain.Category, []*domain.MenuItem) {
	t.Helper()
	ctx := context.Background()

	cat := &domain.Category{Slug: "mains", Title: "Mains"}
	if err := s.Categories().Create(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}

	var items []*domain.MenuItem
	for _, spec := range []struct {
		title    string
		price    string
		featured bool
	}{
		{"Greek Salad", "12.50", true},
		{"Bruschetta", "7.99", false},
		{"Lemon Dessert", "5.00", true},
	} {
		item := &domain.MenuItem{
			Title:      spec.title,
			Price:      decimal.RequireFromString(spec.price),
			Featured:   spec.featured,
			CategoryID: cat.ID,
		}
		if err := s.MenuItems().Create(ctx, item); err != nil {
			t.Fatalf("create menu item: %v", err)
		}
		items = append(items, item)
	}
	return cat, items
}

func TestCategoryRepository_SlugConflict(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Categories().Create(ctx, &domain.Category{Slug: "drinks", Title: "Drinks"}); err != nil {
		t.Fatal(err)
	}
	err := s.Categories().Create(ctx, &domain.Category{Slug: "drinks", Title: "More drinks"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestCategoryRepository_DeleteInUse(t *testing.T) {
	s := NewStore()
	cat, _ := seedMenu(t, s)

	err := s.Categories().Delete(context.Background(), cat.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestMenuItemRepository_List(t *testing.T) {
	s := NewStore()
	_, items := seedMenu(t, s)
	featured := true

	tests := []struct {
		name      string
		query     interfaces.MenuItemQuery
		wantIDs   []int64
		wantTotal int
	}{
		{
			name:      "default order",
			query:     interfaces.MenuItemQuery{Page: 1, PerPage: 10},
			wantIDs:   []int64{items[0].ID, items[1].ID, items[2].ID},
			wantTotal: 3,
		},
		{
			name:      "by price",
			query:     interfaces.MenuItemQuery{Ordering: interfaces.OrderByPrice, Page: 1, PerPage: 10},
			wantIDs:   []int64{items[2].ID, items[1].ID, items[0].ID},
			wantTotal: 3,
		},
		{
			name:      "by title desc",
			query:     interfaces.MenuItemQuery{Ordering: interfaces.OrderByTitleDesc, Page: 1, PerPage: 10},
			wantIDs:   []int64{items[2].ID, items[0].ID, items[1].ID},
			wantTotal: 3,
		},
		{
			name:      "featured",
			query:     interfaces.MenuItemQuery{Featured: &featured, Page: 1, PerPage: 10},
			wantIDs:   []int64{items[0].ID, items[2].ID},
			wantTotal: 2,
		},
		{
			name:      "search ignores case",
			query:     interfaces.MenuItemQuery{Search: "LEMON", Page: 1, PerPage: 10},
			wantIDs:   []int64{items[2].ID},
			wantTotal: 1,
		},
		{
			name:      "second page",
			query:     interfaces.MenuItemQuery{Page: 2, PerPage: 2},
			wantIDs:   []int64{items[2].ID},
			wantTotal: 3,
		},
		{
			name:      "past the end",
			query:     interfaces.MenuItemQuery{Page: 5, PerPage: 2},
			wantIDs:   nil,
			wantTotal: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := s.MenuItems().List(context.Background(), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.wantIDs))
			}
			for i, item := range got {
				if item.ID != tt.wantIDs[i] {
					t.Errorf("item %d id = %d, want %d", i, item.ID, tt.wantIDs[i])
				}
				if item.Category == nil {
					t.Errorf("item %d has no category", i)
				}
			}
		})
	}
}

func TestCartRepository_UpsertReplaces(t *testing.T) {
	s := NewStore()
	_, items := seedMenu(t, s)
	ctx := context.Background()

	for _, qty := range []int{2, 5} {
		line, err := domain.NewCartLine(7, items[0], qty)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Cart().Upsert(ctx, line); err != nil {
			t.Fatal(err)
		}
	}

	lines, _ := s.Cart().ListByUser(ctx, 7)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", lines[0].Quantity)
	}
}

func TestOrderRepository_ConcurrentPlacement(t *testing.T) {
	s := NewStore()
	_, items := seedMenu(t, s)
	ctx := context.Background()

	line, _ := domain.NewCartLine(7, items[0], 1)
	if err := s.Cart().Upsert(ctx, line); err != nil {
		t.Fatal(err)
	}

	build := func(lines []domain.CartLine) (*domain.Order, error) {
		return domain.NewOrderFromCart(7, lines, time.Now())
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		empty     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Orders().PlaceFromCart(ctx, 7, build)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrEmptyCart):
				empty++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || empty != workers-1 {
		t.Errorf("succeeded = %d, empty = %d", succeeded, empty)
	}
}

func TestOrderRepository_FailedBuildKeepsCart(t *testing.T) {
	s := NewStore()
	_, items := seedMenu(t, s)
	ctx := context.Background()

	line, _ := domain.NewCartLine(7, items[0], 1)
	_ = s.Cart().Upsert(ctx, line)

	_, err := s.Orders().PlaceFromCart(ctx, 7, func([]domain.CartLine) (*domain.Order, error) {
		return nil, errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}

	lines, _ := s.Cart().ListByUser(ctx, 7)
	if len(lines) != 1 {
		t.Errorf("cart lines = %d, want 1", len(lines))
	}
	orders, total, _ := s.Orders().List(ctx, interfaces.OrderScope{}, interfaces.OrderQuery{Page: 1, PerPage: 10})
	if total != 0 || len(orders) != 0 {
		t.Errorf("orders = %d, want none", total)
	}
}

func TestOrderRepository_Update(t *testing.T) {
	s := NewStore()
	_, items := seedMenu(t, s)
	ctx := context.Background()

	crew := &domain.User{Username: "crew1", Groups: []string{domain.GroupDeliveryCrew}}
	if err := s.Users().Create(ctx, crew); err != nil {
		t.Fatal(err)
	}
	line, _ := domain.NewCartLine(7, items[0], 1)
	_ = s.Cart().Upsert(ctx, line)
	order, err := s.Orders().PlaceFromCart(ctx, 7, func(lines []domain.CartLine) (*domain.Order, error) {
		return domain.NewOrderFromCart(7, lines, time.Now())
	})
	if err != nil {
		t.Fatal(err)
	}

	// a failing apply writes nothing
	_, err = s.Orders().Update(ctx, order.ID, func(o *domain.Order) error {
		o.SetStatus(domain.StatusDelivered)
		return domain.ErrForbidden
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	got, _ := s.Orders().FindByID(ctx, order.ID)
	if got.Status != domain.StatusPlaced {
		t.Errorf("status after failed apply = %v", got.Status)
	}

	updated, err := s.Orders().Update(ctx, order.ID, func(o *domain.Order) error {
		o.AssignDeliveryCrew(&crew.ID)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.DeliveryCrewID == nil || *updated.DeliveryCrewID != crew.ID || len(updated.Lines) != 1 {
		t.Errorf("updated = %+v", updated)
	}

	missing := int64(999)
	_, err = s.Orders().Update(ctx, order.ID, func(o *domain.Order) error {
		o.AssignDeliveryCrew(&missing)
		return nil
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown crew err = %v, want ErrValidation", err)
	}
	if _, err := s.Orders().Update(ctx, 12345, func(*domain.Order) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing order err = %v, want ErrNotFound", err)
	}

	// a page far past the end is empty rather than a panic
	orders, total, err := s.Orders().List(ctx, interfaces.OrderScope{}, interfaces.OrderQuery{Page: interfaces.MaxPage(100), PerPage: 100})
	if err != nil || total != 1 || len(orders) != 0 {
		t.Errorf("far page = %d orders, total %d, err %v", len(orders), total, err)
	}
}

func TestUserRepository_Groups(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u := &domain.User{Username: "crew1"}
	if err := s.Users().Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := s.Users().Create(ctx, &domain.User{Username: "crew1"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate username err = %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Users().AddToGroup(ctx, u.ID, domain.GroupDeliveryCrew); err != nil {
			t.Fatal(err)
		}
	}
	members, _ := s.Users().ListByGroup(ctx, domain.GroupDeliveryCrew)
	if len(members) != 1 || len(members[0].Groups) != 1 {
		t.Fatalf("members = %+v", members)
	}

	if err := s.Users().RemoveFromGroup(ctx, u.ID, domain.GroupDeliveryCrew); err != nil {
		t.Fatal(err)
	}
	members, _ = s.Users().ListByGroup(ctx, domain.GroupDeliveryCrew)
	if len(members) != 0 {
		t.Errorf("members after remove = %d", len(members))
	}
}
