package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/adapter/memory"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/shopspring/decimal"
)

var customer = domain.Actor{UserID: 100, Username: "customer", Role: domain.RoleCustomer}

func setup(t *testing.T) (*Service, *memory.Store, *domain.MenuItem) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	cat := &domain.Category{Slug: "sides", Title: "Sides"}
	if err := store.Categories().Create(ctx, cat); err != nil {
		t.Fatal(err)
	}
	item := &domain.MenuItem{Title: "Chips", Price: decimal.RequireFromString("3.00"), CategoryID: cat.ID}
	if err := store.MenuItems().Create(ctx, item); err != nil {
		t.Fatal(err)
	}

	return NewService(store.Cart(), store.MenuItems(), logger.Nop()), store, item
}

func TestAddItem_LineTotal(t *testing.T) {
	tests := []struct {
		quantity int
		want     string
	}{
		{1, "3.00"},
		{2, "6.00"},
		{7, "21.00"},
	}
	for _, tt := range tests {
		svc, _, item := setup(t)
		ctx := context.Background()

		if _, err := svc.AddItem(ctx, customer, item.ID, tt.quantity); err != nil {
			t.Fatalf("AddItem(%d): %v", tt.quantity, err)
		}
		lines, err := svc.ListCart(ctx, customer)
		if err != nil {
			t.Fatal(err)
		}
		if len(lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(lines))
		}
		if got := lines[0].LineTotal.StringFixed(2); got != tt.want {
			t.Errorf("quantity %d: line total = %s, want %s", tt.quantity, got, tt.want)
		}
	}
}

func TestAddItem_RepeatReplacesQuantity(t *testing.T) {
	svc, _, item := setup(t)
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, customer, item.ID, 2)
	if _, err := svc.AddItem(ctx, customer, item.ID, 4); err != nil {
		t.Fatal(err)
	}

	lines, _ := svc.ListCart(ctx, customer)
	if len(lines) != 1 || lines[0].Quantity != 4 {
		t.Fatalf("lines = %+v, want one line with quantity 4", lines)
	}
}

func TestAddItem_PriceSnapshot(t *testing.T) {
	svc, store, item := setup(t)
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, customer, item.ID, 1)

	item.Price = decimal.RequireFromString("9.99")
	if err := store.MenuItems().Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	lines, _ := svc.ListCart(ctx, customer)
	if got := lines[0].UnitPrice.StringFixed(2); got != "3.00" {
		t.Errorf("unit price = %s, want 3.00", got)
	}
}

func TestAddItem_Errors(t *testing.T) {
	svc, _, item := setup(t)
	manager := domain.Actor{UserID: 5, Role: domain.RoleManager}

	tests := []struct {
		name     string
		actor    domain.Actor
		itemID   int64
		quantity int
		wantErr  error
	}{
		{"zero quantity", customer, item.ID, 0, domain.ErrValidation},
		{"unknown item", customer, 999, 1, domain.ErrValidation},
		{"manager has no cart", manager, item.ID, 1, domain.ErrForbidden},
		{"anonymous", domain.Actor{}, item.ID, 1, domain.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(context.Background(), tt.actor, tt.itemID, tt.quantity)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc, _, item := setup(t)
	ctx := context.Background()

	if err := svc.RemoveItem(ctx, customer, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("remove missing err = %v, want ErrNotFound", err)
	}

	_, _ = svc.AddItem(ctx, customer, item.ID, 1)
	if err := svc.RemoveItem(ctx, customer, item.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}

	n, err := svc.ClearCart(ctx, customer)
	if err != nil || n != 0 {
		t.Errorf("ClearCart on empty cart = %d, %v", n, err)
	}

	_, _ = svc.AddItem(ctx, customer, item.ID, 3)
	if n, _ := svc.ClearCart(ctx, customer); n != 1 {
		t.Errorf("ClearCart removed %d, want 1", n)
	}
}
