package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cartLine(t *testing.T, userID, itemID int64, p string, qty int) CartLine {
	t.Helper()
	line, err := NewCartLine(userID, &MenuItem{ID: itemID, Title: "item", Price: price(p), CategoryID: 1}, qty)
	if err != nil {
		t.Fatalf("NewCartLine: %v", err)
	}
	return *line
}

func TestNewOrderFromCart(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	lines := []CartLine{
		cartLine(t, 7, 1, "3.00", 2),
		cartLine(t, 7, 2, "4.25", 3),
	}

	order, err := NewOrderFromCart(7, lines, now)
	if err != nil {
		t.Fatalf("NewOrderFromCart: %v", err)
	}

	if !order.Total.Equal(price("18.75")) {
		t.Errorf("total = %s, want 18.75", order.Total)
	}
	if order.Status != StatusPlaced {
		t.Errorf("status = %v, want placed", order.Status)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(order.Lines))
	}
	if !order.Lines[0].LineTotal.Equal(price("6.00")) {
		t.Errorf("line 0 total = %s, want 6.00", order.Lines[0].LineTotal)
	}
	if !order.Date.Equal(now) {
		t.Errorf("date = %v, want %v", order.Date, now)
	}

	// the order keeps its snapshot when the source lines change later
	lines[0].Quantity = 50
	lines[0].CalculateTotal()
	if !order.Lines[0].LineTotal.Equal(price("6.00")) {
		t.Errorf("order line changed with cart line: %s", order.Lines[0].LineTotal)
	}
}

func TestNewOrderFromCart_Empty(t *testing.T) {
	_, err := NewOrderFromCart(7, nil, time.Now())
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestNewOrderFromCart_ForeignLine(t *testing.T) {
	lines := []CartLine{cartLine(t, 8, 1, "1.00", 1)}
	_, err := NewOrderFromCart(7, lines, time.Now())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestOrder_SetStatus(t *testing.T) {
	tests := []struct {
		name        string
		from, to    OrderStatus
		wantChanged bool
		wantStatus  OrderStatus
	}{
		{"placed to delivered", StatusPlaced, StatusDelivered, true, StatusDelivered},
		{"placed to placed", StatusPlaced, StatusPlaced, false, StatusPlaced},
		{"delivered to delivered", StatusDelivered, StatusDelivered, false, StatusDelivered},
		{"delivered to placed is ignored", StatusDelivered, StatusPlaced, false, StatusDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from}
			if got := o.SetStatus(tt.to); got != tt.wantChanged {
				t.Errorf("SetStatus() = %v, want %v", got, tt.wantChanged)
			}
			if o.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", o.Status, tt.wantStatus)
			}
		})
	}
}

func TestOrder_IsVisibleTo(t *testing.T) {
	crew := int64(30)
	o := &Order{UserID: 10, DeliveryCrewID: &crew}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owner", Actor{UserID: 10, Role: RoleCustomer}, true},
		{"other customer", Actor{UserID: 11, Role: RoleCustomer}, false},
		{"assigned crew", Actor{UserID: 30, Role: RoleDeliveryCrew}, true},
		{"other crew", Actor{UserID: 31, Role: RoleDeliveryCrew}, false},
		{"manager", Actor{UserID: 40, Role: RoleManager}, true},
		{"admin", Actor{UserID: 1, Role: RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.IsVisibleTo(tt.actor); got != tt.want {
				t.Errorf("IsVisibleTo() = %v, want %v", got, tt.want)
			}
		})
	}

	unassigned := &Order{UserID: 10}
	if unassigned.IsVisibleTo(Actor{UserID: 30, Role: RoleDeliveryCrew}) {
		t.Error("unassigned order must not be visible to delivery crew")
	}
}

func TestOrder_ChangedFields(t *testing.T) {
	crew := int64(30)
	other := int64(31)
	delivered := StatusDelivered
	placed := StatusPlaced
	sameTotal := price("6.00")
	newTotal := price("999")
	date := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	laterSameDay := date.Add(5 * time.Hour)

	o := &Order{UserID: 10, DeliveryCrewID: &crew, Status: StatusPlaced, Total: price("6.00"), Date: date}

	tests := []struct {
		name    string
		changes OrderChanges
		want    []string
	}{
		{"nothing sent", OrderChanges{}, nil},
		{"status only", OrderChanges{Status: &delivered}, []string{FieldStatus}},
		{"status unchanged", OrderChanges{Status: &placed}, nil},
		{"status and total", OrderChanges{Status: &delivered, Total: &newTotal}, []string{FieldStatus, FieldTotal}},
		{"total sent unchanged", OrderChanges{Status: &delivered, Total: &sameTotal}, []string{FieldStatus}},
		{"reassign crew", OrderChanges{DeliveryCrewSet: true, DeliveryCrewID: &other}, []string{FieldDeliveryCrew}},
		{"same crew", OrderChanges{DeliveryCrewSet: true, DeliveryCrewID: &crew}, nil},
		{"unassign crew", OrderChanges{DeliveryCrewSet: true}, []string{FieldDeliveryCrew}},
		{"same day", OrderChanges{Date: &laterSameDay}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.ChangedFields(tt.changes)
			if len(got) != len(tt.want) {
				t.Fatalf("ChangedFields() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ChangedFields()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
