package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a placed customer order
type Order struct {
	ID             int64
	UserID         int64
	DeliveryCrewID *int64
	Status         OrderStatus
	Total          decimal.Decimal
	Date           time.Time
	Lines          []OrderLine
	UpdatedAt      time.Time
}

// OrderLine is an immutable snapshot of a cart line at checkout time
type OrderLine struct {
	ID         int64
	OrderID    int64
	MenuItemID int64
	MenuItem   *MenuItem
	Quantity   int
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
}

// NewOrderFromCart copies the user's cart lines into a new order. The total
// is fixed here and never recomputed.
func NewOrderFromCart(userID int64, lines []CartLine, now time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &Order{
		UserID:    userID,
		Status:    StatusPlaced,
		Date:      now.UTC(),
		UpdatedAt: now.UTC(),
		Lines:     make([]OrderLine, 0, len(lines)),
	}

	for _, line := range lines {
		if line.UserID != userID {
			return nil, Forbiddenf("cart line %d belongs to another user", line.ID)
		}
		order.Lines = append(order.Lines, OrderLine{
			MenuItemID: line.MenuItemID,
			MenuItem:   line.MenuItem,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal,
		})
	}

	order.CalculateTotal()
	return order, nil
}

// CalculateTotal sums the line totals. Only called while building the order.
func (o *Order) CalculateTotal() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal)
	}
	o.Total = total
}

// IsVisibleTo applies the role-scoped visibility rule for orders
func (o *Order) IsVisibleTo(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return true
	case RoleDeliveryCrew:
		return o.DeliveryCrewID != nil && *o.DeliveryCrewID == actor.UserID
	default:
		return o.UserID == actor.UserID
	}
}

// SetStatus moves the order along Placed -> Delivered. A delivered order
// accepts any status without effect. Reports whether the status changed.
func (o *Order) SetStatus(status OrderStatus) bool {
	if !o.CanTransitionTo(status) {
		return false
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return true
}

// CanTransitionTo checks if the order can transition to the new status
func (o *Order) CanTransitionTo(status OrderStatus) bool {
	return o.Status == StatusPlaced && status == StatusDelivered
}

// AssignDeliveryCrew sets or clears (nil) the delivery crew member
func (o *Order) AssignDeliveryCrew(userID *int64) {
	o.DeliveryCrewID = userID
	o.UpdatedAt = time.Now().UTC()
}

// Order field names as exposed by the API
const (
	FieldDeliveryCrew = "delivery_crew"
	FieldStatus       = "status"
	FieldTotal        = "total"
	FieldUser         = "user"
	FieldDate         = "date"
)

// OrderChanges carries the fields present in an update request. A nil
// pointer means the field was not sent.
type OrderChanges struct {
	DeliveryCrewSet bool
	DeliveryCrewID  *int64
	Status          *OrderStatus
	Total           *decimal.Decimal
	UserID          *int64
	Date            *time.Time
}

// ChangedFields lists the fields whose requested value differs from the
// order's current value. Fields sent unchanged are not reported.
func (o *Order) ChangedFields(c OrderChanges) []string {
	var fields []string

	if c.DeliveryCrewSet && !sameID(o.DeliveryCrewID, c.DeliveryCrewID) {
		fields = append(fields, FieldDeliveryCrew)
	}
	if c.Status != nil && *c.Status != o.Status {
		fields = append(fields, FieldStatus)
	}
	if c.Total != nil && !c.Total.Equal(o.Total) {
		fields = append(fields, FieldTotal)
	}
	if c.UserID != nil && *c.UserID != o.UserID {
		fields = append(fields, FieldUser)
	}
	if c.Date != nil && !sameDay(*c.Date, o.Date) {
		fields = append(fields, FieldDate)
	}
	return fields
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
