package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity bounds a single cart line.
const MaxLineQuantity = 1000

// CartLine is one (user, menu item) selection pending checkout
type CartLine struct {
	ID         int64
	UserID     int64
	MenuItemID int64
	MenuItem   *MenuItem
	Quantity   int
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
	CreatedAt  time.Time
}

// NewCartLine snapshots the item's current price and computes the line total.
func NewCartLine(userID int64, item *MenuItem, quantity int) (*CartLine, error) {
	if quantity < 1 {
		return nil, NewValidationError("quantity", "quantity must be at least 1")
	}
	if quantity > MaxLineQuantity {
		return nil, NewValidationError("quantity", "quantity must not exceed 1000")
	}

	line := &CartLine{
		UserID:     userID,
		MenuItemID: item.ID,
		MenuItem:   item,
		Quantity:   quantity,
		UnitPrice:  item.Price,
		CreatedAt:  time.Now().UTC(),
	}
	line.CalculateTotal()
	return line, nil
}

// CalculateTotal sets LineTotal = Quantity x UnitPrice
func (l *CartLine) CalculateTotal() {
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
