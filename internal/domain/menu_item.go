package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPrice is the largest amount NUMERIC(10,2) can hold.
var MaxPrice = decimal.RequireFromString("99999999.99")

// MenuItem represents a dish or drink on the menu
type MenuItem struct {
	ID         int64
	Title      string
	Price      decimal.Decimal
	Featured   bool
	CategoryID int64
	Category   *Category
}

// NewMenuItem creates a validated menu item. The category reference is
// checked against the store by the catalog service.
func NewMenuItem(title string, price decimal.Decimal, featured bool, categoryID int64) (*MenuItem, error) {
	item := &MenuItem{
		Title:      strings.TrimSpace(title),
		Price:      price,
		Featured:   featured,
		CategoryID: categoryID,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate applies the menu item field rules
func (m *MenuItem) Validate() error {
	if m.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if len(m.Title) > 255 {
		return NewValidationError("title", "title must not exceed 255 characters")
	}
	if err := ValidatePrice("price", m.Price); err != nil {
		return err
	}
	if m.CategoryID <= 0 {
		return NewValidationError("category_id", "category_id is required")
	}
	return nil
}

// ValidatePrice checks that an amount is positive and fits two decimal places.
func ValidatePrice(field string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return NewValidationError(field, "must be greater than 0")
	}
	if !price.Equal(price.Round(2)) {
		return NewValidationError(field, "must have at most 2 decimal places")
	}
	if price.GreaterThan(MaxPrice) {
		return NewValidationError(field, "must not exceed "+MaxPrice.StringFixed(2))
	}
	return nil
}
