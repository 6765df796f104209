package http

import (
	"github.com/YelzhanWeb/little-lemon/internal/domain"
)

const dateLayout = "2006-01-02"

type categoryResponse struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type menuItemResponse struct {
	ID         int64             `json:"id"`
	Title      string            `json:"title"`
	Price      string            `json:"price"`
	Featured   bool              `json:"featured"`
	Category   *categoryResponse `json:"category"`
	CategoryID int64             `json:"category_id"`
}

type pageResponse struct {
	Count   int         `json:"count"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	HasNext bool        `json:"has_next"`
	Results interface{} `json:"results"`
}

type cartLineResponse struct {
	ID         int64             `json:"id"`
	MenuItem   *menuItemResponse `json:"menuitem"`
	MenuItemID int64             `json:"menuitem_id"`
	Quantity   int               `json:"quantity"`
	UnitPrice  string            `json:"unit_price"`
	Price      string            `json:"price"`
}

type orderLineResponse struct {
	MenuItem  *menuItemResponse `json:"menuitem"`
	Quantity  int               `json:"quantity"`
	UnitPrice string            `json:"unit_price"`
	Price     string            `json:"price"`
}

type orderResponse struct {
	ID           int64               `json:"id"`
	User         int64               `json:"user"`
	DeliveryCrew *int64              `json:"delivery_crew"`
	Status       bool                `json:"status"`
	Total        string              `json:"total"`
	Date         string              `json:"date"`
	OrderItems   []orderLineResponse `json:"order_items"`
}

type userResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"groups"`
}

type meResponse struct {
	userResponse
	Role string `json:"role"`
}

func toCategoryResponse(c *domain.Category) *categoryResponse {
	if c == nil {
		return nil
	}
	return &categoryResponse{ID: c.ID, Slug: c.Slug, Title: c.Title}
}

func toMenuItemResponse(m *domain.MenuItem) *menuItemResponse {
	if m == nil {
		return nil
	}
	return &menuItemResponse{
		ID:         m.ID,
		Title:      m.Title,
		Price:      m.Price.StringFixed(2),
		Featured:   m.Featured,
		Category:   toCategoryResponse(m.Category),
		CategoryID: m.CategoryID,
	}
}

func toCartLineResponse(l *domain.CartLine) cartLineResponse {
	return cartLineResponse{
		ID:         l.ID,
		MenuItem:   toMenuItemResponse(l.MenuItem),
		MenuItemID: l.MenuItemID,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice.StringFixed(2),
		Price:      l.LineTotal.StringFixed(2),
	}
}

func toOrderResponse(o *domain.Order) orderResponse {
	lines := make([]orderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineResponse{
			MenuItem:  toMenuItemResponse(l.MenuItem),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Price:     l.LineTotal.StringFixed(2),
		}
	}
	return orderResponse{
		ID:           o.ID,
		User:         o.UserID,
		DeliveryCrew: o.DeliveryCrewID,
		Status:       o.Status.Bool(),
		Total:        o.Total.StringFixed(2),
		Date:         o.Date.UTC().Format(dateLayout),
		OrderItems:   lines,
	}
}

func toUserResponse(u *domain.User) userResponse {
	groups := u.Groups
	if groups == nil {
		groups = []string{}
	}
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Groups: groups}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}
