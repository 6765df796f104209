package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/adapter/memory"
	"github.com/YelzhanWeb/little-lemon/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/little-lemon/internal/app/account"
	"github.com/YelzhanWeb/little-lemon/internal/app/cart"
	"github.com/YelzhanWeb/little-lemon/internal/app/catalog"
	"github.com/YelzhanWeb/little-lemon/internal/app/order"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()

	accounts := account.NewService(store.Users(), store.Tokens(), log, bcrypt.MinCost)
	_, err := accounts.EnsureAdmin(context.Background(), interfaces.RegisterCommand{
		Username: "admin",
		Password: "adminpass",
	})
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	handler := NewRouter(Services{
		Catalog:  catalog.NewService(store.Categories(), store.MenuItems(), log),
		Cart:     cart.NewService(store.Cart(), store.MenuItems(), log),
		Orders:   order.NewService(store.Orders(), store.Users(), rabbitmq.NewNoopPublisher(), log),
		Accounts: accounts,
		Store:    store,
	}, log, 5*time.Second)

	return &testAPI{t: t, handler: handler}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// expect performs the request, checks the status and decodes the body into out
func (a *testAPI) expect(status int, method, path, token string, body, out interface{}) {
	a.t.Helper()
	rec := a.do(method, path, token, body)
	if rec.Code != status {
		a.t.Fatalf("%s %s: status = %d, want %d, body %s", method, path, rec.Code, status, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

func (a *testAPI) register(username string) int64 {
	a.t.Helper()
	var u userResponse
	a.expect(http.StatusCreated, "POST", "/users/register", "", map[string]string{
		"username": username,
		"email":    username + "@littlelemon.test",
		"password": "pass123",
	}, &u)
	return u.ID
}

func (a *testAPI) login(username, password string) string {
	a.t.Helper()
	var resp loginResponse
	a.expect(http.StatusOK, "POST", "/token/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	return resp.AuthToken
}

type orderPage struct {
	Count   int             `json:"count"`
	Results []orderResponse `json:"results"`
}

func TestOrderLifecycle(t *testing.T) {
	api := newTestAPI(t)

	adminToken := api.login("admin", "adminpass")
	api.register("manager")
	crewID := api.register("crew")
	api.register("alice")
	api.register("bob")
	managerToken := api.login("manager", "pass123")
	crewToken := api.login("crew", "pass123")
	aliceToken := api.login("alice", "pass123")
	bobToken := api.login("bob", "pass123")

	api.expect(http.StatusCreated, "POST", "/groups/manager/users", adminToken, map[string]string{"username": "manager"}, nil)
	api.expect(http.StatusCreated, "POST", "/groups/delivery-crew/users", managerToken, map[string]string{"username": "crew"}, nil)

	var me meResponse
	api.expect(http.StatusOK, "GET", "/users/me", crewToken, nil, &me)
	if me.Role != "delivery_crew" {
		t.Fatalf("crew role = %q", me.Role)
	}

	var mains categoryResponse
	api.expect(http.StatusCreated, "POST", "/categories", adminToken, map[string]string{"slug": "mains", "title": "Mains"}, &mains)
	api.expect(http.StatusForbidden, "POST", "/categories", managerToken, map[string]string{"slug": "sides", "title": "Sides"}, nil)

	var chips, salad menuItemResponse
	api.expect(http.StatusCreated, "POST", "/menu-items", managerToken, map[string]interface{}{
		"title": "Chips", "price": "3.00", "category_id": mains.ID,
	}, &chips)
	api.expect(http.StatusCreated, "POST", "/menu-items", managerToken, map[string]interface{}{
		"title": "Greek Salad", "price": 4.25, "featured": true, "category_id": mains.ID,
	}, &salad)
	if chips.Price != "3.00" || chips.Category == nil || chips.Category.Slug != "mains" {
		t.Fatalf("chips = %+v", chips)
	}

	var line cartLineResponse
	api.expect(http.StatusCreated, "POST", "/cart/menu-items", aliceToken, map[string]interface{}{"menuitem_id": chips.ID, "quantity": 2}, &line)
	if line.Price != "6.00" || line.UnitPrice != "3.00" {
		t.Fatalf("cart line = %+v", line)
	}
	api.expect(http.StatusCreated, "POST", "/cart", aliceToken, map[string]interface{}{"menuitem_id": salad.ID, "quantity": 3}, nil)

	var placed orderResponse
	api.expect(http.StatusCreated, "POST", "/orders", aliceToken, nil, &placed)
	if placed.Total != "18.75" || placed.Status || len(placed.OrderItems) != 2 {
		t.Fatalf("placed order = %+v", placed)
	}

	var lines []cartLineResponse
	api.expect(http.StatusOK, "GET", "/cart", aliceToken, nil, &lines)
	if len(lines) != 0 {
		t.Fatalf("cart after placement has %d lines", len(lines))
	}
	api.expect(http.StatusBadRequest, "POST", "/orders", aliceToken, nil, nil)

	orderPath := fmt.Sprintf("/orders/%d", placed.ID)
	api.expect(http.StatusOK, "GET", orderPath, aliceToken, nil, nil)
	api.expect(http.StatusNotFound, "GET", orderPath, bobToken, nil, nil)
	api.expect(http.StatusOK, "GET", orderPath, managerToken, nil, nil)
	api.expect(http.StatusNotFound, "GET", orderPath, crewToken, nil, nil)

	var page orderPage
	api.expect(http.StatusOK, "GET", "/orders", bobToken, nil, &page)
	if page.Count != 0 {
		t.Fatalf("bob sees %d orders", page.Count)
	}

	api.expect(http.StatusOK, "PATCH", orderPath, managerToken, map[string]interface{}{"delivery_crew": crewID}, nil)
	api.expect(http.StatusForbidden, "PATCH", orderPath, crewToken, map[string]interface{}{"status": true, "total": 999}, nil)

	var current orderResponse
	api.expect(http.StatusOK, "GET", orderPath, managerToken, nil, &current)
	if current.Status || current.Total != "18.75" {
		t.Fatalf("order changed by rejected update: %+v", current)
	}

	api.expect(http.StatusOK, "PATCH", orderPath, crewToken, map[string]interface{}{"status": true}, &current)
	if !current.Status || current.DeliveryCrew == nil || *current.DeliveryCrew != crewID {
		t.Fatalf("delivered order = %+v", current)
	}

	api.expect(http.StatusForbidden, "DELETE", orderPath, managerToken, nil, nil)
	api.expect(http.StatusNoContent, "DELETE", orderPath, adminToken, nil, nil)
	api.expect(http.StatusNotFound, "GET", orderPath, adminToken, nil, nil)
}

func TestAuthentication(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"unknown token", "Token deadbeef", http.StatusUnauthorized},
		{"wrong scheme", "Bearer deadbeef", http.StatusUnauthorized},
		{"empty token", "Token ", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/menu-items", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			api.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	api.expect(http.StatusUnauthorized, "POST", "/token/login", "", map[string]string{"username": "alice", "password": "nope"}, nil)

	token := api.login("alice", "pass123")
	api.expect(http.StatusOK, "GET", "/menu-items", token, nil, nil)
	api.expect(http.StatusNoContent, "POST", "/token/logout", token, nil, nil)
	api.expect(http.StatusUnauthorized, "GET", "/menu-items", token, nil, nil)
}

func TestMenuItemValidation(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin", "adminpass")

	var drinks categoryResponse
	api.expect(http.StatusCreated, "POST", "/categories", admin, map[string]string{"slug": "drinks", "title": "Drinks"}, &drinks)

	tests := []struct {
		name      string
		body      map[string]interface{}
		wantField string
	}{
		{"unknown category", map[string]interface{}{"title": "Tea", "price": "2.00", "category_id": 999}, "category_id"},
		{"zero price", map[string]interface{}{"title": "Tea", "price": "0", "category_id": drinks.ID}, "price"},
		{"missing title", map[string]interface{}{"price": "2.00", "category_id": drinks.ID}, "title"},
		{"price wrong type", map[string]interface{}{"title": "Tea", "price": true, "category_id": drinks.ID}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			api.expect(http.StatusBadRequest, "POST", "/menu-items", admin, tt.body, &resp)
			if tt.wantField == "" {
				return
			}
			if len(resp.Errors) != 1 || resp.Errors[0].Field != tt.wantField {
				t.Errorf("errors = %+v, want field %q", resp.Errors, tt.wantField)
			}
		})
	}
}

func TestMenuItemListing(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin", "adminpass")

	var cat categoryResponse
	api.expect(http.StatusCreated, "POST", "/categories", admin, map[string]string{"slug": "mains", "title": "Mains"}, &cat)
	for i, price := range []string{"9.50", "4.00", "12.00"} {
		api.expect(http.StatusCreated, "POST", "/menu-items", admin, map[string]interface{}{
			"title":       fmt.Sprintf("Dish %d", i),
			"price":       price,
			"featured":    i == 1,
			"category_id": cat.ID,
		}, nil)
	}

	type listing struct {
		Count   int                `json:"count"`
		HasNext bool               `json:"has_next"`
		Results []menuItemResponse `json:"results"`
	}

	var byPrice listing
	api.expect(http.StatusOK, "GET", "/menu-items?ordering=-price&perpage=2", admin, nil, &byPrice)
	if byPrice.Count != 3 || !byPrice.HasNext || len(byPrice.Results) != 2 || byPrice.Results[0].Price != "12.00" {
		t.Fatalf("ordering=-price listing = %+v", byPrice)
	}

	var featured listing
	api.expect(http.StatusOK, "GET", "/menu-items?featured=true", admin, nil, &featured)
	if featured.Count != 1 || featured.Results[0].Price != "4.00" {
		t.Fatalf("featured listing = %+v", featured)
	}

	api.expect(http.StatusBadRequest, "GET", "/menu-items?ordering=calories", admin, nil, nil)
	api.expect(http.StatusBadRequest, "GET", "/menu-items?perpage=500", admin, nil, nil)
	api.expect(http.StatusBadRequest, "GET", "/menu-items?featured=maybe", admin, nil, nil)
	api.expect(http.StatusBadRequest, "GET", "/menu-items?page=9223372036854775807", admin, nil, nil)
	api.expect(http.StatusBadRequest, "GET", "/menu-items?page=922337203685477581&perpage=100", admin, nil, nil)
	api.expect(http.StatusBadRequest, "GET", "/orders?page=9223372036854775807", admin, nil, nil)
}

func TestCategoryDeleteInUse(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin", "adminpass")

	var cat categoryResponse
	api.expect(http.StatusCreated, "POST", "/categories", admin, map[string]string{"slug": "mains", "title": "Mains"}, &cat)
	api.expect(http.StatusCreated, "POST", "/menu-items", admin, map[string]interface{}{
		"title": "Chips", "price": "3.00", "category_id": cat.ID,
	}, nil)

	path := fmt.Sprintf("/categories/%d", cat.ID)
	api.expect(http.StatusConflict, "DELETE", path, admin, nil, nil)
	api.expect(http.StatusBadRequest, "PUT", path, admin, map[string]string{"title": "Only title"}, nil)

	var updated categoryResponse
	api.expect(http.StatusOK, "PATCH", path, admin, map[string]string{"title": "Main Courses"}, &updated)
	if updated.Title != "Main Courses" || updated.Slug != "mains" {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	var resp healthResponse
	api.expect(http.StatusOK, "GET", "/health", "", nil, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	api.expect(http.StatusNotFound, "GET", "/no-such-path", "", nil, nil)
}
