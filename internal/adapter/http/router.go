package http

import (
	"context"
	"net/http"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const healthTimeout = 2 * time.Second

// Services are the ports the API is served from
type Services struct {
	Catalog  interfaces.CatalogService
	Cart     interfaces.CartService
	Orders   interfaces.OrderService
	Accounts interfaces.AccountService
	Store    interfaces.Pinger
}

// NewRouter wires every handler behind recovery, access logging, the
// per-request deadline and token authentication.
func NewRouter(services Services, log logger.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(RecoveryMiddleware(log))
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/", index)
	r.Get("/health", healthHandler(services.Store, log))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(services.Accounts, log))

		NewCatalogHandler(services.Catalog, log).RegisterRoutes(r)
		NewCartHandler(services.Cart, log).RegisterRoutes(r)
		NewOrderHandler(services.Orders, log).RegisterRoutes(r)
		NewAccountHandler(services.Accounts, log).RegisterRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})
	return r
}

func index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello from Little Lemon API!"})
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func healthHandler(store interfaces.Pinger, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Error("health_check_failed", "Store ping failed", logger.RequestID(r.Context()), nil, err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Store: "down"})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: "up"})
	}
}
