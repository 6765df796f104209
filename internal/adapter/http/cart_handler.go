package http

import (
	"net/http"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	service interfaces.CartService
	logger  logger.Logger
}

func NewCartHandler(service interfaces.CartService, logger logger.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the cart under /cart and its legacy /cart/menu-items path
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		for _, prefix := range []string{"/", "/menu-items"} {
			r.Get(prefix, h.List)
			r.Post(prefix, h.Add)
			r.Delete(prefix, h.Clear)
		}
		r.Delete("/{menuItemId}", h.Remove)
	})
}

type addCartItemRequest struct {
	MenuItemID int64 `json:"menuitem_id"`
	Quantity   int   `json:"quantity"`
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.ListCart(r.Context(), actorFrom(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	resp := make([]cartLineResponse, len(lines))
	for i := range lines {
		resp[i] = toCartLineResponse(&lines[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	line, err := h.service.AddItem(r.Context(), actorFrom(r.Context()), req.MenuItemID, req.Quantity)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartLineResponse(line))
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	menuItemID, err := pathID(r, "menuItemId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.service.RemoveItem(r.Context(), actorFrom(r.Context()), menuItemID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.ClearCart(r.Context(), actorFrom(r.Context())); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
