package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Place)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.PlaceOrder(r.Context(), actorFrom(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseOrderQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	page, err := h.service.ListOrders(r.Context(), actorFrom(r.Context()), query)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	results := make([]orderResponse, len(page.Items))
	for i, o := range page.Items {
		results[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Count:   page.Count,
		Page:    page.Page,
		PerPage: page.PerPage,
		HasNext: page.HasNext(),
		Results: results,
	})
}

func parseOrderQuery(values url.Values) (interfaces.OrderQuery, error) {
	var query interfaces.OrderQuery

	if v := values.Get("status"); v != "" {
		delivered, err := strconv.ParseBool(v)
		if err != nil {
			return query, domain.NewValidationError("status", "status must be true or false")
		}
		status := domain.OrderStatusFromBool(delivered)
		query.Status = &status
	}

	var err error
	if query.Page, err = intParam(values, "page"); err != nil {
		return query, err
	}
	if query.PerPage, err = intParam(values, "perpage"); err != nil {
		return query, err
	}
	return query, nil
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	order, err := h.service.GetOrder(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Update serves both PUT and PATCH. Only the fields present in the body are
// considered; an explicit null delivery_crew unassigns the order.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	changes, err := parseOrderChanges(body)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), actorFrom(r.Context()), id, changes)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func parseOrderChanges(body map[string]json.RawMessage) (domain.OrderChanges, error) {
	var changes domain.OrderChanges

	if raw, ok := body[domain.FieldDeliveryCrew]; ok {
		changes.DeliveryCrewSet = true
		if err := json.Unmarshal(raw, &changes.DeliveryCrewID); err != nil {
			return changes, domain.NewValidationError(domain.FieldDeliveryCrew, "delivery_crew must be a user id or null")
		}
	}
	if raw, ok := body[domain.FieldStatus]; ok {
		var delivered bool
		if err := json.Unmarshal(raw, &delivered); err != nil {
			return changes, domain.NewValidationError(domain.FieldStatus, "status must be a boolean")
		}
		status := domain.OrderStatusFromBool(delivered)
		changes.Status = &status
	}
	if raw, ok := body[domain.FieldTotal]; ok {
		var total decimal.Decimal
		if err := json.Unmarshal(raw, &total); err != nil {
			return changes, domain.NewValidationError(domain.FieldTotal, "total must be a decimal amount")
		}
		changes.Total = &total
	}
	if raw, ok := body[domain.FieldUser]; ok {
		var userID int64
		if err := json.Unmarshal(raw, &userID); err != nil {
			return changes, domain.NewValidationError(domain.FieldUser, "user must be a user id")
		}
		changes.UserID = &userID
	}
	if raw, ok := body[domain.FieldDate]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return changes, domain.NewValidationError(domain.FieldDate, "date must be a YYYY-MM-DD string")
		}
		date, err := time.Parse(dateLayout, s)
		if err != nil {
			return changes, domain.NewValidationError(domain.FieldDate, "date must be a YYYY-MM-DD string")
		}
		changes.Date = &date
	}
	return changes, nil
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.service.DeleteOrder(r.Context(), actorFrom(r.Context()), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
