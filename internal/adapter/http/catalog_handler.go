package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	service interfaces.CatalogService
	logger  logger.Logger
}

func NewCatalogHandler(service interfaces.CatalogService, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/{id}", h.GetCategory)
		r.Put("/{id}", h.ReplaceCategory)
		r.Patch("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})
	r.Route("/menu-items", func(r chi.Router) {
		r.Get("/", h.ListMenuItems)
		r.Post("/", h.CreateMenuItem)
		r.Get("/{id}", h.GetMenuItem)
		r.Put("/{id}", h.ReplaceMenuItem)
		r.Patch("/{id}", h.UpdateMenuItem)
		r.Delete("/{id}", h.DeleteMenuItem)
	})
}

type categoryRequest struct {
	Slug  *string `json:"slug"`
	Title *string `json:"title"`
}

type menuItemRequest struct {
	Title      *string          `json:"title"`
	Price      *decimal.Decimal `json:"price"`
	Featured   *bool            `json:"featured"`
	CategoryID *int64           `json:"category_id"`
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), actorFrom(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	resp := make([]*categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	category, err := h.service.GetCategory(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	category, err := h.service.CreateCategory(r.Context(), actorFrom(r.Context()), interfaces.CategoryCommand{
		Slug:  deref(req.Slug),
		Title: deref(req.Title),
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// ReplaceCategory is PUT: every writable field must be present
func (h *CatalogHandler) ReplaceCategory(w http.ResponseWriter, r *http.Request) {
	h.updateCategory(w, r, true)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	h.updateCategory(w, r, false)
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request, full bool) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if full {
		if err := requireFields(fieldPresence{"slug", req.Slug != nil}, fieldPresence{"title", req.Title != nil}); err != nil {
			respondError(w, r, h.logger, err)
			return
		}
	}

	category, err := h.service.UpdateCategory(r.Context(), actorFrom(r.Context()), id, interfaces.CategoryPatch{
		Slug:  req.Slug,
		Title: req.Title,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), actorFrom(r.Context()), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	query, err := parseMenuItemQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	page, err := h.service.ListMenuItems(r.Context(), actorFrom(r.Context()), query)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	results := make([]*menuItemResponse, len(page.Items))
	for i, item := range page.Items {
		results[i] = toMenuItemResponse(item)
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Count:   page.Count,
		Page:    page.Page,
		PerPage: page.PerPage,
		HasNext: page.HasNext(),
		Results: results,
	})
}

func parseMenuItemQuery(values url.Values) (interfaces.MenuItemQuery, error) {
	query := interfaces.MenuItemQuery{
		Search:   values.Get("search"),
		Ordering: values.Get("ordering"),
	}

	if v := values.Get("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return query, domain.NewValidationError("category", "category must be an integer id")
		}
		query.CategoryID = &id
	}
	if v := values.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return query, domain.NewValidationError("featured", "featured must be true or false")
		}
		query.Featured = &featured
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

func (h *CatalogHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	item, err := h.service.GetMenuItem(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *CatalogHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	cmd := interfaces.MenuItemCommand{Title: deref(req.Title)}
	if req.Price != nil {
		cmd.Price = *req.Price
	}
	if req.Featured != nil {
		cmd.Featured = *req.Featured
	}
	if req.CategoryID != nil {
		cmd.CategoryID = *req.CategoryID
	}

	item, err := h.service.CreateMenuItem(r.Context(), actorFrom(r.Context()), cmd)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

func (h *CatalogHandler) ReplaceMenuItem(w http.ResponseWriter, r *http.Request) {
	h.updateMenuItem(w, r, true)
}

func (h *CatalogHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	h.updateMenuItem(w, r, false)
}

func (h *CatalogHandler) updateMenuItem(w http.ResponseWriter, r *http.Request, full bool) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if full {
		err := requireFields(
			fieldPresence{"title", req.Title != nil},
			fieldPresence{"price", req.Price != nil},
			fieldPresence{"category_id", req.CategoryID != nil},
		)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
	}

	item, err := h.service.UpdateMenuItem(r.Context(), actorFrom(r.Context()), id, interfaces.MenuItemPatch{
		Title:      req.Title,
		Price:      req.Price,
		Featured:   req.Featured,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *CatalogHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.service.DeleteMenuItem(r.Context(), actorFrom(r.Context()), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type fieldPresence struct {
	name    string
	present bool
}

func requireFields(fields ...fieldPresence) error {
	for _, f := range fields {
		if !f.present {
			return domain.NewValidationError(f.name, "this field is required")
		}
	}
	return nil
}

func intParam(values url.Values, name string) (int, error) {
	v := values.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.NewValidationError(name, name+" must be an integer")
	}
	return n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
