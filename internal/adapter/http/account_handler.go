package http

import (
	"fmt"
	"net/http"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"github.com/go-chi/chi/v5"
)

// group names as they appear in URLs
var groupSlugs = map[string]string{
	"manager":       domain.GroupManager,
	"delivery-crew": domain.GroupDeliveryCrew,
}

type AccountHandler struct {
	service interfaces.AccountService
	logger  logger.Logger
}

func NewAccountHandler(service interfaces.AccountService, logger logger.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users/register", h.Register)
	r.Get("/users/me", h.Me)
	r.Post("/token/login", h.Login)
	r.Post("/token/logout", h.Logout)

	r.Route("/groups/{group}/users", func(r chi.Router) {
		r.Get("/", h.ListMembers)
		r.Post("/", h.AddMember)
		r.Delete("/{id}", h.RemoveMember)
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

type groupMemberRequest struct {
	Username string `json:"username"`
}

type groupMemberResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	user, err := h.service.Register(r.Context(), interfaces.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AuthToken: token})
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	user, err := h.service.Me(r.Context(), actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		userResponse: toUserResponse(user),
		Role:         actor.Role.String(),
	})
}

func (h *AccountHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	group, err := groupParam(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	users, err := h.service.ListGroupMembers(r.Context(), actorFrom(r.Context()), group)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(users))
}

func (h *AccountHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	group, err := groupParam(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req groupMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.service.AddToGroup(r.Context(), actorFrom(r.Context()), group, req.Username)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupMemberResponse{
		Message: fmt.Sprintf("User %s added to %s group", user.Username, group),
		User:    toUserResponse(user),
	})
}

func (h *AccountHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	group, err := groupParam(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.service.RemoveFromGroup(r.Context(), actorFrom(r.Context()), group, userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groupMemberResponse{
		Message: fmt.Sprintf("User %s removed from %s group", user.Username, group),
		User:    toUserResponse(user),
	})
}

func groupParam(r *http.Request) (string, error) {
	slug := chi.URLParam(r, "group")
	group, ok := groupSlugs[slug]
	if !ok {
		return "", domain.NotFoundf("group %q", slug)
	}
	return group, nil
}
