package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, fields []ValidationError) {
	writeJSON(w, status, ErrorResponse{Error: message, Errors: fields})
}

// respondError maps a service error onto its status code. Unexpected errors
// are logged and hidden behind a generic message.
func respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation failed", []ValidationError{{Field: verr.Field, Message: verr.Message}})
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty", nil)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Token")
		writeError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		log.Error("request_failed", "Unhandled error", logger.RequestID(r.Context()), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}, err)
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

// decodeJSON reads a JSON object body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return domain.NewValidationError("", "request body is required")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return domain.NewValidationError(typeErr.Field, "invalid value type")
	}
	if err != nil {
		return domain.NewValidationError("", "invalid request body")
	}
	return nil
}

// pathID parses a positive integer URL parameter. Malformed ids cannot name
// a resource, so they are reported as not found.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NotFoundf("%s %q", name, chi.URLParam(r, name))
	}
	return id, nil
}
