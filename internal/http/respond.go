package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"pocketrithm/internal/auth"
	"pocketrithm/internal/core"
	"pocketrithm/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps the error chain to an HTTP status. Typed store and auth
// errors get their status; validation sentinels get 422; everything else is
// a 500 with a generic body so backend details never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, store.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		writeErrorMessage(w, http.StatusConflict, "already exists")
	case errors.Is(err, store.ErrRateLimited):
		w.Header().Set("Retry-After", "60")
		writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
	case isValidationError(err):
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

var validationSentinels = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidKind,
	core.ErrEmptyCategory,
	core.ErrEmptySource,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrZeroDate,
}

func isValidationError(err error) bool {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// decodeJSON reads the request body into v, rejecting unknown fields so
// typos surface as 400s instead of silently dropped data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
