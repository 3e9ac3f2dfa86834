package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"famfin/internal/api"
	"famfin/internal/core"
	"famfin/internal/data"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// respondError maps domain and remote errors onto HTTP statuses.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var se *api.StatusError
	switch {
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, data.ErrRemoteOnly):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &se):
		writeError(w, se.StatusCode, se.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrEmptyName,
		core.ErrInvalidType,
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrEmptyCategory,
		core.ErrMissingMember,
		core.ErrInvalidFuelData,
		core.ErrWrongConsumption,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
