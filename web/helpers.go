package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cemsreg/observability"
	"cemsreg/registry"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store sentinels to HTTP statuses. Unknown errors become a
// generic 500 so internals never leak to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, registry.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, registry.ErrBadCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, registry.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, registry.ErrEmailExists),
		errors.Is(err, registry.ErrRegistrationCodeExists),
		errors.Is(err, registry.ErrStackQuotaReached),
		errors.Is(err, registry.ErrParameterTaken):
		status, msg = http.StatusConflict, err.Error()
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("request_id", observability.RequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeViolations rejects a form that failed validation. The full violation
// list (errors and warnings) goes back so the client can render all of it.
func writeViolations(w http.ResponseWriter, v registry.Violations) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":      "validation failed",
		"violations": v,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}
