// Package api provides HTTP handlers for the sandbox API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/sandbox"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"success": false, "error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Data writes a successful response envelope.
func Data(w http.ResponseWriter, status int, v interface{}) {
	JSON(w, status, map[string]interface{}{"success": true, "data": v})
}

// Error writes a JSON error response envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]interface{}{"success": false, "error": message})
}

// DomainError maps the core error taxonomy onto HTTP statuses. Quota
// denials include the usage snapshot so clients can render remaining
// quota without a second round trip.
func DomainError(w http.ResponseWriter, err error) {
	var quotaErr *sandbox.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		JSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success": false,
			"error":   quotaErr.Reason,
			"usage":   quotaErr.Usage,
		})
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		Error(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		Error(w, http.StatusForbidden, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
