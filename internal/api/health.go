package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lucidra/sandbox-server/internal/store"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	repo store.Repository
}

// NewHealthHandler creates a health handler. The repository may be nil
// when running without persistence.
func NewHealthHandler(repo store.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// RegisterRoutes registers health routes.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.GetHealth)
}

// GetHealth pings the database and reports status.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "disabled"}

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			JSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	JSON(w, http.StatusOK, status)
}
