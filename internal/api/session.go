package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lucidra/sandbox-server/internal/identity"
	"github.com/lucidra/sandbox-server/internal/usage"
)

// SessionHandler handles usage-quota session endpoints.
type SessionHandler struct {
	ledger *usage.Ledger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(ledger *usage.Ledger) *SessionHandler {
	return &SessionHandler{ledger: ledger}
}

// RegisterRoutes registers session routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Post("/opt-in", h.OptIn)
		r.Post("/opt-out", h.OptOut)
		r.Get("/usage", h.GetUsage)
		r.Get("/can-use", h.CanUse)
	})
}

// OptIn records AI consent for the caller's session.
func (h *SessionHandler) OptIn(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if !h.ledger.OptIn(r.Context(), sessionID) {
		Error(w, http.StatusNotFound, "Session not found")
		return
	}
	Data(w, http.StatusOK, h.ledger.UsageStats(sessionID))
}

// OptOut withdraws AI consent for the caller's session.
func (h *SessionHandler) OptOut(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if !h.ledger.OptOut(r.Context(), sessionID) {
		Error(w, http.StatusNotFound, "Session not found")
		return
	}
	Data(w, http.StatusOK, h.ledger.UsageStats(sessionID))
}

// GetUsage returns quota projections for the caller's session.
func (h *SessionHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	stats := h.ledger.UsageStats(sessionID)
	if stats == nil {
		Error(w, http.StatusNotFound, "Session not found")
		return
	}
	Data(w, http.StatusOK, stats)
}

// CanUse reports whether the caller's session may invoke an advisor.
func (h *SessionHandler) CanUse(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	Data(w, http.StatusOK, h.ledger.CanUse(r.Context(), sessionID))
}
