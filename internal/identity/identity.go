// Package identity provides anonymous per-session identity primitives.
//
// Sessions are opaque tokens: the middleware mints one when the client
// does not present a valid id, ensures a usage-ledger session exists,
// and echoes the id back so the client can propagate it on every
// request.
package identity

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/usage"
)

const (
	// SessionHeaderName carries the opaque session id on requests and
	// responses.
	SessionHeaderName = "X-Session-ID"

	// PlanHeaderName selects the plan on first contact. Ignored once a
	// session exists.
	PlanHeaderName = "X-Session-Plan"
)

type contextKey int

const sessionIDKey contextKey = iota

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// SessionIDFromContext extracts the session id from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithSessionID returns ctx carrying the session id. Exposed
// for handler tests.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func sanitizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !sessionIDPattern.MatchString(id) {
		return ""
	}
	return id
}

func planFromHeader(r *http.Request) domain.Plan {
	plan := domain.Plan(strings.TrimSpace(r.Header.Get(PlanHeaderName)))
	if !plan.Valid() {
		return domain.PlanFree
	}
	return plan
}

// Middleware ensures every request carries a live ledger session. An
// unknown or missing id gets a freshly minted one; either way the
// effective id is stored in the request context and echoed on the
// response.
func Middleware(ledger *usage.Ledger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sanitizeSessionID(r.Header.Get(SessionHeaderName))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			ledger.EnsureSession(r.Context(), sessionID, planFromHeader(r))

			w.Header().Set(SessionHeaderName, sessionID)
			ctx := ContextWithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
