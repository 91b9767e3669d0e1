// Package usage tracks per-session AI token and call consumption
// against plan quotas, and gates whether a session may invoke an AI
// advisor.
package usage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/store"
)

// DefaultPlanLimits is the quota table applied when no override is
// given. Both counters are independent hard ceilings; exceeding either
// dimension disables the session.
var DefaultPlanLimits = map[domain.Plan]domain.PlanLimits{
	domain.PlanFree:    {MaxTokens: 1000, MaxCalls: 5},
	domain.PlanBasic:   {MaxTokens: 10000, MaxCalls: 50},
	domain.PlanPremium: {MaxTokens: 100000, MaxCalls: 500},
}

// Decision is the result of a CanUse check.
type Decision struct {
	Allowed bool               `json:"allowed"`
	Reason  string             `json:"reason,omitempty"`
	Usage   *domain.UsageStats `json:"usage"`
}

// Ledger owns the in-memory session table. Every mutating operation on
// a single session runs entirely under the ledger lock, so concurrent
// RecordUsage calls cannot lose an increment.
type Ledger struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	limits   map[domain.Plan]domain.PlanLimits
	repo     store.Repository

	now func() time.Time
}

// NewLedger creates a ledger with the default quota table. The
// repository is optional; pass nil for a purely in-memory ledger.
func NewLedger(repo store.Repository) *Ledger {
	return NewLedgerWithLimits(repo, DefaultPlanLimits)
}

// NewLedgerWithLimits creates a ledger with a custom quota table.
func NewLedgerWithLimits(repo store.Repository, limits map[domain.Plan]domain.PlanLimits) *Ledger {
	return &Ledger{
		sessions: make(map[string]*domain.Session),
		limits:   limits,
		repo:     repo,
		now:      time.Now,
	}
}

// Load restores persisted sessions into memory. Call once at startup,
// before the ledger is shared with request handlers.
func (l *Ledger) Load(ctx context.Context) error {
	if l.repo == nil {
		return nil
	}
	sessions, err := l.repo.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, sess := range sessions {
		sess.DeriveAIEnabled(l.planLimits(sess.Plan))
		l.sessions[sess.SessionID] = sess
	}
	return nil
}

// Limits returns the quota ceilings for a plan.
func (l *Ledger) Limits(plan domain.Plan) domain.PlanLimits {
	return l.planLimits(plan)
}

func (l *Ledger) planLimits(plan domain.Plan) domain.PlanLimits {
	if limits, ok := l.limits[plan]; ok {
		return limits
	}
	return l.limits[domain.PlanFree]
}

// CreateSession initializes a session with zeroed counters. AI access
// starts disabled until the user opts in. An unknown plan falls back
// to free.
func (l *Ledger) CreateSession(ctx context.Context, sessionID string, plan domain.Plan) domain.Session {
	if !plan.Valid() {
		plan = domain.PlanFree
	}

	now := l.now()
	sess := &domain.Session{
		SessionID:  sessionID,
		Plan:       plan,
		CreatedAt:  now,
		LastUsedAt: now,
	}

	l.mu.Lock()
	l.sessions[sessionID] = sess
	snapshot := *sess
	l.mu.Unlock()

	l.persist(ctx, &snapshot)
	return snapshot
}

// EnsureSession returns the existing session or creates one lazily.
func (l *Ledger) EnsureSession(ctx context.Context, sessionID string, plan domain.Plan) domain.Session {
	l.mu.RLock()
	sess, ok := l.sessions[sessionID]
	if ok {
		snapshot := *sess
		l.mu.RUnlock()
		return snapshot
	}
	l.mu.RUnlock()

	return l.CreateSession(ctx, sessionID, plan)
}

// Session returns a snapshot of the session, if known.
func (l *Ledger) Session(sessionID string) (domain.Session, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sess, ok := l.sessions[sessionID]
	if !ok {
		return domain.Session{}, false
	}
	return *sess, true
}

// OptIn records consent and re-derives the AI gate: opting in enables
// AI only if quota is not already exhausted. Returns false if the
// session is unknown.
func (l *Ledger) OptIn(ctx context.Context, sessionID string) bool {
	return l.setOptIn(ctx, sessionID, true)
}

// OptOut withdraws consent and forces the AI gate off regardless of
// remaining quota. Returns false if the session is unknown.
func (l *Ledger) OptOut(ctx context.Context, sessionID string) bool {
	return l.setOptIn(ctx, sessionID, false)
}

func (l *Ledger) setOptIn(ctx context.Context, sessionID string, optedIn bool) bool {
	l.mu.Lock()
	sess, ok := l.sessions[sessionID]
	if !ok {
		l.mu.Unlock()
		return false
	}
	sess.UserOptedIn = optedIn
	sess.LastUsedAt = l.now()
	sess.DeriveAIEnabled(l.planLimits(sess.Plan))
	snapshot := *sess
	l.mu.Unlock()

	l.persist(ctx, &snapshot)
	return true
}

// CanUse reports whether the session may invoke an AI advisor. If a
// quota ceiling has been reached, the AI gate is flipped off here so
// subsequent reads are consistent without a background sweep.
func (l *Ledger) CanUse(ctx context.Context, sessionID string) Decision {
	l.mu.Lock()
	sess, ok := l.sessions[sessionID]
	if !ok {
		l.mu.Unlock()
		return Decision{Allowed: false, Reason: "Session not found"}
	}

	limits := l.planLimits(sess.Plan)
	var reason string
	switch {
	case !sess.UserOptedIn:
		reason = "User has not opted in to AI"
	case sess.TokensUsed >= limits.MaxTokens:
		reason = fmt.Sprintf("Token limit exceeded (%d)", limits.MaxTokens)
	case sess.AICallsCount >= limits.MaxCalls:
		reason = fmt.Sprintf("Call limit exceeded (%d)", limits.MaxCalls)
	}

	deactivated := false
	if reason != "" && sess.IsAIEnabled {
		// Lazy deactivation on a newly exceeded limit.
		sess.IsAIEnabled = false
		deactivated = true
	}
	snapshot := *sess
	l.mu.Unlock()

	if deactivated {
		l.persist(ctx, &snapshot)
	}

	stats := l.statsFor(&snapshot, limits)
	return Decision{Allowed: reason == "", Reason: reason, Usage: &stats}
}

// RecordUsage charges tokens and one call against the session and
// re-derives the AI gate. Returns false if the session is unknown;
// the caller must create a session first.
func (l *Ledger) RecordUsage(ctx context.Context, sessionID string, tokensUsed int) bool {
	l.mu.Lock()
	sess, ok := l.sessions[sessionID]
	if !ok {
		l.mu.Unlock()
		return false
	}

	sess.TokensUsed += tokensUsed
	sess.AICallsCount++
	sess.LastUsedAt = l.now()
	sess.DeriveAIEnabled(l.planLimits(sess.Plan))
	snapshot := *sess
	l.mu.Unlock()

	l.persist(ctx, &snapshot)
	return true
}

// UsageStats returns derived quota projections for the session, or nil
// if the session is unknown. Never mutates.
func (l *Ledger) UsageStats(sessionID string) *domain.UsageStats {
	l.mu.RLock()
	sess, ok := l.sessions[sessionID]
	if !ok {
		l.mu.RUnlock()
		return nil
	}
	snapshot := *sess
	l.mu.RUnlock()

	stats := l.statsFor(&snapshot, l.planLimits(snapshot.Plan))
	return &stats
}

func (l *Ledger) statsFor(sess *domain.Session, limits domain.PlanLimits) domain.UsageStats {
	return domain.UsageStats{
		SessionID:            sess.SessionID,
		Plan:                 sess.Plan,
		TokensUsed:           sess.TokensUsed,
		TokensRemaining:      max(0, limits.MaxTokens-sess.TokensUsed),
		TokensLimit:          limits.MaxTokens,
		CallsUsed:            sess.AICallsCount,
		CallsRemaining:       max(0, limits.MaxCalls-sess.AICallsCount),
		CallsLimit:           limits.MaxCalls,
		IsAIEnabled:          sess.IsAIEnabled,
		UserOptedIn:          sess.UserOptedIn,
		TokenUsagePercentage: usagePercent(sess.TokensUsed, limits.MaxTokens),
		CallUsagePercentage:  usagePercent(sess.AICallsCount, limits.MaxCalls),
		CreatedAt:            sess.CreatedAt,
		LastUsedAt:           sess.LastUsedAt,
	}
}

// usagePercent is capped at 100. A non-positive ceiling allows nothing,
// so it reads as fully consumed rather than dividing by zero.
func usagePercent(used, limit int) float64 {
	if limit <= 0 {
		return 100
	}
	return min(100, float64(used)/float64(limit)*100)
}

// ReapIdle removes sessions unused for longer than maxAge and returns
// the count removed. Sessions are never otherwise destroyed.
func (l *Ledger) ReapIdle(ctx context.Context, maxAge time.Duration) int {
	cutoff := l.now().Add(-maxAge)

	l.mu.Lock()
	var reaped []string
	for id, sess := range l.sessions {
		if sess.IdleSince(cutoff) {
			delete(l.sessions, id)
			reaped = append(reaped, id)
		}
	}
	l.mu.Unlock()

	for _, id := range reaped {
		l.delete(ctx, id)
	}
	return len(reaped)
}

// persist writes a session through to the repository. Failures are
// logged, not returned: memory is the source of truth.
func (l *Ledger) persist(ctx context.Context, sess *domain.Session) {
	if l.repo == nil {
		return
	}
	err := store.WithRetry(ctx, func() error {
		return l.repo.UpsertSession(ctx, sess)
	})
	if err != nil {
		slog.Warn("Failed to persist session", "session_id", sess.SessionID, "error", err)
	}
}

func (l *Ledger) delete(ctx context.Context, sessionID string) {
	if l.repo == nil {
		return
	}
	err := store.WithRetry(ctx, func() error {
		return l.repo.DeleteSession(ctx, sessionID)
	})
	if err != nil {
		slog.Warn("Failed to delete persisted session", "session_id", sessionID, "error", err)
	}
}
