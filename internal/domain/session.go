// Package domain contains core domain types for the advisor sandbox.
package domain

import (
	"time"
)

// Plan is a named usage tier defining quota ceilings.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
)

// Valid reports whether the plan is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPremium:
		return true
	}
	return false
}

// PlanLimits holds the quota ceilings for one plan. Exceeding either
// dimension disables the session; the two counters are independent
// hard ceilings.
type PlanLimits struct {
	MaxTokens int `json:"maxTokens"`
	MaxCalls  int `json:"maxCalls"`
}

// Session is an opaque, time-bounded usage-quota context for one
// user/browser interacting with AI advisors.
type Session struct {
	SessionID    string    `json:"sessionId"`
	Plan         Plan      `json:"plan"`
	TokensUsed   int       `json:"tokensUsed"`
	AICallsCount int       `json:"aiCallsCount"`
	IsAIEnabled  bool      `json:"isAiEnabled"`
	UserOptedIn  bool      `json:"userOptedIn"`
	CreatedAt    time.Time `json:"createdAt"`
	LastUsedAt   time.Time `json:"lastUsedAt"`
}

// WithinLimits reports whether both usage counters are strictly below
// the plan ceilings.
func (s *Session) WithinLimits(limits PlanLimits) bool {
	return s.TokensUsed < limits.MaxTokens && s.AICallsCount < limits.MaxCalls
}

// DeriveAIEnabled recomputes the isAiEnabled gate from consent and
// quota state. It is called on every usage event, never set once.
func (s *Session) DeriveAIEnabled(limits PlanLimits) {
	s.IsAIEnabled = s.UserOptedIn && s.WithinLimits(limits)
}

// IdleSince reports whether the session has been unused since before
// the cutoff.
func (s *Session) IdleSince(cutoff time.Time) bool {
	return s.LastUsedAt.Before(cutoff)
}

// UsageStats is a purely derived projection of a session's quota state.
type UsageStats struct {
	SessionID            string    `json:"sessionId"`
	Plan                 Plan      `json:"plan"`
	TokensUsed           int       `json:"tokensUsed"`
	TokensRemaining      int       `json:"tokensRemaining"`
	TokensLimit          int       `json:"tokensLimit"`
	CallsUsed            int       `json:"callsUsed"`
	CallsRemaining       int       `json:"callsRemaining"`
	CallsLimit           int       `json:"callsLimit"`
	IsAIEnabled          bool      `json:"isAiEnabled"`
	UserOptedIn          bool      `json:"userOptedIn"`
	TokenUsagePercentage float64   `json:"tokenUsagePercentage"`
	CallUsagePercentage  float64   `json:"callUsagePercentage"`
	CreatedAt            time.Time `json:"createdAt"`
	LastUsedAt           time.Time `json:"lastUsedAt"`
}
