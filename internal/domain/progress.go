package domain

import (
	"time"
)

// EarnedBadge is a weak reference from a user's progress to a badge
// catalog entry, stamped at the moment eligibility was detected.
// Deleting a catalog entry never corrupts progress; the reference just
// becomes unresolvable for display.
type EarnedBadge struct {
	BadgeID  string    `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

// Streaks are externally-incremented counters; the core stores them
// but deriving them from wall-clock calendars is the caller's concern.
type Streaks struct {
	DailyPrompting   int `json:"dailyPrompting"`
	WeeklyCompletion int `json:"weeklyCompletion"`
}

// UserProgress aggregates a user's XP, level, badges, and mission
// bookkeeping. Level is derived from totalXP via a monotonic threshold
// table; badges are never removed once earned.
type UserProgress struct {
	UserID            string        `json:"userId"`
	TotalXP           int           `json:"totalXP"`
	Level             int           `json:"level"`
	Badges            []EarnedBadge `json:"badges"`
	CompletedMissions []string      `json:"completedMissions"`
	ActiveWorkflows   []string      `json:"activeWorkflows"`
	Streaks           Streaks       `json:"streaks"`
}

// HasBadge reports whether the badge is already held.
func (p *UserProgress) HasBadge(badgeID string) bool {
	for _, b := range p.Badges {
		if b.BadgeID == badgeID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the progress record.
func (p *UserProgress) Clone() *UserProgress {
	out := *p
	out.Badges = append([]EarnedBadge(nil), p.Badges...)
	out.CompletedMissions = append([]string(nil), p.CompletedMissions...)
	out.ActiveWorkflows = append([]string(nil), p.ActiveWorkflows...)
	return &out
}
