// Package progression computes XP awards, levels, and badge
// eligibility from iteration history.
package progression

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/store"
)

// XP policy constants. The award for iteration n is non-increasing in
// n, and an annotated iteration always beats an unannotated one at the
// same n.
const (
	baseIterationXP = 25
	iterationDecay  = 5
	minIterationXP  = 10
	annotationBonus = 15
)

// levelThresholds maps cumulative XP to levels: level n requires at
// least levelThresholds[n-1] XP. Higher XP never lowers a level.
var levelThresholds = []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000}

// LevelForXP returns the level for a cumulative XP total.
func LevelForXP(totalXP int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if totalXP >= threshold {
			level = i + 1
		}
	}
	return level
}

// CalculateIterationXP returns the XP award for one iteration.
// Later iterations on the same subtask earn less, down to a floor; a
// user annotation earns a flat bonus on top (rewarding reflection, not
// just volume).
func CalculateIterationXP(iterationNumber int, hasAnnotation bool) int {
	xp := baseIterationXP - iterationDecay*(iterationNumber-1)
	if xp < minIterationXP {
		xp = minIterationXP
	}
	if hasAnnotation {
		xp += annotationBonus
	}
	return xp
}

// Engine owns the in-memory user progress table.
type Engine struct {
	mu       sync.RWMutex
	progress map[string]*domain.UserProgress
	badges   []domain.Badge
	repo     store.Repository

	now func() time.Time
}

// NewEngine creates an engine awarding from the given badge catalog.
// The repository is optional; pass nil for a purely in-memory engine.
func NewEngine(repo store.Repository, badges []domain.Badge) *Engine {
	return &Engine{
		progress: make(map[string]*domain.UserProgress),
		badges:   badges,
		repo:     repo,
		now:      time.Now,
	}
}

// Load restores persisted progress records into memory. Call once at
// startup.
func (e *Engine) Load(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	records, err := e.repo.ListProgress(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range records {
		p.Level = LevelForXP(p.TotalXP)
		e.progress[p.UserID] = p
	}
	return nil
}

// CalculateIterationXP implements the mission store's XP calculator.
func (e *Engine) CalculateIterationXP(iterationNumber int, hasAnnotation bool) int {
	return CalculateIterationXP(iterationNumber, hasAnnotation)
}

// GetUserProgress returns a snapshot of the user's progress, lazily
// initializing a zeroed record on first access. Every user id is
// implicitly a valid, if empty, user.
func (e *Engine) GetUserProgress(ctx context.Context, userID string) *domain.UserProgress {
	e.mu.Lock()
	p := e.getOrInit(userID)
	snapshot := p.Clone()
	e.mu.Unlock()

	return snapshot
}

// getOrInit must be called with the engine lock held.
func (e *Engine) getOrInit(userID string) *domain.UserProgress {
	if p, ok := e.progress[userID]; ok {
		return p
	}
	p := &domain.UserProgress{
		UserID: userID,
		Level:  LevelForXP(0),
	}
	e.progress[userID] = p
	return p
}

// UpdateUserProgress adds XP to the user's total, recomputes the
// level, and sweeps badge eligibility. Returns the updated progress
// and any newly earned badges.
func (e *Engine) UpdateUserProgress(ctx context.Context, userID string, xpGained int) (*domain.UserProgress, []domain.Badge) {
	e.mu.Lock()
	p := e.getOrInit(userID)
	p.TotalXP += xpGained
	p.Level = LevelForXP(p.TotalXP)
	earned := e.checkBadges(p)
	snapshot := p.Clone()
	e.mu.Unlock()

	e.persist(ctx, snapshot)
	return snapshot, earned
}

// CheckBadgeEligibility awards every catalog badge the progress record
// qualifies for but does not yet hold, stamping earnedAt at award
// time. Idempotent and monotonic: re-running never duplicates or
// revokes a badge. Safe to call from any path that changed totalXP.
func (e *Engine) CheckBadgeEligibility(progress *domain.UserProgress) []domain.Badge {
	return e.checkBadges(progress)
}

func (e *Engine) checkBadges(p *domain.UserProgress) []domain.Badge {
	var earned []domain.Badge
	for _, badge := range e.badges {
		if p.TotalXP >= badge.XPRequired && !p.HasBadge(badge.ID) {
			p.Badges = append(p.Badges, domain.EarnedBadge{
				BadgeID:  badge.ID,
				EarnedAt: e.now(),
			})
			earned = append(earned, badge)
		}
	}
	return earned
}

// ActivateWorkflow records a mission id in the user's active set.
func (e *Engine) ActivateWorkflow(ctx context.Context, userID, missionID string) {
	e.mu.Lock()
	p := e.getOrInit(userID)
	if !contains(p.ActiveWorkflows, missionID) {
		p.ActiveWorkflows = append(p.ActiveWorkflows, missionID)
	}
	snapshot := p.Clone()
	e.mu.Unlock()

	e.persist(ctx, snapshot)
}

// CompleteMission moves a mission id from the active set to the
// completed set. Idempotent.
func (e *Engine) CompleteMission(ctx context.Context, userID, missionID string) {
	e.mu.Lock()
	p := e.getOrInit(userID)
	p.ActiveWorkflows = remove(p.ActiveWorkflows, missionID)
	if !contains(p.CompletedMissions, missionID) {
		p.CompletedMissions = append(p.CompletedMissions, missionID)
	}
	snapshot := p.Clone()
	e.mu.Unlock()

	e.persist(ctx, snapshot)
}

func (e *Engine) persist(ctx context.Context, p *domain.UserProgress) {
	if e.repo == nil {
		return
	}
	err := store.WithRetry(ctx, func() error {
		return e.repo.UpsertProgress(ctx, p)
	})
	if err != nil {
		slog.Warn("Failed to persist user progress", "user_id", p.UserID, "error", err)
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
