// Package sandbox composes the usage ledger, mission store, and
// progression engine into the operations the HTTP layer invokes.
package sandbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lucidra/sandbox-server/internal/catalog"
	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/events"
	"github.com/lucidra/sandbox-server/internal/mission"
	"github.com/lucidra/sandbox-server/internal/progression"
	"github.com/lucidra/sandbox-server/internal/tokens"
	"github.com/lucidra/sandbox-server/internal/usage"
)

// QuotaGate is the slice of the usage ledger the facade depends on:
// the pre-flight check, the charge, and the stats projection.
type QuotaGate interface {
	CanUse(ctx context.Context, sessionID string) usage.Decision
	RecordUsage(ctx context.Context, sessionID string, tokensUsed int) bool
	UsageStats(sessionID string) *domain.UsageStats
}

// QuotaError carries the denial reason and a usage snapshot alongside
// the quota-exceeded sentinel.
type QuotaError struct {
	Reason string
	Usage  *domain.UsageStats
}

func (e *QuotaError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, domain.ErrQuotaExceeded) match.
func (e *QuotaError) Is(target error) bool {
	return target == domain.ErrQuotaExceeded
}

// IterationResult is the combined outcome of a submitted iteration.
type IterationResult struct {
	Iteration domain.SubtaskIteration `json:"iteration"`
	Subtask   domain.WorkflowSubtask  `json:"subtask"`
	XPAwarded int                     `json:"xpAwarded"`
	NewBadges []domain.Badge          `json:"newBadges"`
	Progress  *domain.UserProgress    `json:"progress"`
	Usage     *domain.UsageStats      `json:"usage"`
}

// Dashboard aggregates everything the sandbox home screen shows.
type Dashboard struct {
	Progress        *domain.UserProgress      `json:"progress"`
	Missions        []*domain.WorkflowMission `json:"missions"`
	Advisors        []domain.AIAdvisor        `json:"advisors"`
	AvailableBadges []domain.Badge            `json:"availableBadges"`
}

// Facade is the single entry point for sandbox operations. Session ids
// double as user ids: a mission belongs to the session that created it.
type Facade struct {
	ledger    QuotaGate
	missions  *mission.Store
	engine    *progression.Engine
	estimator *tokens.Estimator
	hub       *events.Hub
}

// New creates a facade. The hub is optional; pass nil when no event
// stream is wired.
func New(ledger QuotaGate, missions *mission.Store, engine *progression.Engine, estimator *tokens.Estimator, hub *events.Hub) *Facade {
	return &Facade{
		ledger:    ledger,
		missions:  missions,
		engine:    engine,
		estimator: estimator,
		hub:       hub,
	}
}

// CreateMission creates a mission owned by the caller and registers it
// as an active workflow.
func (f *Facade) CreateMission(ctx context.Context, userID, title, description, challenge, category string) *domain.WorkflowMission {
	m := f.missions.CreateMission(ctx, userID, title, description, challenge, category)
	f.engine.ActivateWorkflow(ctx, userID, m.ID)
	return m
}

// CreateMissionFromTemplate instantiates a catalog template as a new
// mission with its prebuilt subtasks.
func (f *Facade) CreateMissionFromTemplate(ctx context.Context, userID, templateID string) (*domain.WorkflowMission, error) {
	tpl := catalog.Template(templateID)
	if tpl == nil {
		return nil, fmt.Errorf("template %s: %w", templateID, domain.ErrNotFound)
	}

	m := f.missions.CreateMission(ctx, userID, tpl.Name, tpl.Description, tpl.Description, tpl.Category)
	for _, seed := range tpl.PrebuiltSubtasks {
		if _, err := f.missions.AddSubtask(ctx, m.ID, seed); err != nil {
			return nil, err
		}
	}
	f.engine.ActivateWorkflow(ctx, userID, m.ID)

	return f.missions.GetMission(m.ID), nil
}

// AddSubtask appends a subtask to a mission owned by the caller.
func (f *Facade) AddSubtask(ctx context.Context, userID, missionID string, seed domain.SubtaskSeed) (domain.WorkflowSubtask, error) {
	if err := f.checkOwnership(userID, missionID); err != nil {
		return domain.WorkflowSubtask{}, err
	}
	return f.missions.AddSubtask(ctx, missionID, seed)
}

// AssignAdvisor records an advisor reference on a subtask of a mission
// owned by the caller. Advisor existence is validated here, at the
// boundary of the catalog, not inside the mission store.
func (f *Facade) AssignAdvisor(ctx context.Context, userID, missionID, subtaskID, advisorID string) error {
	if catalog.Advisor(advisorID) == nil {
		return fmt.Errorf("advisor %s: %w", advisorID, domain.ErrNotFound)
	}
	if err := f.checkOwnership(userID, missionID); err != nil {
		return err
	}
	return f.missions.AssignAdvisor(ctx, missionID, subtaskID, advisorID)
}

// SubmitIteration records an AI-assisted round against a subtask:
// quota check, mission mutation, usage charge, progression update, in
// that order. A denied attempt never consumes quota or touches the
// mission.
func (f *Facade) SubmitIteration(ctx context.Context, sessionID, missionID, subtaskID, promptUsed, advisorResponse, userAnnotation string) (*IterationResult, error) {
	decision := f.ledger.CanUse(ctx, sessionID)
	if !decision.Allowed {
		return nil, &QuotaError{Reason: decision.Reason, Usage: decision.Usage}
	}

	if err := f.checkOwnership(sessionID, missionID); err != nil {
		return nil, err
	}

	it, err := f.missions.AddIteration(ctx, missionID, subtaskID, promptUsed, advisorResponse, userAnnotation)
	if err != nil {
		return nil, err
	}

	// Usage is charged only on a successfully recorded iteration. The
	// session may have been reaped between the check and the charge;
	// that is not fatal to the submission.
	tokensUsed := f.estimator.Count(promptUsed) + f.estimator.Count(advisorResponse)
	if !f.ledger.RecordUsage(ctx, sessionID, tokensUsed) {
		slog.Warn("Session vanished before usage charge",
			"session_id", sessionID,
			"mission_id", missionID,
			"tokens", tokensUsed)
	}

	m := f.missions.GetMission(missionID)
	progress, newBadges := f.engine.UpdateUserProgress(ctx, m.UserID, it.XPAwarded)

	f.publish(events.Event{
		Type:      events.TypeXPAwarded,
		UserID:    m.UserID,
		MissionID: missionID,
		SubtaskID: subtaskID,
		XPAwarded: it.XPAwarded,
		TotalXP:   progress.TotalXP,
		Level:     progress.Level,
	})
	for _, badge := range newBadges {
		f.publish(events.Event{
			Type:    events.TypeBadgeEarned,
			UserID:  m.UserID,
			BadgeID: badge.ID,
			TotalXP: progress.TotalXP,
			Level:   progress.Level,
		})
	}

	st := m.Subtask(subtaskID)
	return &IterationResult{
		Iteration: it,
		Subtask:   st.Clone(),
		XPAwarded: it.XPAwarded,
		NewBadges: newBadges,
		Progress:  progress,
		Usage:     f.ledger.UsageStats(sessionID),
	}, nil
}

// SetSubtaskStatus applies an explicit subtask transition on a mission
// owned by the caller. When the transition completes the whole
// mission, the mission moves to the user's completed set.
func (f *Facade) SetSubtaskStatus(ctx context.Context, userID, missionID, subtaskID string, status domain.SubtaskStatus) (*domain.WorkflowMission, error) {
	if err := f.checkOwnership(userID, missionID); err != nil {
		return nil, err
	}

	m, err := f.missions.SetSubtaskStatus(ctx, missionID, subtaskID, status)
	if err != nil {
		return nil, err
	}

	if m.CompletionStatus == domain.MissionCompleted {
		f.engine.CompleteMission(ctx, userID, missionID)
		f.publish(events.Event{
			Type:      events.TypeMissionCompleted,
			UserID:    userID,
			MissionID: missionID,
		})
	}
	return m, nil
}

// GetMission returns a mission visible to the caller.
func (f *Facade) GetMission(missionID string) (*domain.WorkflowMission, error) {
	m := f.missions.GetMission(missionID)
	if m == nil {
		return nil, fmt.Errorf("mission %s: %w", missionID, domain.ErrNotFound)
	}
	return m, nil
}

// GetUserMissions returns the caller's missions in creation order.
func (f *Facade) GetUserMissions(userID string) []*domain.WorkflowMission {
	return f.missions.GetUserMissions(userID)
}

// GetUserProgress returns the caller's progress, initializing an empty
// record on first access.
func (f *Facade) GetUserProgress(ctx context.Context, userID string) *domain.UserProgress {
	return f.engine.GetUserProgress(ctx, userID)
}

// GetDashboard aggregates progress, missions, and the static catalogs.
func (f *Facade) GetDashboard(ctx context.Context, userID string) *Dashboard {
	return &Dashboard{
		Progress:        f.engine.GetUserProgress(ctx, userID),
		Missions:        f.missions.GetUserMissions(userID),
		Advisors:        catalog.Advisors(),
		AvailableBadges: catalog.Badges(),
	}
}

// checkOwnership enforces that the mission belongs to the caller.
func (f *Facade) checkOwnership(userID, missionID string) error {
	m := f.missions.GetMission(missionID)
	if m == nil {
		return fmt.Errorf("mission %s: %w", missionID, domain.ErrNotFound)
	}
	if m.UserID != userID {
		return fmt.Errorf("mission %s is owned by another user: %w", missionID, domain.ErrInvalidState)
	}
	return nil
}

func (f *Facade) publish(ev events.Event) {
	if f.hub == nil {
		return
	}
	f.hub.Publish(ev)
}
