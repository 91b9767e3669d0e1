// Package mission owns the lifecycle of workflow missions, their
// subtasks, and iteration history.
package mission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/store"
)

// XPCalculator computes the XP award for one iteration. Implemented by
// the progression engine.
type XPCalculator interface {
	CalculateIterationXP(iterationNumber int, hasAnnotation bool) int
}

// Store is the in-memory mission table. Every mutating operation on a
// single mission runs entirely under the store lock, so two concurrent
// AddIteration calls on the same subtask cannot compute the same
// iteration number.
type Store struct {
	mu       sync.RWMutex
	missions map[string]*domain.WorkflowMission
	order    []string // creation order
	xp       XPCalculator
	repo     store.Repository

	now   func() time.Time
	newID func() string
}

// NewStore creates a mission store. The repository is optional; pass
// nil for a purely in-memory store.
func NewStore(repo store.Repository, xp XPCalculator) *Store {
	return &Store{
		missions: make(map[string]*domain.WorkflowMission),
		xp:       xp,
		repo:     repo,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Load restores persisted missions into memory. Call once at startup.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	missions, err := s.repo.ListMissions(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range missions {
		s.missions[m.ID] = m
		s.order = append(s.order, m.ID)
	}
	return nil
}

// CreateMission creates an empty mission for the user. An empty
// category defaults to custom.
func (s *Store) CreateMission(ctx context.Context, userID, title, description, challenge, category string) *domain.WorkflowMission {
	if category == "" {
		category = "custom"
	}

	now := s.now()
	m := &domain.WorkflowMission{
		ID:               s.newID(),
		Title:            title,
		Description:      description,
		Challenge:        challenge,
		Difficulty:       domain.DifficultyBeginner,
		Category:         category,
		Subtasks:         []domain.WorkflowSubtask{},
		CompletionStatus: domain.MissionNotStarted,
		CreatedAt:        now,
		UpdatedAt:        now,
		UserID:           userID,
	}

	s.mu.Lock()
	s.missions[m.ID] = m
	s.order = append(s.order, m.ID)
	snapshot := m.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot
}

// AddSubtask appends a subtask to the mission's ordered sequence.
// Insertion order is work order.
func (s *Store) AddSubtask(ctx context.Context, missionID string, seed domain.SubtaskSeed) (domain.WorkflowSubtask, error) {
	s.mu.Lock()
	m, ok := s.missions[missionID]
	if !ok {
		s.mu.Unlock()
		return domain.WorkflowSubtask{}, fmt.Errorf("mission %s: %w", missionID, domain.ErrNotFound)
	}

	st := domain.WorkflowSubtask{
		ID:              s.newID(),
		Title:           seed.Title,
		Description:     seed.Description,
		AssignedAdvisor: seed.AssignedAdvisor,
		PromptTemplate:  seed.PromptTemplate,
		Constraints:     append([]string(nil), seed.Constraints...),
		ExpectedFormat:  seed.ExpectedFormat,
		Status:          domain.SubtaskPending,
		Iterations:      []domain.SubtaskIteration{},
	}
	m.Subtasks = append(m.Subtasks, st)
	m.UpdatedAt = s.now()
	m.Recompute()
	snapshot := m.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return st.Clone(), nil
}

// AssignAdvisor records an advisor reference on a subtask. The store
// does not validate the advisor against the catalog; that is the
// boundary's concern.
func (s *Store) AssignAdvisor(ctx context.Context, missionID, subtaskID, advisorID string) error {
	s.mu.Lock()
	m, ok := s.missions[missionID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("mission %s: %w", missionID, domain.ErrNotFound)
	}
	st := m.Subtask(subtaskID)
	if st == nil {
		s.mu.Unlock()
		return fmt.Errorf("subtask %s: %w", subtaskID, domain.ErrNotFound)
	}

	st.AssignedAdvisor = advisorID
	m.UpdatedAt = s.now()
	snapshot := m.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// AddIteration appends a prompt/response round to a subtask. The
// iteration number is one past the existing count; the XP award is
// computed once here and immutable thereafter. A pending subtask moves
// to in progress.
func (s *Store) AddIteration(ctx context.Context, missionID, subtaskID, promptUsed, advisorResponse, userAnnotation string) (domain.SubtaskIteration, error) {
	hasAnnotation := strings.TrimSpace(userAnnotation) != ""

	s.mu.Lock()
	m, ok := s.missions[missionID]
	if !ok {
		s.mu.Unlock()
		return domain.SubtaskIteration{}, fmt.Errorf("mission %s: %w", missionID, domain.ErrNotFound)
	}
	st := m.Subtask(subtaskID)
	if st == nil {
		s.mu.Unlock()
		return domain.SubtaskIteration{}, fmt.Errorf("subtask %s: %w", subtaskID, domain.ErrNotFound)
	}

	number := len(st.Iterations) + 1
	it := domain.SubtaskIteration{
		ID:              s.newID(),
		IterationNumber: number,
		PromptUsed:      promptUsed,
		AdvisorResponse: advisorResponse,
		UserAnnotation:  userAnnotation,
		Timestamp:       s.now(),
		XPAwarded:       s.xp.CalculateIterationXP(number, hasAnnotation),
	}

	st.Iterations = append(st.Iterations, it)
	if st.Status == domain.SubtaskPending {
		st.Status = domain.SubtaskInProgress
	}
	st.RecomputeXP()
	m.UpdatedAt = s.now()
	m.Recompute()
	snapshot := m.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return it, nil
}

// SetSubtaskStatus applies an explicit status transition. Any status
// is reachable from any other. Returns the updated mission so callers
// can observe the recomputed completion status.
func (s *Store) SetSubtaskStatus(ctx context.Context, missionID, subtaskID string, status domain.SubtaskStatus) (*domain.WorkflowMission, error) {
	s.mu.Lock()
	m, ok := s.missions[missionID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("mission %s: %w", missionID, domain.ErrNotFound)
	}
	st := m.Subtask(subtaskID)
	if st == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("subtask %s: %w", subtaskID, domain.ErrNotFound)
	}

	st.Status = status
	m.UpdatedAt = s.now()
	m.Recompute()
	snapshot := m.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// GetMission returns a snapshot of the mission, or nil if unknown.
func (s *Store) GetMission(missionID string) *domain.WorkflowMission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.missions[missionID]
	if !ok {
		return nil
	}
	return m.Clone()
}

// GetUserMissions returns the user's missions in creation order.
func (s *Store) GetUserMissions(userID string) []*domain.WorkflowMission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.WorkflowMission
	for _, id := range s.order {
		if m := s.missions[id]; m != nil && m.UserID == userID {
			out = append(out, m.Clone())
		}
	}
	return out
}

func (s *Store) persist(ctx context.Context, m *domain.WorkflowMission) {
	if s.repo == nil {
		return
	}
	err := store.WithRetry(ctx, func() error {
		return s.repo.UpsertMission(ctx, m)
	})
	if err != nil {
		slog.Warn("Failed to persist mission", "mission_id", m.ID, "error", err)
	}
}
