package domain

import (
	"time"
)

// Difficulty grades a mission or template.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// CompletionStatus is the derived mission-level status.
type CompletionStatus string

const (
	MissionNotStarted CompletionStatus = "not_started"
	MissionInProgress CompletionStatus = "in_progress"
	MissionCompleted  CompletionStatus = "completed"
)

// SubtaskStatus is the per-subtask workflow status. Any status is
// reachable from any other; the domain is human-judged creative work,
// not a strict pipeline.
type SubtaskStatus string

const (
	SubtaskPending       SubtaskStatus = "pending"
	SubtaskInProgress    SubtaskStatus = "in_progress"
	SubtaskNeedsRevision SubtaskStatus = "needs_revision"
	SubtaskCompleted     SubtaskStatus = "completed"
)

// Valid reports whether the status is one of the known subtask states.
func (s SubtaskStatus) Valid() bool {
	switch s {
	case SubtaskPending, SubtaskInProgress, SubtaskNeedsRevision, SubtaskCompleted:
		return true
	}
	return false
}

// SubtaskIteration is one recorded prompt/response round against a
// subtask. Iterations are append-only; xpAwarded is computed once at
// creation and immutable thereafter.
type SubtaskIteration struct {
	ID               string    `json:"id"`
	IterationNumber  int       `json:"iterationNumber"`
	PromptUsed       string    `json:"promptUsed"`
	AdvisorResponse  string    `json:"advisorResponse"`
	UserAnnotation   string    `json:"userAnnotation,omitempty"`
	ImprovementNotes string    `json:"improvementNotes,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	XPAwarded        int       `json:"xpAwarded"`
}

// WorkflowSubtask is one decomposed unit of a mission, iterated on via
// prompt/response rounds. AssignedAdvisor is a weak reference into the
// advisor catalog; the subtask never owns the advisor.
type WorkflowSubtask struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	AssignedAdvisor string             `json:"assignedAdvisor,omitempty"`
	PromptTemplate  string             `json:"promptTemplate,omitempty"`
	Constraints     []string           `json:"constraints,omitempty"`
	ExpectedFormat  string             `json:"expectedFormat,omitempty"`
	Status          SubtaskStatus      `json:"status"`
	Iterations      []SubtaskIteration `json:"iterations"`
	XPEarned        int                `json:"xpEarned"`
}

// RecomputeXP re-derives xpEarned as the sum of all iteration awards.
func (st *WorkflowSubtask) RecomputeXP() {
	total := 0
	for _, it := range st.Iterations {
		total += it.XPAwarded
	}
	st.XPEarned = total
}

// Clone returns a deep copy of the subtask.
func (st *WorkflowSubtask) Clone() WorkflowSubtask {
	out := *st
	out.Constraints = append([]string(nil), st.Constraints...)
	out.Iterations = append([]SubtaskIteration(nil), st.Iterations...)
	return out
}

// WorkflowMission is a user-created task decomposed into ordered
// subtasks. totalXP and completionStatus are derived and recomputed on
// every mutation, never trusted from external input.
type WorkflowMission struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Challenge        string            `json:"challenge"`
	Difficulty       Difficulty        `json:"difficulty"`
	Category         string            `json:"category"`
	Subtasks         []WorkflowSubtask `json:"subtasks"`
	TotalXP          int               `json:"totalXP"`
	CompletionStatus CompletionStatus  `json:"completionStatus"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	UserID           string            `json:"userId"`
}

// Recompute re-derives totalXP and completionStatus from the subtasks.
// A mission is completed iff every subtask is completed, not started
// iff every subtask is pending, otherwise in progress. A mission with
// no subtasks is not started.
func (m *WorkflowMission) Recompute() {
	total := 0
	allCompleted := len(m.Subtasks) > 0
	allPending := true
	for i := range m.Subtasks {
		st := &m.Subtasks[i]
		total += st.XPEarned
		if st.Status != SubtaskCompleted {
			allCompleted = false
		}
		if st.Status != SubtaskPending {
			allPending = false
		}
	}
	m.TotalXP = total

	switch {
	case allCompleted:
		m.CompletionStatus = MissionCompleted
	case allPending:
		m.CompletionStatus = MissionNotStarted
	default:
		m.CompletionStatus = MissionInProgress
	}
}

// Subtask returns a pointer to the subtask with the given id, or nil.
func (m *WorkflowMission) Subtask(subtaskID string) *WorkflowSubtask {
	for i := range m.Subtasks {
		if m.Subtasks[i].ID == subtaskID {
			return &m.Subtasks[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the mission.
func (m *WorkflowMission) Clone() *WorkflowMission {
	out := *m
	out.Subtasks = make([]WorkflowSubtask, len(m.Subtasks))
	for i := range m.Subtasks {
		out.Subtasks[i] = m.Subtasks[i].Clone()
	}
	return &out
}
