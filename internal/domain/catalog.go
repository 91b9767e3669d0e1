package domain

// AIAdvisor is a read-only catalog entry describing one AI model the
// user can route a subtask to. The core only records advisor ids on
// subtasks; it never mutates the catalog.
type AIAdvisor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Strengths    []string `json:"strengths"`
	CostPerToken float64  `json:"costPerToken"`
	Availability string   `json:"availability"`
	Icon         string   `json:"icon"`
	Color        string   `json:"color"`
}

// BadgeCategory groups badges by the skill they reward.
type BadgeCategory string

const (
	BadgeDecomposition BadgeCategory = "decomposition"
	BadgeSynthesis     BadgeCategory = "synthesis"
	BadgeIteration     BadgeCategory = "iteration"
	BadgeMastery       BadgeCategory = "mastery"
)

// Badge is an immutable catalog entry. Users hold EarnedBadge
// references to these, never copies with mutated thresholds.
type Badge struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	XPRequired  int           `json:"xpRequired"`
	Category    BadgeCategory `json:"category"`
}

// SubtaskSeed is a prebuilt subtask definition inside a template,
// missing only the fields minted at creation time (id, iterations, xp).
type SubtaskSeed struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	AssignedAdvisor string   `json:"assignedAdvisor,omitempty"`
	PromptTemplate  string   `json:"promptTemplate,omitempty"`
	Constraints     []string `json:"constraints,omitempty"`
	ExpectedFormat  string   `json:"expectedFormat,omitempty"`
}

// SandboxTemplate is a read-only catalog entry describing a prebuilt
// mission a user can start from.
type SandboxTemplate struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	Category            string        `json:"category"`
	Difficulty          Difficulty    `json:"difficulty"`
	EstimatedTime       string        `json:"estimatedTime"`
	PrebuiltSubtasks    []SubtaskSeed `json:"prebuiltSubtasks"`
	RecommendedAdvisors []string      `json:"recommendedAdvisors"`
	LearningObjectives  []string      `json:"learningObjectives"`
	XPReward            int           `json:"xpReward"`
}
