package catalog

import (
	"github.com/lucidra/sandbox-server/internal/domain"
)

var availableBadges = []domain.Badge{
	{
		ID:          "prompt_conductor",
		Name:        "Prompt Conductor",
		Description: "Orchestrated 10 multi-agent workflows successfully",
		Icon:        "🎼",
		XPRequired:  500,
		Category:    domain.BadgeMastery,
	},
	{
		ID:          "api_alchemist",
		Name:        "API Alchemist",
		Description: "Transformed raw AI responses into strategic gold",
		Icon:        "⚗️",
		XPRequired:  300,
		Category:    domain.BadgeSynthesis,
	},
	{
		ID:          "task_decomposer",
		Name:        "Task Decomposer",
		Description: "Broke down complex challenges into elegant subtasks",
		Icon:        "🧩",
		XPRequired:  200,
		Category:    domain.BadgeDecomposition,
	},
	{
		ID:          "iteration_master",
		Name:        "Iteration Master",
		Description: "Perfected prompts through 50+ iterations",
		Icon:        "🔄",
		XPRequired:  750,
		Category:    domain.BadgeIteration,
	},
	{
		ID:          "synthesis_sage",
		Name:        "Synthesis Sage",
		Description: "Combined insights from multiple AIs into coherent strategies",
		Icon:        "🧙‍♂️",
		XPRequired:  400,
		Category:    domain.BadgeSynthesis,
	},
}

// Badges returns the badge catalog.
func Badges() []domain.Badge {
	return availableBadges
}

// BadgeByID looks up a badge by id. Returns nil if unknown.
func BadgeByID(id string) *domain.Badge {
	for i := range availableBadges {
		if availableBadges[i].ID == id {
			return &availableBadges[i]
		}
	}
	return nil
}
