// Package catalog holds the static reference data the sandbox core
// links against: AI advisors, badges, and mission templates. Entries
// are read-only; missions and progress records reference them by id.
package catalog

import (
	"github.com/lucidra/sandbox-server/internal/domain"
)

var defaultAdvisors = []domain.AIAdvisor{
	{
		ID:           "claude",
		Name:         "Claude",
		Type:         "claude",
		Description:  "Strategic analysis and comprehensive reasoning",
		Strengths:    []string{"Complex reasoning", "Strategic thinking", "Code analysis", "Writing"},
		CostPerToken: 0.0015,
		Availability: "paid",
		Icon:         "🧠",
		Color:        "#FF6B6B",
	},
	{
		ID:           "gemini",
		Name:         "Gemini",
		Type:         "gemini",
		Description:  "Multimodal analysis and creative problem-solving",
		Strengths:    []string{"Visual analysis", "Creative ideation", "Research", "Multimodal tasks"},
		CostPerToken: 0.001,
		Availability: "free",
		Icon:         "💎",
		Color:        "#4285F4",
	},
	{
		ID:           "copilot",
		Name:         "GitHub Copilot",
		Type:         "copilot",
		Description:  "Code generation and development assistance",
		Strengths:    []string{"Code completion", "Debugging", "Documentation", "Testing"},
		CostPerToken: 0.002,
		Availability: "paid",
		Icon:         "🚀",
		Color:        "#24292E",
	},
	{
		ID:           "deepseek",
		Name:         "DeepSeek",
		Type:         "deepseek",
		Description:  "Advanced reasoning and technical problem-solving",
		Strengths:    []string{"Mathematical reasoning", "Technical analysis", "System design", "Optimization"},
		CostPerToken: 0.0005,
		Availability: "free",
		Icon:         "🔍",
		Color:        "#1FE0C4",
	},
	{
		ID:           "gpt4",
		Name:         "GPT-4",
		Type:         "gpt4",
		Description:  "General-purpose AI with broad knowledge",
		Strengths:    []string{"General knowledge", "Writing", "Analysis", "Summarization"},
		CostPerToken: 0.003,
		Availability: "paid",
		Icon:         "🌟",
		Color:        "#00A67E",
	},
}

// Advisors returns the advisor catalog.
func Advisors() []domain.AIAdvisor {
	return defaultAdvisors
}

// Advisor looks up an advisor by id. Returns nil if unknown.
func Advisor(id string) *domain.AIAdvisor {
	for i := range defaultAdvisors {
		if defaultAdvisors[i].ID == id {
			return &defaultAdvisors[i]
		}
	}
	return nil
}
