package catalog

import (
	"github.com/lucidra/sandbox-server/internal/domain"
)

var sandboxTemplates = []domain.SandboxTemplate{
	{
		ID:            "code_review_cycle",
		Name:          "Code Review Orchestration",
		Description:   "Multi-agent approach to comprehensive code review covering security, performance, and maintainability",
		Category:      "code_review",
		Difficulty:    domain.DifficultyIntermediate,
		EstimatedTime: "45 minutes",
		XPReward:      150,
		LearningObjectives: []string{
			"Learn to decompose code review into specialized areas",
			"Understand how different AIs excel at different review aspects",
			"Master the art of synthesizing technical feedback",
		},
		RecommendedAdvisors: []string{"claude", "copilot", "deepseek"},
		PrebuiltSubtasks: []domain.SubtaskSeed{
			{
				Title:           "Security Analysis",
				Description:     "Review code for potential security vulnerabilities and best practices",
				AssignedAdvisor: "claude",
				PromptTemplate:  "Analyze this code for security vulnerabilities: [CODE]. Focus on: authentication, input validation, data sanitization, and common security patterns.",
				Constraints:     []string{"Focus on OWASP Top 10", "Consider data privacy implications"},
				ExpectedFormat:  "Structured list with severity levels and remediation steps",
			},
			{
				Title:           "Performance Optimization",
				Description:     "Identify performance bottlenecks and optimization opportunities",
				AssignedAdvisor: "deepseek",
				PromptTemplate:  "Analyze this code for performance issues: [CODE]. Look for: algorithmic complexity, memory usage, database queries, and optimization opportunities.",
				Constraints:     []string{"Consider scalability", "Focus on measurable improvements"},
				ExpectedFormat:  "Performance analysis with specific metrics and recommendations",
			},
			{
				Title:           "Code Quality & Maintainability",
				Description:     "Assess code structure, readability, and maintainability",
				AssignedAdvisor: "copilot",
				PromptTemplate:  "Review this code for quality and maintainability: [CODE]. Evaluate: code structure, naming conventions, documentation, and adherence to best practices.",
				Constraints:     []string{"Follow language-specific conventions", "Consider team collaboration"},
				ExpectedFormat:  "Structured feedback with specific improvement suggestions",
			},
			{
				Title:           "Synthesis & Action Plan",
				Description:     "Combine all feedback into a coherent action plan",
				AssignedAdvisor: "claude",
				PromptTemplate:  "Based on these review findings: [SECURITY_ANALYSIS], [PERFORMANCE_ANALYSIS], [QUALITY_ANALYSIS], create a prioritized action plan.",
				Constraints:     []string{"Prioritize by impact and effort", "Consider team capacity"},
				ExpectedFormat:  "Prioritized action plan with timeline and resource requirements",
			},
		},
	},
	{
		ID:            "ux_copy_refinement",
		Name:          "UX Copy Refinement Pipeline",
		Description:   "Multi-perspective approach to perfecting user interface copy through strategic AI collaboration",
		Category:      "ux_copy",
		Difficulty:    domain.DifficultyBeginner,
		EstimatedTime: "30 minutes",
		XPReward:      100,
		LearningObjectives: []string{
			"Understand different aspects of UX copy evaluation",
			"Learn to iterate on copy using multiple AI perspectives",
			"Master the balance between clarity and brand voice",
		},
		RecommendedAdvisors: []string{"claude", "gemini", "gpt4"},
		PrebuiltSubtasks: []domain.SubtaskSeed{
			{
				Title:           "User Psychology Analysis",
				Description:     "Analyze copy from user psychology and behavioral perspective",
				AssignedAdvisor: "claude",
				PromptTemplate:  "Analyze this UX copy from a user psychology perspective: [COPY]. Consider: cognitive load, emotional response, user motivations, and decision-making triggers.",
				Constraints:     []string{"Focus on user journey context", "Consider accessibility"},
				ExpectedFormat:  "Psychological analysis with specific user impact predictions",
			},
			{
				Title:           "Brand Voice Alignment",
				Description:     "Ensure copy aligns with brand personality and voice guidelines",
				AssignedAdvisor: "gpt4",
				PromptTemplate:  "Evaluate this copy for brand voice consistency: [COPY]. Brand guidelines: [BRAND_VOICE]. Assess tone, personality, and message alignment.",
				Constraints:     []string{"Maintain brand authenticity", "Consider audience expectations"},
				ExpectedFormat:  "Brand alignment assessment with specific recommendations",
			},
			{
				Title:           "Clarity & Conversion Optimization",
				Description:     "Optimize copy for maximum clarity and conversion potential",
				AssignedAdvisor: "gemini",
				PromptTemplate:  "Optimize this copy for clarity and conversion: [COPY]. Focus on: readability, action-oriented language, and conversion psychology.",
				Constraints:     []string{"Maintain brevity", "Ensure mobile-friendly language"},
				ExpectedFormat:  "Optimized copy variations with A/B testing suggestions",
			},
			{
				Title:           "Final Copy Synthesis",
				Description:     "Synthesize all feedback into final, polished copy",
				AssignedAdvisor: "claude",
				PromptTemplate:  "Based on these analyses: [PSYCHOLOGY_ANALYSIS], [BRAND_ANALYSIS], [CONVERSION_ANALYSIS], create final optimized copy.",
				Constraints:     []string{"Balance all requirements", "Provide multiple options"},
				ExpectedFormat:  "Final copy options with rationale for each choice",
			},
		},
	},
	{
		ID:            "architecture_planning",
		Name:          "System Architecture Planning",
		Description:   "Comprehensive system design through multi-agent architectural analysis",
		Category:      "architecture",
		Difficulty:    domain.DifficultyAdvanced,
		EstimatedTime: "90 minutes",
		XPReward:      250,
		LearningObjectives: []string{
			"Learn systematic approach to architecture design",
			"Understand how to leverage different AI strengths for architecture",
			"Master the art of balancing technical requirements with business needs",
		},
		RecommendedAdvisors: []string{"deepseek", "claude", "copilot"},
		PrebuiltSubtasks: []domain.SubtaskSeed{
			{
				Title:           "Requirements Analysis",
				Description:     "Analyze and structure system requirements",
				AssignedAdvisor: "claude",
				PromptTemplate:  "Analyze these system requirements: [REQUIREMENTS]. Structure them into: functional requirements, non-functional requirements, constraints, and assumptions.",
				Constraints:     []string{"Consider scalability needs", "Identify potential conflicts"},
				ExpectedFormat:  "Structured requirements document with priority levels",
			},
			{
				Title:           "High-Level Architecture Design",
				Description:     "Design overall system architecture and component interaction",
				AssignedAdvisor: "deepseek",
				PromptTemplate:  "Design a high-level architecture for: [STRUCTURED_REQUIREMENTS]. Include: system components, data flow, integration points, and technology stack recommendations.",
				Constraints:     []string{"Consider maintainability", "Plan for future growth"},
				ExpectedFormat:  "Architecture diagram with component descriptions",
			},
			{
				Title:           "Implementation Strategy",
				Description:     "Plan implementation approach and development phases",
				AssignedAdvisor: "copilot",
				PromptTemplate:  "Based on this architecture: [ARCHITECTURE_DESIGN], create an implementation strategy including: development phases, technology choices, and team structure.",
				Constraints:     []string{"Consider available resources", "Plan for risk mitigation"},
				ExpectedFormat:  "Implementation roadmap with timelines and dependencies",
			},
			{
				Title:           "Architecture Review & Validation",
				Description:     "Review and validate the complete architecture plan",
				AssignedAdvisor: "claude",
				PromptTemplate:  "Review this complete architecture plan: [REQUIREMENTS] + [ARCHITECTURE] + [IMPLEMENTATION]. Validate against: scalability, maintainability, security, and business goals.",
				Constraints:     []string{"Identify potential risks", "Suggest improvements"},
				ExpectedFormat:  "Architecture validation report with recommendations",
			},
		},
	},
	{
		ID:            "brand_strategy_formation",
		Name:          "Brand Strategy Formation",
		Description:   "Multi-perspective brand strategy development through AI collaboration",
		Category:      "brand_strategy",
		Difficulty:    domain.DifficultyIntermediate,
		EstimatedTime: "60 minutes",
		XPReward:      180,
		LearningObjectives: []string{
			"Understand multi-faceted nature of brand strategy",
			"Learn to synthesize market research with creative vision",
			"Master the integration of strategic thinking with creative execution",
		},
		RecommendedAdvisors: []string{"claude", "gemini", "gpt4"},
		PrebuiltSubtasks: []domain.SubtaskSeed{
			{
				Title:           "Market Position Analysis",
				Description:     "Analyze market landscape and competitive positioning",
				AssignedAdvisor: "claude",
				PromptTemplate:  "Analyze the market position for: [BRAND_BRIEF]. Include: competitive landscape, market gaps, target audience analysis, and positioning opportunities.",
				Constraints:     []string{"Focus on differentiation", "Consider market trends"},
				ExpectedFormat:  "Market analysis with positioning recommendations",
			},
			{
				Title:           "Brand Identity Development",
				Description:     "Develop brand personality, values, and visual identity concepts",
				AssignedAdvisor: "gemini",
				PromptTemplate:  "Develop brand identity for: [BRAND_BRIEF] based on market analysis: [MARKET_ANALYSIS]. Include: brand personality, core values, visual identity concepts, and brand voice.",
				Constraints:     []string{"Ensure authenticity", "Consider cultural sensitivity"},
				ExpectedFormat:  "Comprehensive brand identity guide",
			},
			{
				Title:           "Brand Message Strategy",
				Description:     "Create strategic messaging framework and communication strategy",
				AssignedAdvisor: "gpt4",
				PromptTemplate:  "Create messaging strategy for: [BRAND_IDENTITY]. Develop: core message, value propositions, key messages for different audiences, and communication guidelines.",
				Constraints:     []string{"Maintain consistency", "Consider different channels"},
				ExpectedFormat:  "Messaging framework with audience-specific adaptations",
			},
			{
				Title:           "Brand Strategy Integration",
				Description:     "Integrate all elements into cohesive brand strategy",
				AssignedAdvisor: "claude",
				PromptTemplate:  "Integrate these brand elements: [MARKET_ANALYSIS] + [BRAND_IDENTITY] + [MESSAGING_STRATEGY] into a cohesive brand strategy with implementation roadmap.",
				Constraints:     []string{"Ensure strategic alignment", "Plan for measurement"},
				ExpectedFormat:  "Complete brand strategy with implementation plan",
			},
		},
	},
}

// Templates returns the full template catalog.
func Templates() []domain.SandboxTemplate {
	return sandboxTemplates
}

// Template looks up a template by id. Returns nil if unknown.
func Template(id string) *domain.SandboxTemplate {
	for i := range sandboxTemplates {
		if sandboxTemplates[i].ID == id {
			return &sandboxTemplates[i]
		}
	}
	return nil
}

// TemplatesByCategory returns templates matching the category.
func TemplatesByCategory(category string) []domain.SandboxTemplate {
	var out []domain.SandboxTemplate
	for _, t := range sandboxTemplates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// TemplatesByDifficulty returns templates matching the difficulty.
func TemplatesByDifficulty(difficulty domain.Difficulty) []domain.SandboxTemplate {
	var out []domain.SandboxTemplate
	for _, t := range sandboxTemplates {
		if t.Difficulty == difficulty {
			out = append(out, t)
		}
	}
	return out
}
