package coach

import "github.com/abhisek/skilltrack/internal/llm"

// AdviceSchema is the structured reply the coach asks for.
var AdviceSchema = &llm.Schema{
	Name:        "roadmap-advice",
	Description: "Next-step advice for a learner working through a skill roadmap",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentences on where the learner stands",
			},
			"nextSkill": map[string]any{
				"type":        "string",
				"description": "Exact name of the roadmap skill to work on next, or empty when the roadmap is complete",
			},
			"steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
				"maxItems":    5,
				"description": "Concrete actions for the coming week (5-15 words each)",
			},
		},
		"required":             []any{"summary", "nextSkill", "steps"},
		"additionalProperties": false,
	},
}
