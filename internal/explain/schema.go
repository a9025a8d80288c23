package explain

import "github.com/abhisek/studyhall/internal/llm"

// ExplanationSchema defines the JSON shape of a generated explanation.
var ExplanationSchema = &llm.Schema{
	Name:        "question-explanation",
	Description: "A short explanation of why the answer to an exam question is correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "One or two sentences stating the key idea behind the answer",
			},
			"steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Ordered reasoning steps that lead to the answer (1-6 steps)",
			},
		},
		"required":             []any{"summary", "steps"},
		"additionalProperties": false,
	},
}
