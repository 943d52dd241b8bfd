package content

import "github.com/pathwise/tutorengine/internal/llm"

// QuestionSchema defines the JSON shape for question generation.
var QuestionSchema = &llm.Schema{
	Name:        "practice-question",
	Description: "A single practice question with four options and a worked explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":        "string",
				"description": "The question prompt shown to the student, in plain ASCII text",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    4,
				"maxItems":    4,
				"description": "Exactly 4 answer options. Distractors should reflect common mistakes.",
			},
			"correct_index": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     3,
				"description": "Index of the correct option",
			},
			"hint": map[string]any{
				"type":        "string",
				"description": "A short scaffolding hint. Empty when hints are disallowed.",
			},
			"difficulty": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "Self-assessed difficulty from 1 (easy) to 5 (hard)",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Step-by-step worked solution, age-appropriate for a child",
			},
		},
		"required":             []any{"question_text", "options", "correct_index", "hint", "difficulty", "explanation"},
		"additionalProperties": false,
	},
}

// ExplanationSchema defines the JSON shape for teaching explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "concept-explanation",
	Description: "A teaching walkthrough of one concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "One-paragraph plain-language introduction to the concept",
			},
			"steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    2,
				"maxItems":    6,
				"description": "Ordered teaching points with small worked examples",
			},
		},
		"required":             []any{"summary", "steps"},
		"additionalProperties": false,
	},
}
