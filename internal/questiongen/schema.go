package questiongen

import "github.com/vytor/studyrpg/internal/llm"

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// MaxQuestions bounds a single generation request.
const MaxQuestions = 50

// SetSchema is the JSON shape requested from the model.
var SetSchema = &llm.Schema{
	Name:        "question-set",
	Description: "A set of multiple-choice study questions drawn from the supplied material",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": MaxQuestions,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"question", "options", "answer", "explanation", "difficulty"},
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly four distinct answer options",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct option, copied exactly from options",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the answer is correct, in one or two sentences",
						},
						"difficulty": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"maximum":     5,
							"description": "1 is easiest, 5 is hardest",
						},
					},
				},
			},
		},
	},
}
