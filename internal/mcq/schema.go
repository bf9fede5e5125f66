package mcq

import "github.com/abhisek/quizforge/internal/llm"

// QuestionSchema describes one object of the JSON-stream format. Parsed
// objects that fail it are still kept but counted as malformed.
var QuestionSchema = &llm.Schema{
	Name:        "mcq-question",
	Description: "A single multiple-choice question with four options",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"options": map[string]any{
				"oneOf": []any{
					map[string]any{
						"type":     "array",
						"minItems": 4,
						"maxItems": 4,
						"items":    map[string]any{"type": "string", "minLength": 1},
					},
					map[string]any{
						"type":                 "object",
						"required":             []any{"A", "B", "C", "D"},
						"additionalProperties": false,
						"properties": map[string]any{
							"A": map[string]any{"type": "string"},
							"B": map[string]any{"type": "string"},
							"C": map[string]any{"type": "string"},
							"D": map[string]any{"type": "string"},
						},
					},
				},
			},
			"correct_answer": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"degree": map[string]any{
				"type": "integer",
			},
		},
		"required": []any{"question", "options", "correct_answer"},
	},
}

// BatchSchema is the structured-output hint sent with JSON-format requests.
// It is written for strict backends: every object closed, every property
// required, no length keywords. The stream parser still reads the reply
// object by object, so a reply that ignores the hint loses nothing.
var BatchSchema = &llm.Schema{
	Name:        "mcq-batch",
	Description: "A batch of multiple-choice questions drawn from lecture notes",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": batchQuestion,
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

var batchQuestion = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{"type": "string"},
		"options": map[string]any{
			"type":        "array",
			"description": `Exactly four options, prefixed "A) " through "D) "`,
			"items":       map[string]any{"type": "string"},
		},
		"correct_answer": map[string]any{
			"type":        "string",
			"description": `The correct option with its label, e.g. "B) Paris"`,
		},
	},
	"required":             []any{"question", "options", "correct_answer"},
	"additionalProperties": false,
}
