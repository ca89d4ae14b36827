package explain

import "github.com/abhisek/tutoria/internal/llm"

// Schema is the structured output every explanation must satisfy.
var Schema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Why the correct answer to a multiple choice question is correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "2-3 sentences explaining why the correct answer is right",
			},
			"tip": map[string]any{
				"type":        "string",
				"description": "One short study tip for the skill, or an empty string",
			},
		},
		"required":             []any{"explanation", "tip"},
		"additionalProperties": false,
	},
}
