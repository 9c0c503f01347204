package diagnosis

import "github.com/abhisek/mathdaily/internal/llm"

// AnalysisSchema defines the JSON schema for wrong-answer analysis responses.
var AnalysisSchema = &llm.Schema{
	Name:        "error-analysis",
	Description: "Cause of a student's wrong answer with one sentence of advice",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"error_type": map[string]any{
				"type":        "string",
				"enum":        kindValues(),
				"description": "The error category from the list provided",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "How the student most likely reached the wrong answer",
			},
			"advice": map[string]any{
				"type":        "string",
				"description": "One sentence of advice addressed to the student",
			},
			"severity": map[string]any{
				"type":        "integer",
				"enum":        []any{1, 2, 3, 4, 5},
				"description": "1 (trivial slip) to 5 (fundamental gap)",
			},
		},
		"required":             []any{"error_type", "reasoning", "advice", "severity"},
		"additionalProperties": false,
	},
}
