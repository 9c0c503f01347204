package problemgen

import "github.com/abhisek/mathdaily/internal/llm"

// WorksheetSchema defines the JSON schema for one chunk of worksheet
// problems. Item-level rules (option count, answer membership) are left
// to the validators so that one bad item does not discard its chunk.
var WorksheetSchema = &llm.Schema{
	Name:        "worksheet-batch",
	Description: "A batch of multiple-choice math problems, one per requested slot",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problems": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"slot": map[string]any{
							"type":        "integer",
							"description": "The slot number from the request this problem answers",
						},
						"question": map[string]any{
							"type":        "string",
							"description": "The problem statement shown to the student",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 distinct choices: one correct answer and three plausible distractors",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The text of the correct option, copied exactly",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Step-by-step worked solution",
						},
						"svg": map[string]any{
							"type":        "string",
							"description": `Inline <svg viewBox="0 0 300 250"> figure for geometry or graph problems, "" otherwise`,
						},
					},
					"required":             []any{"slot", "question", "options", "answer", "explanation", "svg"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"problems"},
		"additionalProperties": false,
	},
}
