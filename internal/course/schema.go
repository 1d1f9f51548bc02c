package course

import "github.com/abhisek/brightpath/internal/llm"

// OutlineSchema is the structured output requested from the model.
var OutlineSchema = &llm.Schema{
	Name:        "course-outline",
	Description: "A short course outline adapted to one learner",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Course title (3-8 words)",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "Two sentences a child can read explaining what the course covers",
			},
			"lessons": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": 12,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":     map[string]any{"type": "string"},
						"objective": map[string]any{"type": "string", "description": "What the learner can do afterwards"},
						"modality": map[string]any{
							"type": "string",
							"enum": []any{"visual", "reading", "handson", "listening"},
						},
						"difficulty": map[string]any{
							"type": "string",
							"enum": []any{"beginner", "intermediate", "advanced"},
						},
						"topic": map[string]any{"type": "string"},
					},
					"required":             []any{"title", "objective", "modality", "difficulty", "topic"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "summary", "lessons"},
		"additionalProperties": false,
	},
}
