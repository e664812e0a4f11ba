package prompt

import "cdsmatch/internal/llm"

// FieldMatchingTool returns the function-call definition for batch field
// matching. The strict "required" list forces the model to emit every column
// for every row, which keeps the downstream decoding uniform.
func FieldMatchingTool() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        FieldMatchTool,
		Description: "Matches input fields with SAP CDS fields STRICTLY from the provided context - NO field names outside the context are allowed",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"review": map[string]any{
					"type":        "array",
					"description": "A list containing the matching results for all input fields",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"row_index": map[string]any{
								"type":        "integer",
								"description": "Row index of the input field",
							},
							"table_id": map[string]any{
								"type":        "string",
								"description": "EXACT SAP CDS view name from context list - must match exactly, empty string if no match found",
							},
							"field_id": map[string]any{
								"type":        "string",
								"description": "EXACT SAP CDS field name from context list (without view prefix) - must match exactly, empty string if no match found",
							},
							"field_desc": map[string]any{
								"type":        "string",
								"description": "SAP CDS field description from context, empty string if no match found",
							},
							"data_type": map[string]any{
								"type":        "string",
								"description": "SAP CDS field data type from context, empty string if no match found",
							},
							"length_total": map[string]any{
								"type":        "string",
								"description": "SAP CDS field total length from context, empty string if no match found",
							},
							"length_dec": map[string]any{
								"type":        "string",
								"description": "SAP CDS field decimal length from context, empty string if no match found",
							},
							"key_flag": map[string]any{
								"type":        "string",
								"description": "Whether the field is a key field - use 'X' if true from context, empty string otherwise",
							},
							"match_confidence": map[string]any{
								"type":        "integer",
								"description": "Match confidence percentage (0-100)",
							},
							"notes": map[string]any{
								"type":        "string",
								"description": "Notes explaining the match choice from context OR why no suitable match was found in the provided context",
							},
						},
						"required": []any{
							"row_index", "table_id", "field_id", "field_desc",
							"data_type", "length_total", "length_dec", "key_flag",
							"match_confidence", "notes",
						},
					},
				},
			},
			"required": []any{"review"},
		},
	}
}

// ViewSelectionToolDef returns the function-call definition for shortlisting
// candidate views.
func ViewSelectionToolDef() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ViewSelectionTool,
		Description: "Selects the top 3-5 most relevant CDS view names from a list based on the user's required interface fields and business context.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"relevant_view_names": map[string]any{
					"type":        "array",
					"description": "A list of the names of the CDS views that are most relevant to the user's input.",
					"items":       map[string]any{"type": "string"},
				},
			},
			"required": []any{"relevant_view_names"},
		},
	}
}
