package ai

// Tool describes one entry in the static tool registry exposed at
// /ai/tools. The registry is declarative only; handlers name the
// notional subsystem that would serve the call.
type Tool struct {
	ToolName     string         `json:"tool_name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"input_schema"`
	OutputSchema map[string]any `json:"output_schema"`
	Handler      string         `json:"handler"`
}

// Registry returns the fixed tool catalog.
func Registry() []Tool {
	return []Tool{
		{
			ToolName:    "classify_inbox",
			Description: "Classify inbox item into HR/Docs/Sales/Support/Billing/General",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{"type": "string"},
				},
				"required": []string{"message"},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"category": map[string]any{"type": "string"},
					"reason":   map[string]any{"type": "string"},
				},
				"required": []string{"category"},
			},
			Handler: "InboxClassifierService",
		},
		{
			ToolName:    "create_task",
			Description: "Create a task from extracted action",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":    map[string]any{"type": "string"},
					"priority": map[string]any{"type": "string"},
					"due_date": map[string]any{"type": "string"},
				},
				"required": []string{"title"},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{"type": "string"},
				},
				"required": []string{"task_id"},
			},
			Handler: "CreateTaskService",
		},
		{
			ToolName:    "search_docs",
			Description: "Search internal docs for relevant snippets",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string"},
					"top_k": map[string]any{"type": "number"},
				},
				"required": []string{"query"},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"results": map[string]any{"type": "array"},
				},
				"required": []string{"results"},
			},
			Handler: "DocSearchService",
		},
	}
}
