package mcp

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var sessionIDProperty = map[string]any{
	"type":        "string",
	"description": "Session ID (omit to use the session bound to this connection)",
}

func sessionOnlySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"session_id": sessionIDProperty,
		},
	}
}

func feedbackSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"session_id": sessionIDProperty,
			"feedback": map[string]any{
				"type":        "string",
				"description": "User feedback to incorporate into the regenerated document",
			},
		},
		"required": []string{"feedback"},
	}
}

// buildToolCatalog returns all available MCP tools.
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Lifecycle
		{
			Name:        "start_project",
			Description: "Start a new project-generation session in the stack-selection phase",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "list_sessions",
			Description: "List all project sessions, newest activity first",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_session",
			Description: "Get the full state of a project session",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "get_conversation",
			Description: "Get the conversation history of a project session",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty,
					"max_messages": map[string]any{
						"type":        "integer",
						"description": "Return only the most recent N messages",
					},
				},
			},
		},
		{
			Name:        "delete_session",
			Description: "Delete a project session and all of its artifacts",
			InputSchema: sessionOnlySchema(),
		},

		// Setup phases
		{
			Name:        "select_stack",
			Description: "Select the technology stack (stack-selection phase)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty,
					"stack": map[string]any{
						"type":        "object",
						"description": "Chosen technology stack",
						"properties": map[string]any{
							"id":       map[string]any{"type": "string"},
							"name":     map[string]any{"type": "string"},
							"frontend": map[string]any{"type": "string"},
							"backend":  map[string]any{"type": "string"},
							"database": map[string]any{"type": "string"},
						},
						"required": []string{"id", "name"},
					},
				},
				"required": []string{"stack"},
			},
		},
		{
			Name:        "select_theme",
			Description: "Select the visual theme (theme-selection phase)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty,
					"theme": map[string]any{
						"type":        "object",
						"description": "Chosen visual theme",
						"properties": map[string]any{
							"id":            map[string]any{"type": "string"},
							"name":          map[string]any{"type": "string"},
							"primary_color": map[string]any{"type": "string"},
							"mode":          map[string]any{"type": "string"},
						},
						"required": []string{"id", "name"},
					},
				},
				"required": []string{"theme"},
			},
		},
		{
			Name:        "submit_description",
			Description: "Submit the project description (description phase)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty,
					"description": map[string]any{
						"type":        "string",
						"description": "Free-text description of the project to generate",
					},
				},
				"required": []string{"description"},
			},
		},

		// Requirements
		{
			Name:        "generate_requirements",
			Description: "Generate the requirements document (requirements phase)",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "update_requirements",
			Description: "Regenerate the requirements document with user feedback",
			InputSchema: feedbackSchema(),
		},
		{
			Name:        "approve_requirements",
			Description: "Approve the requirements document and advance to design",
			InputSchema: sessionOnlySchema(),
		},

		// Design
		{
			Name:        "generate_design",
			Description: "Generate the design document (design phase)",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "update_design",
			Description: "Regenerate the design document with user feedback",
			InputSchema: feedbackSchema(),
		},
		{
			Name:        "approve_design",
			Description: "Approve the design document and advance to tasks",
			InputSchema: sessionOnlySchema(),
		},

		// Tasks
		{
			Name:        "generate_tasks",
			Description: "Generate the implementation task list (tasks phase)",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "update_tasks",
			Description: "Regenerate the task list with user feedback",
			InputSchema: feedbackSchema(),
		},
		{
			Name:        "approve_tasks",
			Description: "Approve the task list and advance to image generation",
			InputSchema: sessionOnlySchema(),
		},

		// Image generation
		{
			Name:        "offer_image_generation",
			Description: "Log the assistant prompt offering concept image generation",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "skip_image_generation",
			Description: "Decline image generation and advance to execution",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "accept_image_generation",
			Description: "Accept image generation and advance to execution",
			InputSchema: sessionOnlySchema(),
		},

		// Execution
		{
			Name:        "record_images",
			Description: "Record generated images against the session (execution phase)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty,
					"images": map[string]any{
						"type":        "array",
						"description": "Generated image records",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":     map[string]any{"type": "string"},
								"prompt": map[string]any{"type": "string"},
								"path":   map[string]any{"type": "string"},
							},
							"required": []string{"id", "prompt"},
						},
					},
				},
				"required": []string{"images"},
			},
		},
		{
			Name:        "start_execution",
			Description: "Mark the beginning of project execution",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "complete_project",
			Description: "Mark the project complete (terminal phase)",
			InputSchema: sessionOnlySchema(),
		},
	}
}
