package mcp

// ToolDefinitions returns the MCP tool definitions for the backlog server.
func ToolDefinitions() []ToolDefinition {
	session := Property{Type: "string", Description: "Session name; each session keeps its own backlog and notes"}

	return []ToolDefinition{
		{
			Name: "backlog_state",
			Description: "Return the current backlog state for a session: issues, recent notes and " +
				"the last update time. A new session is seeded with the default issues.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"session": session},
				Required:   []string{"session"},
			},
		},
		{
			Name: "backlog_chat",
			Description: "Send a message to the backlog assistant. The message is recorded as a note " +
				"and the reply contains concrete next steps for the backlog.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"session": session,
					"message": {Type: "string", Description: "What you want to do with the backlog"},
					"user":    {Type: "string", Description: "Name recorded with the note (default anonymous)"},
				},
				Required: []string{"session", "message"},
			},
		},
		{
			Name:        "backlog_cleanup",
			Description: "Trim a session's notes to the most recent entries.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"session": session},
				Required:   []string{"session"},
			},
		},
	}
}
