package mcp

// ToolDefinitions returns the tools the bridge exposes.
func ToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name: "companion_chat",
			Description: "Send a message to the companion and get its reply. " +
				"Omit conversationId to start a new conversation; pass the returned one to continue it.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"message":        {Type: "string", Description: "What the user says"},
					"conversationId": {Type: "string", Description: "Conversation to continue"},
					"characterId":    {Type: "string", Description: "Persona to talk to (default persona when empty)"},
				},
				Required: []string{"message"},
			},
		},
		{
			Name:        "companion_conversations",
			Description: "List the user's conversations, most recent first, with topics and emotional tone.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        "companion_messages",
			Description: "Read the latest messages of a conversation, oldest first.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"conversationId": {Type: "string", Description: "Conversation to read"},
					"limit":          {Type: "number", Description: "Maximum messages to return (default 20)", Default: 20},
				},
				Required: []string{"conversationId"},
			},
		},
		{
			Name:        "companion_summary",
			Description: "Get the stored summary of a conversation: key topics, emotional highlights, milestones.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"conversationId": {Type: "string", Description: "Conversation to summarize"},
				},
				Required: []string{"conversationId"},
			},
		},
		{
			Name:        "companion_profile",
			Description: "Get what the companion has learned about the user: traits, interests, habits, preferences.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        "companion_analyze_emotion",
			Description: "Detect the primary emotion, intensity and trigger words of a message.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"message": {Type: "string", Description: "Text to analyze"},
				},
				Required: []string{"message"},
			},
		},
	}
}
