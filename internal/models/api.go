package models

import "time"

// ChatRequest is the payload for POST /v1/chat and for each WebSocket frame.
type ChatRequest struct {
	UserID         string `json:"-"` // Set from X-User-ID header, not JSON body
	ConversationID string `json:"conversationId,omitempty"`
	CharacterID    string `json:"characterId,omitempty"`
	Message        string `json:"message"`
}

// Intelligence reports which context signals shaped a reply.
type Intelligence struct {
	SemanticContextUsed bool        `json:"semanticContextUsed"`
	EmotionalState      Mood        `json:"emotionalState"`
	RelationshipStage   PromptStage `json:"relationshipStage"`
	MemoryIntegration   bool        `json:"memoryIntegration"`
}

// ChatResponse is returned from POST /v1/chat.
type ChatResponse struct {
	Reply          string       `json:"reply"`
	ConversationID string       `json:"conversationId"`
	MessageID      string       `json:"messageId"`
	UserMessageID  string       `json:"userMessageId"`
	Persona        string       `json:"persona"`
	Intelligence   Intelligence `json:"intelligence"`
}

// ConversationOverview is one row of GET /v1/conversations.
type ConversationOverview struct {
	ID            string    `json:"id"`
	LastMessage   string    `json:"lastMessage"`
	Timestamp     time.Time `json:"timestamp"`
	MessageCount  int       `json:"messageCount"`
	RecentTopics  []string  `json:"recentTopics"`
	EmotionalTone string    `json:"emotionalTone"`
}

// ConversationAnalysis is returned from GET /v1/conversations/{id}/analysis.
type ConversationAnalysis struct {
	ConversationID string    `json:"conversationId"`
	MessageCount   int       `json:"messageCount"`
	UserState      UserState `json:"userState"`
}

// AnalyzeEmotionRequest is the payload for POST /v1/analyze/emotion.
type AnalyzeEmotionRequest struct {
	Message string `json:"message"`
}

// BuildPromptRequest is the payload for POST /v1/analyze/prompt. Fields
// left empty are filled from the default first-turn context.
type BuildPromptRequest struct {
	CharacterID string              `json:"characterId,omitempty"`
	Message     string              `json:"message"`
	Context     *SmartPromptContext `json:"context,omitempty"`
}

// BuildPromptResponse is returned from POST /v1/analyze/prompt.
type BuildPromptResponse struct {
	Prompt string `json:"prompt"`
	Length int    `json:"length"`
}

// OpeningResponse is returned from GET /v1/sessions/{id}/opening.
type OpeningResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// SummarizeRequest is the optional payload for POST /v1/conversations/{id}/summary.
type SummarizeRequest struct {
	Config *SummaryConfig `json:"config,omitempty"`
}
