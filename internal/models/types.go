package models

import "time"

// Message is a single stored chat message.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Content        string    `json:"content"`
	IsUserMessage  bool      `json:"isUserMessage"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Conversation is a thread of messages between one user and one persona.
type Conversation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CharacterID string    `json:"characterId,omitempty"`
	// LegacySummary holds the placeholder summary written by the
	// every-10-messages summarizer.
	LegacySummary string    `json:"legacySummary,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Persona is the named character the model role-plays.
type Persona struct {
	ID          string   `json:"id,omitempty" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Traits      []string `json:"traits" yaml:"traits"`
	Description string   `json:"description,omitempty" yaml:"description"`
}

// PersonalityType is a selectable character archetype.
type PersonalityType struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
}

// ChatRole is the author role of a completion message.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of a completion request.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// SemanticResult is a past message snippet retrieved by similarity.
type SemanticResult struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	Score          float64 `json:"score"`
	ConversationID string  `json:"conversationId,omitempty"`
	UserID         string  `json:"userId,omitempty"`
	CreatedAt      string  `json:"createdAt,omitempty"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status   string       `json:"status"`
	DB       ServiceCheck `json:"db"`
	Qdrant   ServiceCheck `json:"qdrant"`
	LLM      ServiceCheck `json:"llm"`
	Messages int          `json:"messageCount"`
}

// ServiceCheck reports the health of a single dependency.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// EmbeddingCacheEntry is a cached embedding keyed by content hash.
type EmbeddingCacheEntry struct {
	ContentHash string
	Embedding   []byte
	Dimension   int
	Model       string
	UpdatedAt   int64
}
