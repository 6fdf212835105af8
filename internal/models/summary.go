package models

import "time"

// SummarySchemaVersion is bumped whenever the persisted summary blob
// changes shape.
const SummarySchemaVersion = 1

// ConversationSummary is the structured, incrementally updated summary of
// one conversation. It is persisted as a single JSON blob keyed by
// ConversationID.
type ConversationSummary struct {
	SchemaVersion           int                 `json:"schemaVersion"`
	ID                      string              `json:"id"`
	ConversationID          string              `json:"conversationId"`
	Summary                 string              `json:"summary"`
	KeyTopics               []string            `json:"keyTopics"`
	EmotionalHighlights     []string            `json:"emotionalHighlights"`
	RelationshipMilestones  []string            `json:"relationshipMilestones"`
	UserPersonalityInsights []string            `json:"userPersonalityInsights"`
	SignificantMoments      []SignificantMoment `json:"significantMoments"`
	SummaryMetadata         SummaryMetadata     `json:"summaryMetadata"`
	CreatedAt               time.Time           `json:"createdAt"`
	LastUpdated             time.Time           `json:"lastUpdated"`
}

// SignificantMoment is a message flagged as emotionally notable.
type SignificantMoment struct {
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
	Significance int       `json:"significance"`
}

type SummaryMetadata struct {
	MessageCount         int    `json:"messageCount"`
	TimeSpan             string `json:"timeSpan"`
	AverageMessageLength int    `json:"averageMessageLength"`
	EmotionalTone        string `json:"emotionalTone"`
	ConversationQuality  int    `json:"conversationQuality"`
}

// SummaryConfig tunes a summarization run. Start from
// summary.DefaultConfig; a zero MaxTokens or CompressionRatio falls back to
// the default value.
type SummaryConfig struct {
	MaxTokens                     int     `json:"maxTokens"`
	IncludeEmotionalAnalysis      bool    `json:"includeEmotionalAnalysis"`
	IncludePersonalityInsights    bool    `json:"includePersonalityInsights"`
	IncludeRelationshipMilestones bool    `json:"includeRelationshipMilestones"`
	CompressionRatio              float64 `json:"compressionRatio"`
}
