package models

import "time"

// ProfileSchemaVersion is bumped whenever the persisted profile blob
// changes shape.
const ProfileSchemaVersion = 1

// UserProfile is the long-lived personality model of one user. It is
// loaded, merged and saved; list fields only ever grow.
type UserProfile struct {
	SchemaVersion       int                 `json:"schemaVersion"`
	UserID              string              `json:"userId"`
	PersonalityTraits   PersonalityTraits   `json:"personalityTraits"`
	BehaviorPatterns    BehaviorPatterns    `json:"behaviorPatterns"`
	Preferences         UserPreferences     `json:"preferences"`
	RelationshipHistory RelationshipHistory `json:"relationshipHistory"`
	LastUpdated         time.Time           `json:"lastUpdated"`
	ConfidenceScore     float64             `json:"confidenceScore"`
}

type PersonalityTraits struct {
	CommunicationStyle  string              `json:"communicationStyle"`
	EmotionalNeeds      []string            `json:"emotionalNeeds"`
	Interests           []string            `json:"interests"`
	Values              []string            `json:"values"`
	PersonalityType     string              `json:"personalityType"`
	PreferredTopics     []string            `json:"preferredTopics"`
	AvoidedTopics       []string            `json:"avoidedTopics"`
	ResponsePreferences ResponsePreferences `json:"responsePreferences"`
}

type ResponsePreferences struct {
	Length        string `json:"length"`
	Tone          string `json:"tone"`
	IntimacyLevel int    `json:"intimacyLevel"`
}

type BehaviorPatterns struct {
	ActiveHours           []string          `json:"activeHours"`
	ConversationFrequency string            `json:"conversationFrequency"`
	SessionLength         string            `json:"sessionLength"`
	EmotionalPatterns     EmotionalPatterns `json:"emotionalPatterns"`
	RelationshipStyle     string            `json:"relationshipStyle"`
}

type EmotionalPatterns struct {
	CommonMoods  []string `json:"commonMoods"`
	Triggers     []string `json:"triggers"`
	SupportNeeds []string `json:"supportNeeds"`
}

type UserPreferences struct {
	ConversationStyle      string   `json:"conversationStyle"`
	TopicInterests         []string `json:"topicInterests"`
	EmotionalSupport       []string `json:"emotionalSupport"`
	IntimacyPreferences    []string `json:"intimacyPreferences"`
	CommunicationFrequency string   `json:"communicationFrequency"`
	PersonalBoundaries     []string `json:"personalBoundaries"`
}

type RelationshipHistory struct {
	TotalMessages        int             `json:"totalMessages"`
	RelationshipDuration int             `json:"relationshipDuration"`
	SignificantMoments   []ProfileMoment `json:"significantMoments"`
	EvolutionStages      []string        `json:"evolutionStages"`
}

// ProfileMoment is a significant moment as tracked on the user profile.
type ProfileMoment struct {
	Type            string    `json:"type"`
	Description     string    `json:"description"`
	Timestamp       time.Time `json:"timestamp"`
	EmotionalImpact int       `json:"impact"`
}

// ProfileInsights is the human-readable digest of a profile.
type ProfileInsights struct {
	PersonalityInsights  []string `json:"personalityInsights"`
	BehaviorInsights     []string `json:"behaviorInsights"`
	PreferenceInsights   []string `json:"preferenceInsights"`
	RelationshipInsights []string `json:"relationshipInsights"`
}
