package models

// Mood is the persona's emotional state as rendered into the prompt.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodSad      Mood = "sad"
	MoodExcited  Mood = "excited"
	MoodAnxious  Mood = "anxious"
	MoodNeutral  Mood = "neutral"
	MoodRomantic Mood = "romantic"
	MoodPlayful  Mood = "playful"
)

// PromptStage is the relationship stage vocabulary used by the prompt
// builder. It is coarser than RelationshipStage and volume driven.
type PromptStage string

const (
	PromptStageNew           PromptStage = "new"
	PromptStageGettingToKnow PromptStage = "getting_to_know"
	PromptStageComfortable   PromptStage = "comfortable"
	PromptStageIntimate      PromptStage = "intimate"
	PromptStageLongTerm      PromptStage = "long_term"
)

// ConversationStyle is the preferred register of the conversation.
type ConversationStyle string

const (
	StyleCasual     ConversationStyle = "casual"
	StyleDeep       ConversationStyle = "deep"
	StyleFlirty     ConversationStyle = "flirty"
	StyleSupportive ConversationStyle = "supportive"
)

type EmotionalState struct {
	Mood      Mood   `json:"mood"`
	Intensity int    `json:"intensity"`
	Context   string `json:"context,omitempty"`
}

type RelationshipContext struct {
	Stage             PromptStage       `json:"stage"`
	IntimacyLevel     int               `json:"intimacyLevel"`
	SharedExperiences []string          `json:"sharedExperiences"`
	UserPreferences   []string          `json:"userPreferences"`
	ConversationStyle ConversationStyle `json:"conversationStyle"`
}

type EmotionalMoment struct {
	Topic        string `json:"topic"`
	Emotion      string `json:"emotion"`
	Significance int    `json:"significance"`
}

type UserPersonality struct {
	Traits             []string `json:"traits"`
	Interests          []string `json:"interests"`
	CommunicationStyle string   `json:"communicationStyle"`
}

// ConversationMemory is rebuilt for every prompt.
type ConversationMemory struct {
	RecentTopics     []string          `json:"recentTopics"`
	EmotionalMoments []EmotionalMoment `json:"emotionalMoments"`
	UserPersonality  UserPersonality   `json:"userPersonality"`
}

// SmartPromptContext holds every pre-fetched input of the prompt builder.
type SmartPromptContext struct {
	Persona             Persona             `json:"persona"`
	CurrentMessage      string              `json:"currentMessage"`
	SemanticContext     []SemanticResult    `json:"semanticContext"`
	EmotionalState      EmotionalState      `json:"emotionalState"`
	RelationshipContext RelationshipContext `json:"relationshipContext"`
	ConversationMemory  ConversationMemory  `json:"conversationMemory"`
	TimeOfDay           string              `json:"timeOfDay,omitempty"`
	UserMood            string              `json:"userMood,omitempty"`
}
