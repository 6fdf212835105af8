package models

import "time"

// Emotion is a category produced by the emotion detector.
type Emotion string

const (
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionAngry    Emotion = "angry"
	EmotionAnxious  Emotion = "anxious"
	EmotionRomantic Emotion = "romantic"
	EmotionPlayful  Emotion = "playful"
	EmotionTired    Emotion = "tired"
	EmotionConfused Emotion = "confused"
	EmotionGrateful Emotion = "grateful"
	EmotionLonely   Emotion = "lonely"
	EmotionNeutral  Emotion = "neutral"
)

// EmotionDetectionResult is the outcome of analyzing a single message.
type EmotionDetectionResult struct {
	PrimaryEmotion Emotion  `json:"primaryEmotion"`
	Intensity      int      `json:"intensity"`
	Confidence     float64  `json:"confidence"`
	Context        string   `json:"context"`
	Triggers       []string `json:"triggers"`
}

// RelationshipStage is the coarse relationship-progress classification.
type RelationshipStage string

const (
	StageInitiation     RelationshipStage = "initiation"
	StageBonding        RelationshipStage = "bonding"
	StageConflict       RelationshipStage = "conflict"
	StageIntimacy       RelationshipStage = "intimacy"
	StageDeepConnection RelationshipStage = "deep_connection"
	StageLongTerm       RelationshipStage = "long_term"
)

// Progression compares the stage of two consecutive message windows.
type Progression string

const (
	ProgressionAdvancing  Progression = "advancing"
	ProgressionStable     Progression = "stable"
	ProgressionRegressing Progression = "regressing"
)

// RelationshipStageResult is derived on demand from a message window.
type RelationshipStageResult struct {
	Stage         RelationshipStage `json:"stage"`
	Confidence    float64           `json:"confidence"`
	Indicators    []string          `json:"indicators"`
	Progression   Progression       `json:"progression"`
	IntimacyLevel int               `json:"intimacyLevel"`
}

// MoodEntry records the detected mood of one message.
type MoodEntry struct {
	Mood      Emotion   `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
	Intensity int       `json:"intensity"`
}

// MoodPatterns aggregates moods across a message history.
type MoodPatterns struct {
	TimeOfDayMoods map[string]Emotion `json:"timeOfDayMoods"`
	CommonTriggers []string           `json:"commonTriggers"`
	EmotionalRange []Emotion          `json:"emotionalRange"`
}

// UserMoodProfile is rebuilt from history each time it is requested.
type UserMoodProfile struct {
	CurrentMood Emotion      `json:"currentMood"`
	MoodHistory []MoodEntry  `json:"moodHistory"`
	Patterns    MoodPatterns `json:"patterns"`
}

// UserState combines the detectors into a single view with response
// recommendations.
type UserState struct {
	CurrentEmotion    EmotionDetectionResult  `json:"currentEmotion"`
	RelationshipStage RelationshipStageResult `json:"relationshipStage"`
	MoodProfile       UserMoodProfile         `json:"moodProfile"`
	Recommendations   []string                `json:"recommendations"`
}
