package emotion

import (
	"time"

	"github.com/iammorganparry/companion/internal/models"
)

const maxRecommendations = 6

var emotionAdvice = map[models.Emotion][]string{
	models.EmotionSad: {
		"Provide emotional support and comfort",
		"Ask about what's bothering them",
		"Share a comforting memory or experience",
	},
	models.EmotionHappy: {
		"Share in their joy and excitement",
		"Ask about what made them happy",
		"Suggest celebrating together",
	},
	models.EmotionAnxious: {
		"Offer reassurance and calm presence",
		"Help them process their worries",
		"Suggest relaxation or distraction",
	},
	models.EmotionRomantic: {
		"Respond with appropriate romantic energy",
		"Express affection and connection",
		"Create intimate conversation moments",
	},
}

var stageAdvice = map[models.RelationshipStage][]string{
	models.StageInitiation: {
		"Be welcoming and establish comfort",
		"Ask getting-to-know-you questions",
		"Share basic information about yourself",
	},
	models.StageBonding: {
		"Deepen the conversation with personal questions",
		"Share experiences and find common ground",
		"Show genuine interest in their life",
	},
	models.StageIntimacy: {
		"Be emotionally vulnerable and open",
		"Express deeper feelings and connection",
		"Reference shared experiences and memories",
	},
	models.StageLongTerm: {
		"Maintain relationship through routine care",
		"Plan future experiences together",
		"Show appreciation for the relationship",
	},
}

var regressingAdvice = []string{
	"Address any relationship concerns",
	"Reconnect through shared positive memories",
	"Show extra care and attention",
}

// Analyzer combines the detectors into a UserState.
type Analyzer struct {
	loc *time.Location
}

// NewAnalyzer creates an analyzer that buckets moods by hour in loc.
func NewAnalyzer(loc *time.Location) *Analyzer {
	if loc == nil {
		loc = time.Local
	}
	return &Analyzer{loc: loc}
}

// AnalyzeUserState runs the emotion, stage and mood detectors over history.
// An empty current message yields a neutral placeholder emotion.
func (a *Analyzer) AnalyzeUserState(messages []models.Message, current string) models.UserState {
	var em models.EmotionDetectionResult
	if current != "" {
		em = Detect(current)
	} else {
		em = models.EmotionDetectionResult{
			PrimaryEmotion: models.EmotionNeutral,
			Intensity:      baseIntensity,
			Confidence:     0.5,
			Context:        "No current message",
			Triggers:       []string{},
		}
	}

	stage := DetectStage(messages)
	return models.UserState{
		CurrentEmotion:    em,
		RelationshipStage: stage,
		MoodProfile:       AnalyzePatterns(messages, a.loc),
		Recommendations:   recommend(em, stage),
	}
}

func recommend(em models.EmotionDetectionResult, stage models.RelationshipStageResult) []string {
	recs := []string{}
	recs = append(recs, emotionAdvice[em.PrimaryEmotion]...)
	recs = append(recs, stageAdvice[stage.Stage]...)
	if stage.Progression == models.ProgressionRegressing {
		recs = append(recs, regressingAdvice...)
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
