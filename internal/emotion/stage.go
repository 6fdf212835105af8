package emotion

import (
	"strings"

	"github.com/iammorganparry/companion/internal/lexicon"
	"github.com/iammorganparry/companion/internal/models"
)

// stageWindow is the number of trailing messages used for the length and
// emotional-word adjustments and for each half of the progression check.
const stageWindow = 20

var stageBase = map[models.RelationshipStage]int{
	models.StageInitiation:     2,
	models.StageBonding:        4,
	models.StageConflict:       3,
	models.StageIntimacy:       7,
	models.StageDeepConnection: 9,
	models.StageLongTerm:       8,
}

// DetectStage classifies the relationship stage of a message window. An
// empty window is initiation.
func DetectStage(messages []models.Message) models.RelationshipStageResult {
	stage, scores, indicators, all := scoreStages(messages)

	maxScore, total := 0, 0
	for _, s := range scores {
		total += s
		if s > maxScore {
			maxScore = s
		}
	}
	confidence := 0.5
	if total > 0 {
		confidence = float64(maxScore) / float64(total)
	}

	if len(indicators) > 5 {
		indicators = indicators[:5]
	}

	return models.RelationshipStageResult{
		Stage:         stage,
		Confidence:    confidence,
		Indicators:    indicators,
		Progression:   progression(messages),
		IntimacyLevel: intimacyLevel(stage, len(messages), all),
	}
}

// scoreStages returns the winning stage and the raw score per stage in
// lexicon order.
func scoreStages(messages []models.Message) (models.RelationshipStage, []int, []string, string) {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}
	all := strings.ToLower(strings.Join(parts, " "))

	scores := make([]int, len(lexicon.Stages))
	indicators := []string{}
	index := make(map[string]int, len(lexicon.Stages))
	for i, cat := range lexicon.Stages {
		index[cat.Name] = i
		for _, k := range cat.Keywords {
			if n := lexicon.CountOccurrences(all, k); n > 0 {
				scores[i] += n
				indicators = append(indicators, k)
			}
		}
	}

	switch n := len(messages); {
	case n < 10:
		scores[index["initiation"]] += 5
	case n < 50:
		scores[index["bonding"]] += 3
	case n < 200:
		scores[index["intimacy"]] += 2
	default:
		scores[index["long_term"]] += 4
	}

	recent := tail(messages, stageWindow)
	if len(recent) > 0 {
		total := 0
		for _, m := range recent {
			total += len(m.Content)
		}
		if float64(total)/float64(len(recent)) > 100 {
			scores[index["deep_connection"]] += 2
			scores[index["intimacy"]]++
		}
	}

	emotional := 0
	for _, m := range recent {
		emotional += lexicon.CountContained(strings.ToLower(m.Content), lexicon.StageEmotionalWords)
	}
	if emotional > 5 {
		scores[index["intimacy"]] += 3
		scores[index["deep_connection"]] += 2
	}

	stage := models.StageInitiation
	best := 0
	for i, s := range scores {
		if s > best {
			best = s
			stage = models.RelationshipStage(lexicon.Stages[i].Name)
		}
	}
	return stage, scores, indicators, all
}

func progression(messages []models.Message) models.Progression {
	if len(messages) < stageWindow {
		return models.ProgressionStable
	}
	n := len(messages)
	recent, _, _, _ := scoreStages(messages[n-10:])
	older, _, _, _ := scoreStages(messages[n-20 : n-10])

	switch r, o := stageOrder(recent), stageOrder(older); {
	case r > o:
		return models.ProgressionAdvancing
	case r < o:
		return models.ProgressionRegressing
	default:
		return models.ProgressionStable
	}
}

func stageOrder(s models.RelationshipStage) int {
	for i, cat := range lexicon.Stages {
		if cat.Name == string(s) {
			return i
		}
	}
	return -1
}

func intimacyLevel(stage models.RelationshipStage, count int, all string) int {
	level := stageBase[stage]
	level += min(2, count/50)
	level += min(2, lexicon.CountContained(all, lexicon.StageIntimateWords)/3)
	return clamp(level, 1, 10)
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
