package emotion

import (
	"sort"
	"time"

	"github.com/iammorganparry/companion/internal/models"
)

const (
	moodHistoryCap = 20
	triggerCap     = 10
)

// TimeOfDay buckets an hour of the day.
func TimeOfDay(hour int) string {
	switch {
	case hour < 6:
		return "late_night"
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	case hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// AnalyzePatterns rebuilds a mood profile from a message history. Hours are
// read in loc; a nil loc means the local zone.
func AnalyzePatterns(messages []models.Message, loc *time.Location) models.UserMoodProfile {
	if loc == nil {
		loc = time.Local
	}

	history := make([]models.MoodEntry, 0, len(messages))
	bucketOrder := []string{}
	buckets := make(map[string][]models.Emotion)
	triggerOrder := []string{}
	triggerCounts := make(map[string]int)
	emotionRange := []models.Emotion{}
	seenEmotion := make(map[models.Emotion]bool)

	for _, m := range messages {
		res := Detect(m.Content)
		history = append(history, models.MoodEntry{
			Mood:      res.PrimaryEmotion,
			Timestamp: m.CreatedAt,
			Intensity: res.Intensity,
		})

		tod := TimeOfDay(m.CreatedAt.In(loc).Hour())
		if _, ok := buckets[tod]; !ok {
			bucketOrder = append(bucketOrder, tod)
		}
		buckets[tod] = append(buckets[tod], res.PrimaryEmotion)

		for _, tr := range res.Triggers {
			if triggerCounts[tr] == 0 {
				triggerOrder = append(triggerOrder, tr)
			}
			triggerCounts[tr]++
		}

		if !seenEmotion[res.PrimaryEmotion] {
			seenEmotion[res.PrimaryEmotion] = true
			emotionRange = append(emotionRange, res.PrimaryEmotion)
		}
	}

	current := models.EmotionNeutral
	if len(history) > 0 {
		current = history[len(history)-1].Mood
	}

	todMoods := make(map[string]models.Emotion, len(buckets))
	for _, tod := range bucketOrder {
		todMoods[tod] = mode(buckets[tod])
	}

	sort.SliceStable(triggerOrder, func(i, j int) bool {
		return triggerCounts[triggerOrder[i]] > triggerCounts[triggerOrder[j]]
	})
	if len(triggerOrder) > triggerCap {
		triggerOrder = triggerOrder[:triggerCap]
	}

	return models.UserMoodProfile{
		CurrentMood: current,
		MoodHistory: tail(history, moodHistoryCap),
		Patterns: models.MoodPatterns{
			TimeOfDayMoods: todMoods,
			CommonTriggers: triggerOrder,
			EmotionalRange: emotionRange,
		},
	}
}

// mode returns the most frequent emotion; the first encountered wins ties.
func mode(moods []models.Emotion) models.Emotion {
	counts := make(map[models.Emotion]int)
	order := []models.Emotion{}
	for _, m := range moods {
		if counts[m] == 0 {
			order = append(order, m)
		}
		counts[m]++
	}
	best, bestCount := models.EmotionNeutral, 0
	for _, m := range order {
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best
}
