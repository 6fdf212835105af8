// Package emotion implements the keyword heuristics that classify a
// message's emotion, a conversation's relationship stage, and a user's mood
// history.
package emotion

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iammorganparry/companion/internal/lexicon"
	"github.com/iammorganparry/companion/internal/models"
)

const baseIntensity = 5

// Detect classifies a single message. It never fails: an empty message is
// neutral with intensity 5 and confidence 0.
func Detect(message string) models.EmotionDetectionResult {
	lower := strings.ToLower(message)

	primary := models.EmotionNeutral
	maxScore := 0
	triggers := []string{}
	seen := make(map[string]bool)

	for _, cat := range lexicon.Emotions {
		hits := lexicon.Contained(lower, cat.Keywords)
		for _, h := range hits {
			if !seen[h] {
				seen[h] = true
				triggers = append(triggers, h)
			}
		}
		if len(hits) > maxScore {
			maxScore = len(hits)
			primary = models.Emotion(cat.Name)
		}
	}

	intensity := baseIntensity
	for _, mod := range lexicon.IntensityModifiers {
		for _, k := range mod.Keywords {
			if strings.Contains(lower, k) {
				intensity = clamp(intensity+mod.Delta, 1, 10)
			}
		}
	}

	if n := strings.Count(message, "!"); n > 0 {
		intensity = min(10, intensity+n)
	}
	if float64(countUpper(message)) > float64(utf8.RuneCountInString(message))*0.3 {
		intensity = min(10, intensity+2)
	}

	return models.EmotionDetectionResult{
		PrimaryEmotion: primary,
		Intensity:      intensity,
		Confidence:     min(1, float64(maxScore)/3),
		Context:        describe(primary, triggers),
		Triggers:       triggers,
	}
}

func describe(e models.Emotion, triggers []string) string {
	if len(triggers) == 0 {
		return fmt.Sprintf("General %s sentiment detected", e)
	}
	return fmt.Sprintf("%s emotion triggered by: %s", e, strings.Join(triggers[:min(3, len(triggers))], ", "))
}

// countUpper counts ASCII capitals only, matching the [A-Z] rule.
func countUpper(s string) int {
	n := 0
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsUpper(r) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
