package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/iammorganparry/companion/internal/lexicon"
	"github.com/iammorganparry/companion/internal/models"
)

const (
	momentCap       = 10
	minSignificance = 6
	descriptionCap  = 100
)

func fallbackSummary(msgs []models.Message) string {
	user := 0
	for _, m := range msgs {
		if m.IsUserMessage {
			user++
		}
	}
	return fmt.Sprintf("Conversation with %d messages (%d from user, %d from AI). "+
		"Topics discussed include general conversation and relationship building.",
		len(msgs), user, len(msgs)-user)
}

// fallbackTopics returns topic buckets in first-hit order.
func fallbackTopics(msgs []models.Message) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range msgs {
		content := strings.ToLower(m.Content)
		for _, c := range lexicon.SummaryTopics {
			if !seen[c.Name] && lexicon.ContainsAny(content, c.Keywords...) {
				seen[c.Name] = true
				out = append(out, c.Name)
			}
		}
	}
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func fallbackHighlights(msgs []models.Message) []string {
	out := []string{}
	for _, c := range lexicon.SummaryEmotions {
		for _, m := range msgs {
			if lexicon.ContainsAny(strings.ToLower(m.Content), c.Keywords...) {
				out = append(out, c.Name)
				break
			}
		}
	}
	return out
}

func fallbackMilestones(msgs []models.Message) []string {
	out := []string{}
	if len(msgs) > 50 {
		out = append(out, "Established ongoing conversation pattern")
	}
	if anyContains(msgs, "love") {
		out = append(out, "First expressions of love")
	}
	if anyContains(msgs, "future") {
		out = append(out, "Discussion of future plans")
	}
	return out
}

func fallbackPersonality(user []models.Message) []string {
	parts := make([]string, len(user))
	for i, m := range user {
		parts[i] = m.Content
	}
	text := strings.ToLower(strings.Join(parts, " "))

	out := []string{}
	if lexicon.ContainsAny(text, "work", "job") {
		out = append(out, "Career-focused")
	}
	if lexicon.ContainsAny(text, "family", "friend") {
		out = append(out, "Values relationships")
	}
	if lexicon.ContainsAny(text, "feel", "emotion") {
		out = append(out, "Emotionally expressive")
	}
	return out
}

func anyContains(msgs []models.Message, word string) bool {
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m.Content), word) {
			return true
		}
	}
	return false
}

// significantMoments flags each message by its first matching rule.
func significantMoments(msgs []models.Message) []models.SignificantMoment {
	out := []models.SignificantMoment{}
	for _, m := range msgs {
		rule, ok := lexicon.FirstMoment(strings.ToLower(m.Content), lexicon.SummaryMomentRules)
		if !ok || rule.Score < minSignificance {
			continue
		}
		desc := m.Content
		if r := []rune(desc); len(r) > descriptionCap {
			desc = string(r[:descriptionCap]) + "..."
		}
		out = append(out, models.SignificantMoment{
			Type:         rule.Type,
			Description:  desc,
			Timestamp:    m.CreatedAt,
			Significance: rule.Score,
		})
	}
	return rankMoments(out)
}

// rankMoments sorts by descending significance, keeping input order among
// equals, and caps the list.
func rankMoments(moments []models.SignificantMoment) []models.SignificantMoment {
	out := append([]models.SignificantMoment{}, moments...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Significance > out[j].Significance })
	if len(out) > momentCap {
		out = out[:momentCap]
	}
	return out
}

func metadata(msgs []models.Message) models.SummaryMetadata {
	if len(msgs) == 0 {
		return models.SummaryMetadata{TimeSpan: "0 minutes", EmotionalTone: "neutral"}
	}

	total := 0
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		total += len(m.Content)
		parts[i] = m.Content
	}
	avg := float64(total) / float64(len(msgs))
	all := strings.ToLower(strings.Join(parts, " "))

	tone := "neutral"
	for _, r := range lexicon.SummaryToneRules {
		if lexicon.ContainsAny(all, r.Keywords...) {
			tone = r.Label
			break
		}
	}

	return models.SummaryMetadata{
		MessageCount:         len(msgs),
		TimeSpan:             timeSpan(msgs[0].CreatedAt, msgs[len(msgs)-1].CreatedAt),
		AverageMessageLength: int(math.Round(avg)),
		EmotionalTone:        tone,
		ConversationQuality:  quality(msgs, avg),
	}
}

func quality(msgs []models.Message, avg float64) int {
	q := 5
	if len(msgs) > 50 {
		q++
	}
	if len(msgs) > 100 {
		q++
	}
	if avg > 50 {
		q++
	}
	if avg > 100 {
		q++
	}
	for _, m := range msgs {
		if lexicon.ContainsAny(strings.ToLower(m.Content), lexicon.QualityWords...) {
			q++
			break
		}
	}
	return min(10, q)
}

// timeSpan renders the largest whole unit between start and end.
func timeSpan(start, end time.Time) string {
	d := end.Sub(start)
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return plural(days, "day")
	case hours > 0:
		return plural(hours, "hour")
	default:
		return plural(minutes, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
