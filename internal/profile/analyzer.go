// Package profile builds and incrementally merges the long-lived
// personality model of a user from their message history.
package profile

import (
	"sort"
	"strings"
	"time"

	"github.com/iammorganparry/companion/internal/emotion"
	"github.com/iammorganparry/companion/internal/lexicon"
	"github.com/iammorganparry/companion/internal/models"
)

const (
	sessionGap      = time.Hour
	momentCap       = 10
	activeHoursCap  = 3
	descriptionCap  = 100
	defaultStyle    = "balanced"
	defaultTone     = "mixed"
	defaultPersType = "Balanced"
)

var (
	preferredTopics = []string{"personal_life", "relationships", "future_plans"}
	avoidedTopics   = []string{"politics", "controversial_topics"}

	// Emotional patterns are not yet derived from history.
	commonMoods  = []string{"happy", "curious", "affectionate"}
	moodTriggers = []string{"work_stress", "relationship_topics", "future_planning"}
	supportNeeds = []string{"validation", "comfort", "encouragement"}
)

// Analyzer derives UserProfile values from messages. It holds no state
// beyond the clock and the zone used for hour-of-day bucketing.
type Analyzer struct {
	loc *time.Location
	now func() time.Time
}

// NewAnalyzer creates an analyzer. A nil loc means the local zone.
func NewAnalyzer(loc *time.Location) *Analyzer {
	if loc == nil {
		loc = time.Local
	}
	return &Analyzer{loc: loc, now: time.Now}
}

// Build computes a fresh profile from the full message history of a user.
func (a *Analyzer) Build(userID string, messages []models.Message) models.UserProfile {
	traits := a.personality(messages)
	return models.UserProfile{
		SchemaVersion:       models.ProfileSchemaVersion,
		UserID:              userID,
		PersonalityTraits:   traits,
		BehaviorPatterns:    a.behavior(messages),
		Preferences:         a.preferences(messages),
		RelationshipHistory: history(messages),
		LastUpdated:         a.now(),
		ConfidenceScore:     confidence(messages, traits),
	}
}

// userView is the lower-cased text and average length of the user-authored
// part of a history.
type userView struct {
	msgs   []models.Message
	text   string
	avg    float64
	hasAvg bool
}

func userMessages(messages []models.Message) userView {
	v := userView{}
	parts := []string{}
	total := 0
	for _, m := range messages {
		if !m.IsUserMessage {
			continue
		}
		v.msgs = append(v.msgs, m)
		parts = append(parts, m.Content)
		total += len(m.Content)
	}
	v.text = strings.ToLower(strings.Join(parts, " "))
	if len(v.msgs) > 0 {
		v.avg = float64(total) / float64(len(v.msgs))
		v.hasAvg = true
	}
	return v
}

func (a *Analyzer) personality(messages []models.Message) models.PersonalityTraits {
	u := userMessages(messages)
	return models.PersonalityTraits{
		CommunicationStyle:  communicationStyle(u),
		EmotionalNeeds:      categoriesAbove(u.text, lexicon.EmotionalNeeds, 0),
		Interests:           interests(u.msgs),
		Values:              categoriesAbove(u.text, lexicon.Values, 1),
		PersonalityType:     personalityType(u),
		PreferredTopics:     append([]string(nil), preferredTopics...),
		AvoidedTopics:       append([]string(nil), avoidedTopics...),
		ResponsePreferences: responsePreferences(u),
	}
}

// communicationStyle picks the highest scoring style; the earlier style
// wins ties.
func communicationStyle(u userView) string {
	scores := make([]int, len(lexicon.CommunicationStyles))
	for i, cat := range lexicon.CommunicationStyles {
		scores[i] = lexicon.CountContained(u.text, cat.Keywords)
		switch {
		case cat.Name == "verbose" && u.hasAvg && u.avg > 100:
			scores[i] += 2
		case cat.Name == "concise" && u.hasAvg && u.avg < 30:
			scores[i] += 2
		}
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return lexicon.CommunicationStyles[best].Name
}

func categoriesAbove(text string, cats []lexicon.Category, threshold int) []string {
	out := []string{}
	for _, c := range cats {
		if lexicon.CountContained(text, c.Keywords) > threshold {
			out = append(out, c.Name)
		}
	}
	return out
}

func interests(msgs []models.Message) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, m := range msgs {
		content := strings.ToLower(m.Content)
		for _, c := range lexicon.Interests {
			if !seen[c.Name] && lexicon.ContainsAny(content, c.Keywords...) {
				seen[c.Name] = true
				out = append(out, c.Name)
			}
		}
	}
	return out
}

func personalityType(u userView) string {
	traits := lexicon.MatchLabels(u.text, lexicon.PersonalityTypeRules)
	if u.hasAvg && u.avg > 80 {
		traits = append(traits, "Expressive")
	}
	if u.hasAvg && u.avg < 40 {
		traits = append(traits, "Reserved")
	}
	if len(traits) == 0 {
		return defaultPersType
	}
	return strings.Join(traits, ", ")
}

func responsePreferences(u userView) models.ResponsePreferences {
	length := "medium"
	if u.hasAvg && u.avg < 30 {
		length = "short"
	}
	if u.hasAvg && u.avg > 100 {
		length = "long"
	}

	tone := defaultTone
	for _, r := range lexicon.ToneRules {
		if lexicon.ContainsAny(u.text, r.Keywords...) {
			tone = r.Label
		}
	}

	intimate := lexicon.CountContained(u.text, lexicon.ProfileIntimateWords)
	return models.ResponsePreferences{
		Length:        length,
		Tone:          tone,
		IntimacyLevel: min(10, 3+intimate/2+len(u.msgs)/50),
	}
}

func (a *Analyzer) behavior(messages []models.Message) models.BehaviorPatterns {
	u := userMessages(messages)

	style := defaultStyle
	for _, r := range lexicon.RelationshipStyleRules {
		if lexicon.ContainsAny(u.text, r.Keywords...) {
			style = r.Label
			break
		}
	}

	return models.BehaviorPatterns{
		ActiveHours:           a.activeHours(u.msgs),
		ConversationFrequency: a.conversationFrequency(u.msgs),
		SessionLength:         sessionLength(u.msgs),
		EmotionalPatterns: models.EmotionalPatterns{
			CommonMoods:  append([]string(nil), commonMoods...),
			Triggers:     append([]string(nil), moodTriggers...),
			SupportNeeds: append([]string(nil), supportNeeds...),
		},
		RelationshipStyle: style,
	}
}

// activeHours maps the three busiest hours to time-of-day buckets. Equal
// counts keep ascending hour order.
func (a *Analyzer) activeHours(msgs []models.Message) []string {
	var counts [24]int
	for _, m := range msgs {
		counts[m.CreatedAt.In(a.loc).Hour()]++
	}
	hours := []int{}
	for h, c := range counts {
		if c > 0 {
			hours = append(hours, h)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool { return counts[hours[i]] > counts[hours[j]] })
	if len(hours) > activeHoursCap {
		hours = hours[:activeHoursCap]
	}

	out := []string{}
	for _, h := range hours {
		out = appendUnique(out, emotion.TimeOfDay(h))
	}
	return out
}

func (a *Analyzer) conversationFrequency(msgs []models.Message) string {
	if len(msgs) == 0 {
		return "sporadic"
	}
	days := a.now().Sub(msgs[0].CreatedAt).Hours() / 24
	perDay := float64(len(msgs)) / days
	switch {
	case perDay > 10:
		return "daily"
	case perDay > 3:
		return "frequent"
	case perDay > 1:
		return "occasional"
	default:
		return "sporadic"
	}
}

func sessionLength(msgs []models.Message) string {
	if len(msgs) == 0 {
		return "brief"
	}
	sessions := 1
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Sub(msgs[i-1].CreatedAt) > sessionGap {
			sessions++
		}
	}
	avg := float64(len(msgs)) / float64(sessions)
	switch {
	case avg > 20:
		return "extended"
	case avg > 8:
		return "moderate"
	default:
		return "brief"
	}
}

func (a *Analyzer) preferences(messages []models.Message) models.UserPreferences {
	u := userMessages(messages)

	style := "balanced_conversation"
	if u.hasAvg && u.avg > 100 {
		style = "detailed_discussions"
	} else if u.hasAvg && u.avg < 30 {
		style = "quick_exchanges"
	}

	return models.UserPreferences{
		ConversationStyle:      style,
		TopicInterests:         nonNil(lexicon.MatchLabels(u.text, lexicon.TopicInterestRules)),
		EmotionalSupport:       nonNil(lexicon.MatchLabels(u.text, lexicon.EmotionalSupportRules)),
		IntimacyPreferences:    nonNil(lexicon.MatchLabels(u.text, lexicon.IntimacyPreferenceRules)),
		CommunicationFrequency: communicationFrequency(u.msgs),
		PersonalBoundaries:     nonNil(lexicon.MatchLabels(u.text, lexicon.PersonalBoundaryRules)),
	}
}

func communicationFrequency(msgs []models.Message) string {
	days := 1.0
	if len(msgs) > 1 {
		days = msgs[len(msgs)-1].CreatedAt.Sub(msgs[0].CreatedAt).Hours() / 24
	}
	perDay := float64(len(msgs)) / days
	switch {
	case perDay > 20:
		return "very_frequent"
	case perDay > 10:
		return "frequent"
	case perDay > 3:
		return "regular"
	case perDay > 1:
		return "occasional"
	default:
		return "infrequent"
	}
}

// history covers every message, not only the user's.
func history(messages []models.Message) models.RelationshipHistory {
	duration := 0
	if len(messages) > 0 {
		duration = int(messages[len(messages)-1].CreatedAt.Sub(messages[0].CreatedAt).Hours() / 24)
	}

	stages := []string{"initiation"}
	if len(messages) > 20 {
		stages = append(stages, "getting_comfortable")
	}
	if len(messages) > 50 {
		stages = append(stages, "deepening_connection")
	}
	if len(messages) > 100 {
		stages = append(stages, "established_relationship")
	}

	return models.RelationshipHistory{
		TotalMessages:        len(messages),
		RelationshipDuration: duration,
		SignificantMoments:   moments(messages),
		EvolutionStages:      stages,
	}
}

// moments keeps the last ten matches ordered by descending impact.
func moments(messages []models.Message) []models.ProfileMoment {
	out := []models.ProfileMoment{}
	for _, m := range messages {
		rule, ok := lexicon.FirstMoment(strings.ToLower(m.Content), lexicon.ProfileMomentRules)
		if !ok {
			continue
		}
		out = append(out, models.ProfileMoment{
			Type:            rule.Type,
			Description:     truncate(m.Content, descriptionCap) + "...",
			Timestamp:       m.CreatedAt,
			EmotionalImpact: rule.Score,
		})
	}
	if len(out) > momentCap {
		out = out[len(out)-momentCap:]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EmotionalImpact > out[j].EmotionalImpact })
	return out
}

// confidence is computed over all messages.
func confidence(messages []models.Message, t models.PersonalityTraits) float64 {
	score := min(0.5, float64(len(messages))/100)
	score += 0.05 * float64(len(t.Interests)+len(t.Values)+len(t.EmotionalNeeds))
	if len(messages) > 0 {
		total := 0
		for _, m := range messages {
			total += len(m.Content)
		}
		score += min(0.2, float64(total)/float64(len(messages))/200)
	}
	return min(1, score)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
