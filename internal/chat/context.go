package chat

import (
	"strings"
	"time"

	"github.com/iammorganparry/companion/internal/emotion"
	"github.com/iammorganparry/companion/internal/lexicon"
	"github.com/iammorganparry/companion/internal/models"
)

const (
	historyWindow   = 20
	moodWindow      = 5
	topicWindow     = 10
	styleWindow     = 10
	toneWindow      = 3
	overviewWindow  = 5
	snippetCap      = 5
	snippetLen      = 50
	momentTopicLen  = 30
	minStyleHistory = 3
)

// stageBands map prior message volume to a relationship stage, highest first.
var stageBands = []struct {
	above    int
	stage    models.PromptStage
	intimacy int
}{
	{100, models.PromptStageLongTerm, 8},
	{50, models.PromptStageIntimate, 7},
	{20, models.PromptStageComfortable, 5},
	{5, models.PromptStageGettingToKnow, 4},
}

var intimacyWords = []string{"love", "miss", "care"}

var moodRules = []struct {
	keywords []string
	state    models.EmotionalState
}{
	{[]string{"happy", "excited", "great"}, models.EmotionalState{Mood: models.MoodHappy, Intensity: 7, Context: "Positive conversation tone"}},
	{[]string{"sad", "upset", "down"}, models.EmotionalState{Mood: models.MoodSad, Intensity: 6, Context: "User expressing sadness"}},
	{[]string{"love", "romantic", "kiss"}, models.EmotionalState{Mood: models.MoodRomantic, Intensity: 8, Context: "Romantic conversation"}},
	{[]string{"fun", "laugh", "joke"}, models.EmotionalState{Mood: models.MoodPlayful, Intensity: 6, Context: "Playful interaction"}},
}

var userMoodRules = []lexicon.Rule{
	{Label: "tired", Keywords: []string{"tired", "exhausted"}},
	{Label: "stressed", Keywords: []string{"stressed", "overwhelmed"}},
	{Label: "happy", Keywords: []string{"happy", "great"}},
	{Label: "sad", Keywords: []string{"sad", "down"}},
	{Label: "excited", Keywords: []string{"excited", "amazing"}},
}

var toneRules = []lexicon.Rule{
	{Label: "positive", Keywords: []string{"happy", "great"}},
	{Label: "negative", Keywords: []string{"sad", "upset"}},
	{Label: "romantic", Keywords: []string{"love", "miss"}},
}

var momentRules = []lexicon.MomentRule{
	{Type: "love", Score: 9, Keywords: []string{"love"}},
	{Type: "happiness", Score: 7, Keywords: []string{"happy"}},
	{Type: "sadness", Score: 8, Keywords: []string{"sad"}},
	{Type: "excitement", Score: 6, Keywords: []string{"excited"}},
}

var traitRules = []lexicon.Rule{
	{Label: "humorous", Keywords: []string{"funny", "laugh"}},
	{Label: "hardworking", Keywords: []string{"work", "busy"}},
	{Label: "social", Keywords: []string{"family", "friend"}},
}

var interestRules = []lexicon.Rule{
	{Label: "music", Keywords: []string{"music"}},
	{Label: "movies", Keywords: []string{"movie", "film"}},
	{Label: "reading", Keywords: []string{"book", "read"}},
	{Label: "gaming", Keywords: []string{"game", "play"}},
}

// assembler derives a prompt context from a conversation. recent is the
// history preceding the current message, newest first.
type assembler struct {
	loc *time.Location
	now func() time.Time
}

func (a assembler) build(persona models.Persona, message string, semantic []models.SemanticResult,
	recent []models.Message, priorCount int, stored *models.ConversationSummary, profile *models.UserProfile,
) models.SmartPromptContext {
	prior := oldestFirst(recent)
	c := models.SmartPromptContext{
		Persona:             persona,
		CurrentMessage:      message,
		SemanticContext:     semantic,
		EmotionalState:      emotionalState(recent, message),
		RelationshipContext: relationshipContext(recent, priorCount),
		ConversationMemory:  conversationMemory(recent),
		TimeOfDay:           a.timeOfDay(),
		UserMood:            a.userMood(message, prior),
	}
	if c.SemanticContext == nil {
		c.SemanticContext = []models.SemanticResult{}
	}
	// The volume band picks the stage; the detector can only deepen intimacy.
	if st := emotion.DetectStage(prior); st.IntimacyLevel > c.RelationshipContext.IntimacyLevel {
		c.RelationshipContext.IntimacyLevel = st.IntimacyLevel
	}
	enrich(&c, stored, profile)
	return c
}

func (a assembler) timeOfDay() string {
	hour := a.now().In(a.loc).Hour()
	return strings.ReplaceAll(emotion.TimeOfDay(hour), "_", " ")
}

func relationshipContext(recent []models.Message, priorCount int) models.RelationshipContext {
	stage, intimacy := models.PromptStageNew, 3
	for _, b := range stageBands {
		if priorCount > b.above {
			stage, intimacy = b.stage, b.intimacy
			break
		}
	}

	indicators := 0
	for _, m := range recent {
		if lexicon.ContainsAny(strings.ToLower(m.Content), intimacyWords...) {
			indicators++
		}
	}

	return models.RelationshipContext{
		Stage:             stage,
		IntimacyLevel:     min(10, intimacy+indicators/3),
		SharedExperiences: snippets(recent, "remember when", "that time"),
		UserPreferences:   snippets(recent, "i like", "i love", "i prefer"),
		ConversationStyle: conversationStyle(recent),
	}
}

// snippets returns the opening of each message containing a phrase.
func snippets(msgs []models.Message, phrases ...string) []string {
	out := []string{}
	for _, m := range msgs {
		if len(out) == snippetCap {
			break
		}
		if lexicon.ContainsAny(strings.ToLower(m.Content), phrases...) {
			out = append(out, clip(m.Content, snippetLen)+"...")
		}
	}
	return out
}

func conversationStyle(recent []models.Message) models.ConversationStyle {
	if len(recent) < minStyleHistory {
		return models.StyleCasual
	}
	text := joinLower(head(recent, styleWindow))
	switch {
	case strings.Contains(text, "feel") && strings.Contains(text, "think"):
		return models.StyleDeep
	case lexicon.ContainsAny(text, "love", "romantic"):
		return models.StyleFlirty
	case lexicon.ContainsAny(text, "support", "help"):
		return models.StyleSupportive
	}
	return models.StyleCasual
}

// detectedMoods maps detector emotions onto the prompt's mood vocabulary.
var detectedMoods = map[models.Emotion]models.Mood{
	models.EmotionHappy:    models.MoodHappy,
	models.EmotionSad:      models.MoodSad,
	models.EmotionAnxious:  models.MoodAnxious,
	models.EmotionRomantic: models.MoodRomantic,
	models.EmotionPlayful:  models.MoodPlayful,
}

// emotionalState picks the mood from the recent conversation. When the
// current message carries emotion keywords, its detected intensity and
// triggers replace the rule's defaults.
func emotionalState(recent []models.Message, message string) models.EmotionalState {
	state := models.EmotionalState{Mood: models.MoodNeutral, Intensity: 5, Context: "General conversation"}
	text := joinLower(head(recent, moodWindow)) + " " + strings.ToLower(message)
	for _, r := range moodRules {
		if lexicon.ContainsAny(text, r.keywords...) {
			state = r.state
			break
		}
	}

	d := emotion.Detect(message)
	if d.Confidence == 0 {
		return state
	}
	if state.Mood == models.MoodNeutral {
		if m, ok := detectedMoods[d.PrimaryEmotion]; ok {
			state.Mood = m
		}
	}
	state.Intensity = d.Intensity
	state.Context = d.Context
	return state
}

func conversationMemory(recent []models.Message) models.ConversationMemory {
	return models.ConversationMemory{
		RecentTopics:     Topics(head(recent, topicWindow)),
		EmotionalMoments: emotionalMoments(recent),
		UserPersonality:  userPersonality(recent),
	}
}

// Topics lists the conversation topics mentioned in msgs, in order of first
// mention.
func Topics(msgs []models.Message) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range msgs {
		content := strings.ToLower(m.Content)
		for _, c := range lexicon.ConversationTopics {
			if !seen[c.Name] && lexicon.ContainsAny(content, c.Keywords...) {
				seen[c.Name] = true
				out = append(out, c.Name)
			}
		}
	}
	return out
}

func emotionalMoments(recent []models.Message) []models.EmotionalMoment {
	out := []models.EmotionalMoment{}
	for _, m := range recent {
		if len(out) == snippetCap {
			break
		}
		rule, ok := lexicon.FirstMoment(strings.ToLower(m.Content), momentRules)
		if !ok {
			continue
		}
		out = append(out, models.EmotionalMoment{
			Topic:        clip(m.Content, momentTopicLen) + "...",
			Emotion:      rule.Type,
			Significance: rule.Score,
		})
	}
	return out
}

func userPersonality(recent []models.Message) models.UserPersonality {
	var user []models.Message
	for _, m := range recent {
		if m.IsUserMessage {
			user = append(user, m)
		}
	}
	text := joinLower(user)

	style := "concise"
	if len(text) > 500 {
		style = "detailed"
	}
	return models.UserPersonality{
		Traits:             nonNil(lexicon.MatchLabels(text, traitRules)),
		Interests:          nonNil(lexicon.MatchLabels(text, interestRules)),
		CommunicationStyle: style,
	}
}

// UserMood reads the user's mood from the current message alone.
func UserMood(message string) string {
	lower := strings.ToLower(message)
	for _, r := range userMoodRules {
		if lexicon.ContainsAny(lower, r.Keywords...) {
			return r.Label
		}
	}
	return "neutral"
}

// userMood falls back from the keyword rules to the detected emotion of the
// message, then to the mood of the user's previous messages.
func (a assembler) userMood(message string, prior []models.Message) string {
	if m := UserMood(message); m != "neutral" {
		return m
	}
	if d := emotion.Detect(message); d.Confidence > 0 {
		return string(d.PrimaryEmotion)
	}
	var user []models.Message
	for _, m := range prior {
		if m.IsUserMessage {
			user = append(user, m)
		}
	}
	return string(emotion.AnalyzePatterns(user, a.loc).CurrentMood)
}

// Tone labels the emotional tone of the newest messages.
func Tone(recent []models.Message) string {
	if len(recent) == 0 {
		return "neutral"
	}
	text := joinLower(head(recent, toneWindow))
	for _, r := range toneRules {
		if lexicon.ContainsAny(text, r.Keywords...) {
			return r.Label
		}
	}
	return "neutral"
}

// enrich folds what the background jobs learned about the conversation and
// the user into the heuristic context.
func enrich(c *models.SmartPromptContext, stored *models.ConversationSummary, profile *models.UserProfile) {
	mem := &c.ConversationMemory
	if stored != nil {
		mem.RecentTopics = union(mem.RecentTopics, stored.KeyTopics)
		rel := &c.RelationshipContext
		rel.SharedExperiences = union(rel.SharedExperiences, stored.RelationshipMilestones)
		if len(rel.SharedExperiences) > snippetCap {
			rel.SharedExperiences = rel.SharedExperiences[:snippetCap]
		}
	}
	if profile != nil {
		t := profile.PersonalityTraits
		mem.UserPersonality.Interests = union(mem.UserPersonality.Interests, t.Interests)
		mem.UserPersonality.Traits = union(mem.UserPersonality.Traits, t.Values)
		c.RelationshipContext.UserPreferences = union(c.RelationshipContext.UserPreferences, profile.Preferences.TopicInterests)
	}
}

func head(msgs []models.Message, n int) []models.Message {
	if len(msgs) > n {
		return msgs[:n]
	}
	return msgs
}

func joinLower(msgs []models.Message) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = m.Content
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := []string{}
	for _, s := range append(append([]string{}, a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// newestFirst reverses a chronological slice in place.
// oldestFirst returns a reversed copy of a newest-first slice.
func oldestFirst(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}

func newestFirst(msgs []models.Message) []models.Message {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}
