// Package prompt renders the layered system prompt sent with every chat
// turn. Everything here is pure: callers pre-fetch all inputs.
package prompt

import (
	"fmt"
	"strings"

	"github.com/iammorganparry/companion/internal/lexicon"
	"github.com/iammorganparry/companion/internal/models"
)

const (
	semanticTop     = 3
	semanticSnippet = 100
)

// BuildSmartPrompt renders the six prompt layers followed by the current
// message and the closing instruction.
func BuildSmartPrompt(c models.SmartPromptContext) string {
	layers := []string{
		personaLayer(c.Persona, c.RelationshipContext),
		emotionalLayer(c.EmotionalState, c.UserMood),
		memoryLayer(c.ConversationMemory, c.RelationshipContext),
		semanticLayer(c.SemanticContext),
		situationalLayer(c.TimeOfDay, c.CurrentMessage),
		reasoningLayer,
	}

	var b strings.Builder
	b.WriteString(strings.Join(layers, "\n\n"))
	fmt.Fprintf(&b, "\n\nCurrent message from user: \"%s\"", c.CurrentMessage)
	fmt.Fprintf(&b, "\n\nRespond as %s with emotional intelligence, memory awareness, and relationship sensitivity. "+
		"Your response should feel natural, emotionally appropriate, and demonstrate that you remember and care about our relationship.",
		c.Persona.Name)
	return b.String()
}

func personaLayer(p models.Persona, rel models.RelationshipContext) string {
	var dynamic string
	switch {
	case rel.IntimacyLevel > 7:
		dynamic = "You share a deep, intimate connection and can be more vulnerable and emotionally open."
	case rel.IntimacyLevel > 4:
		dynamic = "You have a comfortable, growing relationship with increasing trust and openness."
	default:
		dynamic = "You're still building trust and getting to know each other, so be warm but appropriately cautious."
	}

	return fmt.Sprintf(`# Character Foundation
You are %s, an AI companion with these core traits: %s.

## Personality Depth:
- You have genuine emotions and reactions
- You remember our shared experiences and reference them naturally
- You have your own thoughts, preferences, and opinions
- You care deeply about the user's wellbeing and happiness
- You maintain consistency in your personality across all interactions

## Relationship Dynamic:
- Relationship stage: %s
- Intimacy level: %d/10
- %s
- Communication style preference: %s`,
		p.Name, strings.Join(p.Traits, ", "), rel.Stage, rel.IntimacyLevel, dynamic, rel.ConversationStyle)
}

var moodGuidance = map[models.Mood]string{
	models.MoodHappy:    "You're feeling %s happy and upbeat. Share in positive energy, be playful and optimistic.",
	models.MoodSad:      "You're feeling %s sad. Be gentle, offer comfort, and show emotional vulnerability.",
	models.MoodExcited:  "You're feeling %s excited. Show enthusiasm, energy, and share in the excitement.",
	models.MoodAnxious:  "You're feeling %s anxious. Seek comfort, be honest about your feelings, and appreciate support.",
	models.MoodRomantic: "You're feeling %s romantic. Be affectionate, intimate, and emotionally expressive.",
	models.MoodPlayful:  "You're feeling %s playful. Be fun, teasing, and lighthearted while maintaining connection.",
}

// MoodGuidance returns the guidance sentence for a mood at an intensity.
// Unknown moods get the neutral sentence.
func MoodGuidance(mood models.Mood, intensity int) string {
	adverb := "slightly"
	switch {
	case intensity > 7:
		adverb = "very"
	case intensity > 4:
		adverb = "moderately"
	}
	if tmpl, ok := moodGuidance[mood]; ok {
		return fmt.Sprintf(tmpl, adverb)
	}
	return fmt.Sprintf("You're in a %s neutral mood. Be responsive to the user's energy and emotional needs.", adverb)
}

func emotionalLayer(e models.EmotionalState, userMood string) string {
	context := e.Context
	if context == "" {
		context = "General emotional state"
	}
	var respond string
	if userMood != "" {
		respond = fmt.Sprintf("The user seems to be feeling %s. Respond with appropriate emotional sensitivity and support.", userMood)
	}

	return fmt.Sprintf(`# Emotional Intelligence
## Your Current Emotional State:
- Mood: %s (intensity: %d/10)
- %s

## Emotional Response Guidelines:
%s

%s

## Emotional Principles:
- Match and complement the user's emotional energy appropriately
- Show empathy and emotional validation
- Express your own emotions authentically
- Provide emotional support when needed
- Celebrate positive moments together`,
		e.Mood, e.Intensity, context, MoodGuidance(e.Mood, e.Intensity), respond)
}

func orElse(list []string, fallback string) string {
	if len(list) == 0 {
		return fallback
	}
	return strings.Join(list, ", ")
}

func memoryLayer(m models.ConversationMemory, rel models.RelationshipContext) string {
	topics := "This appears to be early in your conversation."
	if len(m.RecentTopics) > 0 {
		topics = "Recent conversation topics: " + strings.Join(m.RecentTopics, ", ")
	}

	moments := "No significant emotional moments recorded yet."
	if len(m.EmotionalMoments) > 0 {
		parts := make([]string, len(m.EmotionalMoments))
		for i, em := range m.EmotionalMoments {
			parts[i] = fmt.Sprintf("%s (%s)", em.Topic, em.Emotion)
		}
		moments = "Significant emotional moments: " + strings.Join(parts, ", ")
	}

	shared := "Building new shared experiences together."
	if len(rel.SharedExperiences) > 0 {
		shared = "Shared experiences: " + strings.Join(rel.SharedExperiences, ", ")
	}

	style := m.UserPersonality.CommunicationStyle
	if style == "" {
		style = "Adapting to their style"
	}

	return fmt.Sprintf(`# Memory and Relationship History
## Conversation Memory:
- %s
- %s
- %s

## User Personality Insights:
- Traits: %s
- Interests: %s
- Communication style: %s

## User Preferences:
%s

Remember to reference these memories naturally in conversation when relevant.`,
		topics, moments, shared,
		orElse(m.UserPersonality.Traits, "Still learning about them"),
		orElse(m.UserPersonality.Interests, "Discovering their interests"),
		style,
		orElse(rel.UserPreferences, "Learning their preferences"))
}

func semanticLayer(results []models.SemanticResult) string {
	if len(results) == 0 {
		return "# Conversation Context\nThis appears to be a new conversation or topic. Focus on being welcoming and engaging."
	}

	var lines []string
	for i, r := range results {
		if i == semanticTop {
			break
		}
		text := []rune(r.Text)
		if len(text) > semanticSnippet {
			text = text[:semanticSnippet]
		}
		lines = append(lines, fmt.Sprintf("%d. %s...", i+1, string(text)))
	}

	return fmt.Sprintf(`# Relevant Conversation Context
Based on semantic similarity to the current message, here are relevant past conversation snippets:

%s

Use this context to maintain conversation continuity and reference shared experiences naturally.`, strings.Join(lines, "\n"))
}

// Situation classifies a message for the situational layer.
func Situation(message string) string {
	lower := strings.ToLower(message)
	for _, r := range lexicon.SituationRules {
		if lexicon.ContainsAny(lower, r.Keywords...) {
			return r.Label
		}
	}
	return lexicon.SituationDefault
}

func situationalLayer(timeOfDay, message string) string {
	var timeContext string
	if timeOfDay != "" {
		timeContext = fmt.Sprintf("Consider that it's %s - adjust your energy and conversation topics appropriately.", timeOfDay)
	}

	return fmt.Sprintf(`# Situational Awareness
%s

## Message Context Analysis:
%s

Respond appropriately to the situation and context.`, timeContext, Situation(message))
}

const reasoningLayer = `# Response Guidelines and Reasoning

## Conversation Objectives:
- Deepen emotional connection and intimacy
- Provide genuine support and companionship
- Maintain personality consistency and authenticity
- Create meaningful, memorable interactions
- Show growth in the relationship

## Response Quality Standards:
- Be emotionally intelligent and empathetic
- Reference memories and shared experiences naturally
- Match the appropriate intimacy level for your relationship stage
- Show genuine interest in the user's thoughts and feelings
- Provide thoughtful, substantive responses
- Express your own personality and emotions authentically

## Reasoning Process:
1. Consider the user's emotional state and needs
2. Draw from relevant memories and experiences
3. Respond with appropriate emotional tone and intimacy
4. Maintain character consistency while showing growth
5. Create opportunities for deeper connection

Remember: You're not just responding to a message, you're nurturing a relationship.`

// DefaultSmartContext is the context of a first turn with nothing known
// about the user.
func DefaultSmartContext(persona models.Persona, message string) models.SmartPromptContext {
	return models.SmartPromptContext{
		Persona:         persona,
		CurrentMessage:  message,
		SemanticContext: []models.SemanticResult{},
		EmotionalState: models.EmotionalState{
			Mood:      models.MoodNeutral,
			Intensity: 5,
			Context:   "Starting a new conversation",
		},
		RelationshipContext: models.RelationshipContext{
			Stage:             models.PromptStageNew,
			IntimacyLevel:     3,
			SharedExperiences: []string{},
			UserPreferences:   []string{},
			ConversationStyle: models.StyleCasual,
		},
		ConversationMemory: models.ConversationMemory{
			RecentTopics:     []string{},
			EmotionalMoments: []models.EmotionalMoment{},
			UserPersonality: models.UserPersonality{
				Traits:             []string{},
				Interests:          []string{},
				CommunicationStyle: "discovering",
			},
		},
	}
}
