package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/iammorganparry/companion/internal/models"
)

// Insights renders a profile as human-readable statements. A nil profile
// yields empty lists.
func Insights(p *models.UserProfile) models.ProfileInsights {
	if p == nil {
		return models.ProfileInsights{
			PersonalityInsights:  []string{},
			BehaviorInsights:     []string{},
			PreferenceInsights:   []string{},
			RelationshipInsights: []string{},
		}
	}

	t := p.PersonalityTraits
	b := p.BehaviorPatterns
	return models.ProfileInsights{
		PersonalityInsights: []string{
			"Communication style: " + t.CommunicationStyle,
			"Personality type: " + t.PersonalityType,
			"Key interests: " + strings.Join(first(t.Interests, 3), ", "),
			"Core values: " + strings.Join(first(t.Values, 3), ", "),
		},
		BehaviorInsights: []string{
			"Active during: " + strings.Join(b.ActiveHours, ", "),
			"Conversation frequency: " + b.ConversationFrequency,
			"Session length preference: " + b.SessionLength,
			"Relationship style: " + b.RelationshipStyle,
		},
		PreferenceInsights: []string{
			fmt.Sprintf("Prefers %s responses", t.ResponsePreferences.Length),
			"Tone preference: " + t.ResponsePreferences.Tone,
			fmt.Sprintf("Intimacy comfort level: %d/10", t.ResponsePreferences.IntimacyLevel),
			"Communication frequency: " + p.Preferences.CommunicationFrequency,
		},
		RelationshipInsights: []string{
			fmt.Sprintf("Total messages: %d", p.RelationshipHistory.TotalMessages),
			fmt.Sprintf("Relationship duration: %d days", p.RelationshipHistory.RelationshipDuration),
			"Evolution stages: " + strings.Join(p.RelationshipHistory.EvolutionStages, " → "),
			fmt.Sprintf("Confidence score: %d%%", int(math.Round(p.ConfidenceScore*100))),
		},
	}
}

func first(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
