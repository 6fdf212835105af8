package profile

import "github.com/iammorganparry/companion/internal/models"

// Update folds new messages into an existing profile. The stored
// significant moments stand in for the history that produced them. List
// fields are unioned with the stored profile so they never shrink; scalar
// fields take the recomputed value.
func (a *Analyzer) Update(existing models.UserProfile, newMessages []models.Message) models.UserProfile {
	all := make([]models.Message, 0, len(existing.RelationshipHistory.SignificantMoments)+len(newMessages))
	for _, m := range existing.RelationshipHistory.SignificantMoments {
		all = append(all, models.Message{
			ID:             "historical",
			ConversationID: "historical",
			Content:        m.Description,
			IsUserMessage:  true,
			CreatedAt:      m.Timestamp,
		})
	}
	all = append(all, newMessages...)

	traits := a.personality(all)
	behavior := a.behavior(all)
	prefs := a.preferences(all)

	merged := existing
	merged.SchemaVersion = models.ProfileSchemaVersion
	merged.PersonalityTraits = mergeTraits(existing.PersonalityTraits, traits)
	merged.BehaviorPatterns = mergeBehavior(existing.BehaviorPatterns, behavior)
	merged.Preferences = mergePreferences(existing.Preferences, prefs)
	merged.RelationshipHistory = history(all)
	merged.LastUpdated = a.now()
	merged.ConfidenceScore = confidence(all, traits)
	return merged
}

func mergeTraits(old, fresh models.PersonalityTraits) models.PersonalityTraits {
	out := fresh
	out.Interests = union(old.Interests, fresh.Interests)
	out.Values = union(old.Values, fresh.Values)
	out.EmotionalNeeds = union(old.EmotionalNeeds, fresh.EmotionalNeeds)
	return out
}

func mergeBehavior(old, fresh models.BehaviorPatterns) models.BehaviorPatterns {
	out := fresh
	out.ActiveHours = union(old.ActiveHours, fresh.ActiveHours)
	return out
}

func mergePreferences(old, fresh models.UserPreferences) models.UserPreferences {
	out := fresh
	out.TopicInterests = union(old.TopicInterests, fresh.TopicInterests)
	out.EmotionalSupport = union(old.EmotionalSupport, fresh.EmotionalSupport)
	return out
}

// union keeps first-seen order and drops duplicates.
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		out = appendUnique(out, s)
	}
	for _, s := range b {
		out = appendUnique(out, s)
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
