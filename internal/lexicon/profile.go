package lexicon

// CommunicationStyles scores a user's register; ties go to the earlier entry.
var CommunicationStyles = []Category{
	{"verbose", []string{"explain", "detail", "because", "specifically", "elaborate"}},
	{"concise", []string{"yes", "no", "ok", "sure", "fine"}},
	{"emotional", []string{"feel", "heart", "soul", "emotion", "love", "hurt"}},
	{"analytical", []string{"think", "analyze", "consider", "logic", "reason"}},
	{"casual", []string{"hey", "yeah", "cool", "awesome", "whatever"}},
	{"formal", []string{"please", "thank you", "appreciate", "kindly", "respectfully"}},
}

// EmotionalNeeds are included when any keyword matches.
var EmotionalNeeds = []Category{
	{"validation", []string{"understand", "validate", "support", "agree", "right"}},
	{"comfort", []string{"comfort", "hug", "safe", "secure", "peace"}},
	{"excitement", []string{"fun", "adventure", "exciting", "thrill", "energy"}},
	{"connection", []string{"close", "bond", "together", "share", "connect"}},
	{"independence", []string{"space", "alone", "independent", "freedom", "myself"}},
}

// Values are included only when more than one keyword matches.
var Values = []Category{
	{"family", []string{"family", "parents", "siblings", "children", "relatives"}},
	{"career", []string{"work", "job", "career", "professional", "success"}},
	{"relationships", []string{"friends", "love", "relationship", "partner", "social"}},
	{"personal_growth", []string{"learn", "grow", "improve", "develop", "better"}},
	{"creativity", []string{"create", "art", "music", "write", "design"}},
	{"health", []string{"health", "fitness", "exercise", "wellness", "body"}},
}

// Interests are matched per message.
var Interests = []Category{
	{"technology", []string{"tech", "computer", "software", "app", "digital", "internet"}},
	{"sports", []string{"sport", "game", "team", "play", "exercise", "fitness"}},
	{"music", []string{"music", "song", "band", "artist", "concert", "album"}},
	{"movies", []string{"movie", "film", "cinema", "actor", "director", "series"}},
	{"books", []string{"book", "read", "author", "novel", "story", "literature"}},
	{"travel", []string{"travel", "trip", "vacation", "country", "city", "explore"}},
	{"food", []string{"food", "cook", "restaurant", "recipe", "eat", "cuisine"}},
	{"art", []string{"art", "paint", "draw", "creative", "design", "gallery"}},
	{"nature", []string{"nature", "outdoor", "hiking", "beach", "mountain", "forest"}},
	{"science", []string{"science", "research", "study", "experiment", "discovery"}},
}

// ProfileIntimateWords drive the profile's preferred intimacy level.
var ProfileIntimateWords = []string{"love", "heart", "soul", "deep", "close", "intimate", "special"}

// Rule maps a keyword group to a label.
type Rule struct {
	Label    string
	Keywords []string
}

// PersonalityTypeRules are all applied; every match contributes a label.
var PersonalityTypeRules = []Rule{
	{"Emotional", []string{"feel", "emotion"}},
	{"Analytical", []string{"think", "analyze"}},
	{"Playful", []string{"fun", "joke"}},
	{"Supportive", []string{"help", "support"}},
	{"Adventurous", []string{"adventure", "new"}},
}

// ToneRules are applied in order; a later match overrides an earlier one.
var ToneRules = []Rule{
	{"playful", []string{"fun", "joke"}},
	{"romantic", []string{"love", "romantic"}},
	{"supportive", []string{"help", "support"}},
	{"serious", []string{"serious", "important"}},
}

// RelationshipStyleRules: first match wins, "balanced" otherwise.
var RelationshipStyleRules = []Rule{
	{"clingy", []string{"miss", "always"}},
	{"independent", []string{"space", "independent"}},
	{"distant", []string{"distance", "alone"}},
}

var TopicInterestRules = []Rule{
	{"career", []string{"work", "job"}},
	{"relationships", []string{"family", "friend"}},
	{"hobbies", []string{"hobby", "fun"}},
	{"future_planning", []string{"future", "plan"}},
	{"emotional_topics", []string{"feel", "emotion"}},
}

var EmotionalSupportRules = []Rule{
	{"understanding", []string{"understand", "listen"}},
	{"comfort", []string{"comfort", "hug"}},
	{"encouragement", []string{"encourage", "support"}},
	{"celebration", []string{"celebrate", "happy"}},
}

var IntimacyPreferenceRules = []Rule{
	{"emotional_closeness", []string{"close", "intimate"}},
	{"vulnerability", []string{"share", "open"}},
	{"future_planning", []string{"future", "together"}},
	{"romantic_expression", []string{"romantic", "love"}},
}

var PersonalBoundaryRules = []Rule{
	{"privacy_conscious", []string{"private", "personal"}},
	{"needs_space", []string{"space", "time"}},
	{"takes_time", []string{"slow", "careful"}},
	{"comfort_focused", []string{"comfortable", "ready"}},
}

// MomentRule classifies a significant moment. Rules are evaluated in order
// and the first match wins.
type MomentRule struct {
	Type     string
	Score    int
	Keywords []string
}

// ProfileMomentRules score significant moments on the user profile.
var ProfileMomentRules = []MomentRule{
	{"love_expression", 9, []string{"love"}},
	{"longing", 7, []string{"miss"}},
	{"joy", 6, []string{"happy"}},
	{"sadness", 7, []string{"sad"}},
	{"excitement", 6, []string{"excited"}},
}

// MatchLabels returns the label of every rule with a keyword in text.
func MatchLabels(text string, rules []Rule) []string {
	var out []string
	for _, r := range rules {
		if ContainsAny(text, r.Keywords...) {
			out = append(out, r.Label)
		}
	}
	return out
}

// FirstMoment returns the first moment rule matching text.
func FirstMoment(text string, rules []MomentRule) (MomentRule, bool) {
	for _, r := range rules {
		if ContainsAny(text, r.Keywords...) {
			return r, true
		}
	}
	return MomentRule{}, false
}
