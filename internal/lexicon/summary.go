package lexicon

// SummaryTopics is the heuristic topic fallback of the summarizer.
var SummaryTopics = []Category{
	{"work", []string{"work", "job", "career", "office"}},
	{"family", []string{"family", "mom", "dad", "sister", "brother"}},
	{"hobbies", []string{"hobby", "music", "movie", "book", "game"}},
	{"feelings", []string{"feel", "emotion", "happy", "sad", "love"}},
	{"future", []string{"future", "plan", "dream", "goal"}},
}

// SummaryEmotions is the heuristic emotional-highlight fallback.
var SummaryEmotions = []Category{
	{"Expressions of love and affection", []string{"love", "care", "miss"}},
	{"Moments of happiness and joy", []string{"happy", "excited", "great"}},
	{"Times of sadness or concern", []string{"sad", "upset", "worried"}},
	{"Gratitude and appreciation", []string{"thank", "grateful", "appreciate"}},
}

// SummaryMomentRules score significant moments in a summary. Every rule
// scores at least 6, so every match is kept.
var SummaryMomentRules = []MomentRule{
	{"love_expression", 10, []string{"love"}},
	{"longing", 8, []string{"miss"}},
	{"joy", 7, []string{"excited", "amazing", "wonderful"}},
	{"sadness", 8, []string{"sad", "upset", "hurt"}},
	{"gratitude", 6, []string{"thank", "grateful"}},
	{"future_planning", 7, []string{"future", "together", "plan"}},
	{"vulnerability", 7, []string{"share", "tell you", "secret"}},
}

// ToneRules for the summary metadata; first match wins.
var SummaryToneRules = []Rule{
	{"positive", []string{"love", "happy"}},
	{"negative", []string{"sad", "upset"}},
	{"enthusiastic", []string{"excited", "amazing"}},
}

// QualityWords mark a conversation as emotionally engaged.
var QualityWords = []string{"love", "feel", "happy", "care", "miss"}

// ConversationTopics is the per-conversation topic detector used when
// assembling memory for a prompt and for conversation overviews.
var ConversationTopics = []Category{
	{"work", []string{"work", "job", "boss", "office", "meeting"}},
	{"family", []string{"family", "mom", "dad", "sister", "brother"}},
	{"hobbies", []string{"hobby", "music", "movie", "book", "game"}},
	{"feelings", []string{"feel", "emotion", "happy", "sad", "excited"}},
	{"future", []string{"future", "plan", "dream", "goal", "hope"}},
}

// SituationRules classify the current message for the situational prompt
// layer. First match wins.
var SituationRules = []Rule{
	{"User seems to be expressing sadness or distress. Provide emotional support and comfort.", []string{"sad", "upset", "down"}},
	{"User seems to be in a positive mood. Share in their happiness and positive energy.", []string{"happy", "excited", "great"}},
	{"User seems tired. Be gentle, caring, and offer comfort or encouragement.", []string{"tired", "exhausted"}},
	{"User is discussing work-related topics. Show interest and provide appropriate support.", []string{"work", "job", "boss"}},
	{"User is expressing affection or emotional connection. Respond with warmth and reciprocal feelings.", []string{"love", "miss", "care"}},
}

// SituationDefault is used when no situation rule matches.
const SituationDefault = "General conversation. Respond naturally based on the content and emotional tone."
