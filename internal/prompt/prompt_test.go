package prompt

import (
	"strings"
	"testing"

	"github.com/iammorganparry/companion/internal/models"
)

var emma = models.Persona{Name: "Emma", Traits: []string{"caring", "playful"}}

func TestBuildSmartPromptDefaults(t *testing.T) {
	got := BuildSmartPrompt(DefaultSmartContext(emma, "hello there"))

	for _, want := range []string{
		"You are Emma, an AI companion with these core traits: caring, playful.",
		"- Relationship stage: new",
		"- Intimacy level: 3/10",
		"You're still building trust",
		"- Mood: neutral (intensity: 5/10)",
		"- Starting a new conversation",
		"You're in a moderately neutral mood.",
		"This appears to be early in your conversation.",
		"No significant emotional moments recorded yet.",
		"- Communication style: discovering",
		"Learning their preferences",
		"This appears to be a new conversation or topic. Focus on being welcoming and engaging.",
		generalSituation,
		`Current message from user: "hello there"`,
		"Respond as Emma with emotional intelligence",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(got, "Relevant Conversation Context") {
		t.Error("empty semantic context rendered result snippets")
	}
}

const generalSituation = "General conversation. Respond naturally based on the content and emotional tone."

func TestBuildSmartPromptLayerOrder(t *testing.T) {
	got := BuildSmartPrompt(DefaultSmartContext(emma, "hi"))
	headers := []string{
		"# Character Foundation",
		"# Emotional Intelligence",
		"# Memory and Relationship History",
		"# Conversation Context",
		"# Situational Awareness",
		"# Response Guidelines and Reasoning",
		"Current message from user",
	}
	last := -1
	for _, h := range headers {
		i := strings.Index(got, h)
		if i <= last {
			t.Fatalf("%q out of order (at %d, previous %d)", h, i, last)
		}
		last = i
	}
}

func TestBuildSmartPromptDeterministic(t *testing.T) {
	c := DefaultSmartContext(emma, "I love you")
	if BuildSmartPrompt(c) != BuildSmartPrompt(c) {
		t.Error("prompt not deterministic")
	}
}

func TestSemanticLayer(t *testing.T) {
	long := strings.Repeat("a", 150)
	c := DefaultSmartContext(emma, "hi")
	c.SemanticContext = []models.SemanticResult{
		{Text: long}, {Text: "second"}, {Text: "third"}, {Text: "fourth"},
	}
	got := BuildSmartPrompt(c)

	if !strings.Contains(got, "1. "+strings.Repeat("a", 100)+"...\n") {
		t.Error("first snippet not truncated to 100 chars")
	}
	if !strings.Contains(got, "2. second...") || !strings.Contains(got, "3. third...") {
		t.Error("missing top results")
	}
	if strings.Contains(got, "fourth") {
		t.Error("more than three results rendered")
	}
	if strings.Contains(got, "welcoming and engaging") {
		t.Error("new-conversation text rendered with results present")
	}
}

func TestMemoryLayer(t *testing.T) {
	c := DefaultSmartContext(emma, "hi")
	c.ConversationMemory.RecentTopics = []string{"work", "music"}
	c.ConversationMemory.EmotionalMoments = []models.EmotionalMoment{{Topic: "promotion", Emotion: "happy", Significance: 7}}
	c.RelationshipContext.SharedExperiences = []string{"movie night"}
	c.RelationshipContext.UserPreferences = []string{"short replies"}
	c.UserMood = "sad"
	c.TimeOfDay = "evening"
	got := BuildSmartPrompt(c)

	for _, want := range []string{
		"Recent conversation topics: work, music",
		"Significant emotional moments: promotion (happy)",
		"Shared experiences: movie night",
		"## User Preferences:\nshort replies",
		"The user seems to be feeling sad.",
		"Consider that it's evening - adjust",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestIntimacyTiers(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{8, "deep, intimate connection"},
		{7, "comfortable, growing relationship"},
		{5, "comfortable, growing relationship"},
		{4, "still building trust"},
	}
	for _, tt := range tests {
		c := DefaultSmartContext(emma, "hi")
		c.RelationshipContext.IntimacyLevel = tt.level
		if got := BuildSmartPrompt(c); !strings.Contains(got, tt.want) {
			t.Errorf("intimacy %d: missing %q", tt.level, tt.want)
		}
	}
}

func TestMoodGuidance(t *testing.T) {
	tests := []struct {
		mood      models.Mood
		intensity int
		want      string
	}{
		{models.MoodHappy, 8, "You're feeling very happy and upbeat."},
		{models.MoodSad, 5, "You're feeling moderately sad."},
		{models.MoodRomantic, 4, "You're feeling slightly romantic."},
		{models.MoodNeutral, 9, "You're in a very neutral mood."},
		{models.Mood("bored"), 1, "You're in a slightly neutral mood."},
	}
	for _, tt := range tests {
		t.Run(string(tt.mood), func(t *testing.T) {
			if got := MoodGuidance(tt.mood, tt.intensity); !strings.HasPrefix(got, tt.want) {
				t.Errorf("got %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestSituation(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"I'm so sad and happy", "User seems to be expressing sadness"},
		{"what a GREAT day", "User seems to be in a positive mood"},
		{"so exhausted", "User seems tired"},
		{"my boss again", "User is discussing work-related topics"},
		{"I miss you", "User is expressing affection"},
		{"hello", "General conversation"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := Situation(tt.msg); !strings.HasPrefix(got, tt.want) {
				t.Errorf("got %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestBuildConversationContext(t *testing.T) {
	if got := BuildConversationContext(nil, "hi"); got != `This is the start of a new conversation. Current message: "hi"` {
		t.Errorf("empty context = %q", got)
	}

	var results []models.SemanticResult
	for _, s := range []string{"r1", "r2", "r3", "r4", "r5", "r6"} {
		results = append(results, models.SemanticResult{Text: s})
	}
	want := "Recent conversation context:\n" +
		`Previous: "r5"` + "\n" + `Previous: "r4"` + "\n" + `Previous: "r3"` + "\n" +
		`Previous: "r2"` + "\n" + `Previous: "r1"` + "\n\n" + `Current message: "hi"`
	if got := BuildConversationContext(results, "hi"); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}
