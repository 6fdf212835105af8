package summary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeCompleter struct {
	mu    sync.Mutex
	calls []string
	reply func(prompt string) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []models.ChatMessage, _ llm.Options) (string, error) {
	prompt := msgs[len(msgs)-1].Content
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()
	return f.reply(prompt)
}

func failing(string) (string, error) { return "", errors.New("provider down") }

func canned(prompt string) (string, error) {
	switch {
	case strings.HasPrefix(prompt, "Extract the main topics"):
		return "work, music ,  , travel", nil
	case strings.HasPrefix(prompt, "Identify the most emotionally"):
		return "- felt loved\n* shared worries\n\n• laughed together", nil
	case strings.HasPrefix(prompt, "Identify relationship milestones"):
		return "first date talk", nil
	case strings.HasPrefix(prompt, "Based on these user messages"):
		return "curious\nwarm", nil
	case strings.HasPrefix(prompt, "Update this conversation summary"):
		return "updated summary", nil
	default:
		return "fresh summary", nil
	}
}

func newTestSummarizer(reply func(string) (string, error)) (*Summarizer, *fakeCompleter) {
	fc := &fakeCompleter{reply: reply}
	s := NewSummarizer(fc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return t0.Add(24 * time.Hour) }
	return s, fc
}

func msg(content string, user bool, at time.Duration) models.Message {
	return models.Message{Content: content, IsUserMessage: user, CreatedAt: t0.Add(at)}
}

func conversation() []models.Message {
	return []models.Message{
		msg("I love talking to you, work has been so stressful lately and my boss keeps asking for more", true, 0),
		msg("I'm here for you. Tell me more?", false, time.Minute),
		msg("I miss my family, I feel a bit sad", true, 2*time.Minute),
		msg("   ", true, 3*time.Minute),
		msg("Thank you for listening, let's plan something for the future", true, 2*time.Hour),
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s, fc := newTestSummarizer(canned)
	got := s.Summarize(context.Background(), "c1", []models.Message{msg("  ", true, 0)}, DefaultConfig)

	if got.ID != "summary_c1_empty" {
		t.Errorf("id = %q", got.ID)
	}
	if got.Summary != "No messages to summarize" {
		t.Errorf("summary = %q", got.Summary)
	}
	if got.SummaryMetadata.TimeSpan != "0 minutes" || got.SummaryMetadata.EmotionalTone != "neutral" {
		t.Errorf("metadata = %+v", got.SummaryMetadata)
	}
	if len(fc.calls) != 0 {
		t.Errorf("provider called %d times for empty input", len(fc.calls))
	}
}

func TestSummarizeWithProvider(t *testing.T) {
	s, fc := newTestSummarizer(canned)
	got := s.Summarize(context.Background(), "c1", conversation(), DefaultConfig)

	if got.Summary != "fresh summary" {
		t.Errorf("summary = %q", got.Summary)
	}
	if want := []string{"work", "music", "travel"}; strings.Join(got.KeyTopics, "|") != strings.Join(want, "|") {
		t.Errorf("topics = %v, want %v", got.KeyTopics, want)
	}
	if want := []string{"felt loved", "shared worries", "laughed together"}; strings.Join(got.EmotionalHighlights, "|") != strings.Join(want, "|") {
		t.Errorf("highlights = %v, want %v", got.EmotionalHighlights, want)
	}
	if len(got.UserPersonalityInsights) != 2 {
		t.Errorf("insights = %v", got.UserPersonalityInsights)
	}
	if len(fc.calls) != 5 {
		t.Errorf("provider calls = %d, want 5", len(fc.calls))
	}
	if got.SummaryMetadata.MessageCount != 4 {
		t.Errorf("message count = %d, want 4 (blank ignored)", got.SummaryMetadata.MessageCount)
	}
	if got.SummaryMetadata.TimeSpan != "2 hours" {
		t.Errorf("time span = %q", got.SummaryMetadata.TimeSpan)
	}
	if got.SummaryMetadata.EmotionalTone != "positive" {
		t.Errorf("tone = %q", got.SummaryMetadata.EmotionalTone)
	}
	if !strings.HasPrefix(got.ID, "summary_c1_") {
		t.Errorf("id = %q", got.ID)
	}
}

func TestSummarizeFallbacks(t *testing.T) {
	s, _ := newTestSummarizer(failing)
	got := s.Summarize(context.Background(), "c1", conversation(), DefaultConfig)

	if !strings.HasPrefix(got.Summary, "Conversation with 4 messages (3 from user, 1 from AI).") {
		t.Errorf("summary = %q", got.Summary)
	}
	if want := "work|feelings|family|future"; strings.Join(got.KeyTopics, "|") != want {
		t.Errorf("topics = %v, want %s", got.KeyTopics, want)
	}
	if !contains(got.EmotionalHighlights, "Expressions of love and affection") {
		t.Errorf("highlights = %v", got.EmotionalHighlights)
	}
	if want := "First expressions of love|Discussion of future plans"; strings.Join(got.RelationshipMilestones, "|") != want {
		t.Errorf("milestones = %v, want %s", got.RelationshipMilestones, want)
	}
	if !contains(got.UserPersonalityInsights, "Career-focused") || !contains(got.UserPersonalityInsights, "Values relationships") {
		t.Errorf("insights = %v", got.UserPersonalityInsights)
	}
}

func TestSummarizeFlagsOff(t *testing.T) {
	s, fc := newTestSummarizer(canned)
	cfg := models.SummaryConfig{}
	got := s.Summarize(context.Background(), "c1", conversation(), cfg)

	if len(got.EmotionalHighlights) != 0 || len(got.RelationshipMilestones) != 0 || len(got.UserPersonalityInsights) != 0 {
		t.Errorf("disabled branches produced output: %+v", got)
	}
	if len(fc.calls) != 2 {
		t.Errorf("provider calls = %d, want 2", len(fc.calls))
	}
}

func TestInsightsSkippedForShortText(t *testing.T) {
	s, fc := newTestSummarizer(canned)
	cfg := models.SummaryConfig{IncludePersonalityInsights: true}
	got := s.Summarize(context.Background(), "c1", []models.Message{msg("hi", true, 0)}, cfg)

	if len(got.UserPersonalityInsights) != 0 {
		t.Errorf("insights = %v", got.UserPersonalityInsights)
	}
	for _, c := range fc.calls {
		if strings.HasPrefix(c, "Based on these user messages") {
			t.Error("insights prompt sent for short text")
		}
	}
}

func TestSignificantMoments(t *testing.T) {
	long := strings.Repeat("x", 120) + " I love this"
	got := significantMoments([]models.Message{
		msg("thank you", true, 0),
		msg("I love you and miss you", true, time.Minute),
		msg("nothing here", true, 2*time.Minute),
		msg(long, true, 3*time.Minute),
	})

	if len(got) != 3 {
		t.Fatalf("moments = %d, want 3", len(got))
	}
	if got[0].Type != "love_expression" || got[1].Type != "love_expression" || got[2].Type != "gratitude" {
		t.Errorf("order = %s, %s, %s", got[0].Type, got[1].Type, got[2].Type)
	}
	if !strings.HasSuffix(got[1].Description, "...") || len([]rune(got[1].Description)) != 103 {
		t.Errorf("long description = %q", got[1].Description)
	}
	if strings.HasSuffix(got[0].Description, "...") {
		t.Errorf("short description truncated: %q", got[0].Description)
	}
}

func TestUpdate(t *testing.T) {
	s, _ := newTestSummarizer(canned)
	existing := models.ConversationSummary{
		ID:             "summary_c1_1",
		ConversationID: "c1",
		Summary:        "old",
		KeyTopics:      []string{"work", "pets"},
		CreatedAt:      t0,
	}
	for i := 0; i < 15; i++ {
		existing.SignificantMoments = append(existing.SignificantMoments, models.SignificantMoment{Type: "gratitude", Significance: 6})
	}

	all := conversation()
	got := s.Update(context.Background(), existing, all[2:], all, DefaultConfig)

	if got.ID != existing.ID || !got.CreatedAt.Equal(t0) {
		t.Errorf("identity changed: %q %v", got.ID, got.CreatedAt)
	}
	if got.Summary != "updated summary" {
		t.Errorf("summary = %q", got.Summary)
	}
	if want := "work|pets|music|travel"; strings.Join(got.KeyTopics, "|") != want {
		t.Errorf("topics = %v, want %s", got.KeyTopics, want)
	}
	if len(got.SignificantMoments) != momentCap {
		t.Errorf("moments = %d, want %d", len(got.SignificantMoments), momentCap)
	}
	if got.SignificantMoments[0].Significance < got.SignificantMoments[len(got.SignificantMoments)-1].Significance {
		t.Error("moments not sorted by significance")
	}
	if got.SummaryMetadata.MessageCount != 4 {
		t.Errorf("metadata count = %d, want full history", got.SummaryMetadata.MessageCount)
	}
	if !got.LastUpdated.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("last updated = %v", got.LastUpdated)
	}
}

func TestUpdateNoNewMessages(t *testing.T) {
	s, fc := newTestSummarizer(canned)
	existing := models.ConversationSummary{ID: "x", Summary: "old"}
	got := s.Update(context.Background(), existing, nil, nil, DefaultConfig)
	if got.Summary != "old" || len(fc.calls) != 0 {
		t.Errorf("update without messages changed summary: %+v", got)
	}
}

func TestUpdateFallbackKeepsSummary(t *testing.T) {
	s, _ := newTestSummarizer(failing)
	existing := models.ConversationSummary{ID: "x", Summary: "old"}
	got := s.Update(context.Background(), existing, conversation(), nil, DefaultConfig)
	if got.Summary != "old" {
		t.Errorf("summary = %q, want old", got.Summary)
	}
}

func TestTimeSpan(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 minutes"},
		{time.Minute, "1 minute"},
		{90 * time.Second, "1 minute"},
		{59 * time.Minute, "59 minutes"},
		{time.Hour + 5*time.Minute, "1 hour"},
		{5 * time.Hour, "5 hours"},
		{25 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := timeSpan(t0, t0.Add(tt.d)); got != tt.want {
				t.Errorf("timeSpan(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestQualityClamped(t *testing.T) {
	var msgs []models.Message
	for i := 0; i < 120; i++ {
		msgs = append(msgs, msg(strings.Repeat("I love you so much ", 8), true, time.Duration(i)*time.Minute))
	}
	if got := metadata(msgs).ConversationQuality; got != 10 {
		t.Errorf("quality = %d, want 10", got)
	}
}

func TestPlaceholderSummary(t *testing.T) {
	if got := PlaceholderSummary(""); got != "No text to summarize." {
		t.Errorf("empty = %q", got)
	}
	text := "User: " + strings.Repeat("a", 60)
	want := `Summary of: "User: ` + strings.Repeat("a", 44) + `..." (Length: 66)`
	if got := PlaceholderSummary(text); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type memStore struct {
	mu    sync.Mutex
	saved map[string]models.ConversationSummary
}

func (m *memStore) GetSummary(_ context.Context, id string) (*models.ConversationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.saved[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) UpsertSummary(_ context.Context, s *models.ConversationSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[s.ConversationID] = *s
	return nil
}

func (m *memStore) SetLegacySummary(_ context.Context, id, text string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[id] = models.ConversationSummary{ConversationID: id, Summary: text}
	return nil
}

type staticMessages []models.Message

func (s staticMessages) CountMessages(context.Context, string) (int, error) { return len(s), nil }

func (s staticMessages) ListMessages(_ context.Context, _ string, limit int) ([]models.Message, error) {
	if limit > 0 && len(s) > limit {
		return s[len(s)-limit:], nil
	}
	return s, nil
}

func history(n int) staticMessages {
	out := make(staticMessages, n)
	for i := range out {
		out[i] = msg("I feel happy about work", i%2 == 0, time.Duration(i)*time.Minute)
	}
	return out
}

func TestAutoManager(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("skips off interval", func(t *testing.T) {
		s, _ := newTestSummarizer(canned)
		store := &memStore{saved: map[string]models.ConversationSummary{}}
		NewAutoManager(s, store, history(49), DefaultConfig, logger).AfterMessage(context.Background(), "c1")
		if len(store.saved) != 0 {
			t.Error("summary saved before interval")
		}
	})

	t.Run("creates at interval", func(t *testing.T) {
		s, _ := newTestSummarizer(canned)
		store := &memStore{saved: map[string]models.ConversationSummary{}}
		NewAutoManager(s, store, history(50), DefaultConfig, logger).AfterMessage(context.Background(), "c1")
		got, ok := store.saved["c1"]
		if !ok || got.Summary != "fresh summary" {
			t.Fatalf("saved = %+v", got)
		}
	})

	t.Run("updates existing", func(t *testing.T) {
		s, fc := newTestSummarizer(canned)
		store := &memStore{saved: map[string]models.ConversationSummary{
			"c1": {ID: "summary_c1_1", ConversationID: "c1", Summary: "old"},
		}}
		NewAutoManager(s, store, history(100), DefaultConfig, logger).AfterMessage(context.Background(), "c1")
		got := store.saved["c1"]
		if got.Summary != "updated summary" || got.ID != "summary_c1_1" {
			t.Errorf("saved = %+v", got)
		}
		if got.SummaryMetadata.MessageCount != 100 {
			t.Errorf("metadata count = %d, want 100", got.SummaryMetadata.MessageCount)
		}
		for _, c := range fc.calls {
			if strings.HasPrefix(c, "Update this conversation summary") && strings.Count(c, "User: ")+strings.Count(c, "AI: ") != Interval {
				t.Errorf("update prompt should carry the last %d messages", Interval)
			}
		}
	})
}

func TestLegacySummarizer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memStore{saved: map[string]models.ConversationSummary{}}

	NewLegacySummarizer(history(9), store, logger).AfterMessage(context.Background(), "c1")
	if len(store.saved) != 0 {
		t.Fatal("legacy summary written before interval")
	}

	NewLegacySummarizer(history(10), store, logger).AfterMessage(context.Background(), "c1")
	if got := store.saved["c1"].Summary; !strings.HasPrefix(got, `Summary of: "User: I feel happy about work`) {
		t.Errorf("legacy summary = %q", got)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
