// Package summary produces and incrementally updates structured
// conversation summaries. Free-text parts come from the completion provider;
// every provider call has a deterministic fallback so a summary is always
// produced.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
)

// DefaultConfig is the configuration used when callers have no preference.
var DefaultConfig = models.SummaryConfig{
	MaxTokens:                     1000,
	IncludeEmotionalAnalysis:      true,
	IncludePersonalityInsights:    true,
	IncludeRelationshipMilestones: true,
	CompressionRatio:              0.1,
}

const (
	summaryTokenCap   = 800
	topicsCap         = 7
	highlightsCap     = 5
	milestonesCap     = 4
	insightsCap       = 5
	minInsightText    = 50
	unableToSummarize = "Unable to generate summary"
)

var bulletPrefix = regexp.MustCompile(`^[-*•]\s*`)

// Summarizer builds ConversationSummary values.
type Summarizer struct {
	completer llm.Completer
	logger    *slog.Logger
	now       func() time.Time
}

func NewSummarizer(completer llm.Completer, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		completer: completer,
		logger:    logger,
		now:       time.Now,
	}
}

func resolve(cfg models.SummaryConfig) models.SummaryConfig {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig.MaxTokens
	}
	if cfg.CompressionRatio <= 0 {
		cfg.CompressionRatio = DefaultConfig.CompressionRatio
	}
	return cfg
}

// extraction holds the five provider-backed parts of a summary.
type extraction struct {
	summary    string
	topics     []string
	highlights []string
	milestones []string
	insights   []string
}

// extract runs the five branches concurrently. Each branch recovers its own
// provider error into its fallback, so one failure never affects another.
func (s *Summarizer) extract(ctx context.Context, msgs []models.Message, cfg models.SummaryConfig, summarize func() string) extraction {
	var (
		out extraction
		wg  sync.WaitGroup
	)
	out.highlights, out.milestones, out.insights = []string{}, []string{}, []string{}

	wg.Add(2)
	go func() {
		defer wg.Done()
		out.summary = summarize()
	}()
	go func() {
		defer wg.Done()
		out.topics = s.keyTopics(ctx, msgs)
	}()
	if cfg.IncludeEmotionalAnalysis {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.highlights = s.emotionalHighlights(ctx, msgs)
		}()
	}
	if cfg.IncludeRelationshipMilestones {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.milestones = s.relationshipMilestones(ctx, msgs)
		}()
	}
	if cfg.IncludePersonalityInsights {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.insights = s.personalityInsights(ctx, msgs)
		}()
	}
	wg.Wait()
	return out
}

// Summarize builds a summary from scratch. Whitespace-only messages are
// ignored; with nothing left the empty sentinel summary is returned.
func (s *Summarizer) Summarize(ctx context.Context, conversationID string, messages []models.Message, cfg models.SummaryConfig) models.ConversationSummary {
	cfg = resolve(cfg)
	msgs := nonEmpty(messages)
	if len(msgs) == 0 {
		return emptySummary(conversationID, s.now())
	}

	ex := s.extract(ctx, msgs, cfg, func() string { return s.mainSummary(ctx, msgs, cfg) })
	now := s.now()
	return models.ConversationSummary{
		SchemaVersion:           models.SummarySchemaVersion,
		ID:                      fmt.Sprintf("summary_%s_%d", conversationID, now.UnixMilli()),
		ConversationID:          conversationID,
		Summary:                 ex.summary,
		KeyTopics:               ex.topics,
		EmotionalHighlights:     ex.highlights,
		RelationshipMilestones:  ex.milestones,
		UserPersonalityInsights: ex.insights,
		SignificantMoments:      significantMoments(msgs),
		SummaryMetadata:         metadata(msgs),
		CreatedAt:               now,
		LastUpdated:             now,
	}
}

// Update folds newMessages into an existing summary. allMessages is the
// complete history the metadata is computed from; when empty the new
// messages are used instead.
func (s *Summarizer) Update(ctx context.Context, existing models.ConversationSummary, newMessages, allMessages []models.Message, cfg models.SummaryConfig) models.ConversationSummary {
	msgs := nonEmpty(newMessages)
	if len(msgs) == 0 {
		return existing
	}
	cfg = resolve(cfg)

	ex := s.extract(ctx, msgs, cfg, func() string { return s.incrementalSummary(ctx, existing.Summary, msgs, cfg) })

	history := nonEmpty(allMessages)
	if len(history) == 0 {
		history = msgs
	}

	moments := append(append([]models.SignificantMoment{}, existing.SignificantMoments...), significantMoments(msgs)...)
	if len(moments) > 20 {
		moments = moments[len(moments)-20:]
	}

	out := existing
	out.SchemaVersion = models.SummarySchemaVersion
	out.Summary = ex.summary
	out.KeyTopics = union(existing.KeyTopics, ex.topics)
	out.EmotionalHighlights = union(existing.EmotionalHighlights, ex.highlights)
	out.RelationshipMilestones = union(existing.RelationshipMilestones, ex.milestones)
	out.UserPersonalityInsights = union(existing.UserPersonalityInsights, ex.insights)
	out.SignificantMoments = rankMoments(moments)
	out.SummaryMetadata = metadata(history)
	out.LastUpdated = s.now()
	return out
}

func (s *Summarizer) complete(ctx context.Context, prompt string, maxTokens int, temp float64) (string, error) {
	return s.completer.Complete(ctx, []models.ChatMessage{
		{Role: models.RoleUser, Content: prompt},
	}, llm.Options{MaxTokens: maxTokens, Temperature: llm.Temperature(temp)})
}

func (s *Summarizer) mainSummary(ctx context.Context, msgs []models.Message, cfg models.SummaryConfig) string {
	text := formatTranscript(msgs)
	target := max(100, int(float64(len(text))*cfg.CompressionRatio))

	prompt := fmt.Sprintf(`Summarize this conversation between a user and an AI companion, focusing on:
1. Key topics discussed
2. Emotional moments and relationship development
3. Important personal information shared
4. Relationship progression and milestones

Target summary length: approximately %d characters.

Conversation:
%s

Provide a comprehensive but concise summary that captures the essence of their relationship and interaction:`, target, text)

	out, err := s.complete(ctx, prompt, min(cfg.MaxTokens, summaryTokenCap), 0.3)
	if err != nil {
		s.logger.Warn("main summary failed, using fallback", "error", err)
		return fallbackSummary(msgs)
	}
	if out == "" {
		return unableToSummarize
	}
	return out
}

func (s *Summarizer) incrementalSummary(ctx context.Context, existing string, msgs []models.Message, cfg models.SummaryConfig) string {
	prompt := fmt.Sprintf(`Update this conversation summary with new messages:

Existing Summary:
%s

New Messages:
%s

Provide an updated summary that incorporates the new information while maintaining the key points from the existing summary:`, existing, formatTranscript(msgs))

	out, err := s.complete(ctx, prompt, min(cfg.MaxTokens, summaryTokenCap), 0.3)
	if err != nil {
		s.logger.Warn("incremental summary failed, keeping previous", "error", err)
		return existing
	}
	if out == "" {
		return existing
	}
	return out
}

func (s *Summarizer) keyTopics(ctx context.Context, msgs []models.Message) []string {
	prompt := fmt.Sprintf(`Extract the main topics discussed in this conversation. Return only a comma-separated list of 3-7 key topics:

%s

Topics:`, formatTranscript(msgs))

	out, err := s.complete(ctx, prompt, 150, 0.2)
	if err != nil {
		s.logger.Warn("topic extraction failed, using fallback", "error", err)
		return fallbackTopics(msgs)
	}
	return splitList(strings.Split(out, ","), false, topicsCap)
}

func (s *Summarizer) emotionalHighlights(ctx context.Context, msgs []models.Message) []string {
	prompt := fmt.Sprintf(`Identify the most emotionally significant moments in this conversation. Return 3-5 brief descriptions of emotional highlights:

%s

Emotional highlights:`, formatTranscript(msgs))

	out, err := s.complete(ctx, prompt, 200, 0.3)
	if err != nil {
		s.logger.Warn("emotional highlights failed, using fallback", "error", err)
		return fallbackHighlights(msgs)
	}
	return splitList(strings.Split(out, "\n"), true, highlightsCap)
}

func (s *Summarizer) relationshipMilestones(ctx context.Context, msgs []models.Message) []string {
	prompt := fmt.Sprintf(`Identify relationship milestones and significant developments in this conversation. Return 2-4 brief milestone descriptions:

%s

Relationship milestones:`, formatTranscript(msgs))

	out, err := s.complete(ctx, prompt, 150, 0.3)
	if err != nil {
		s.logger.Warn("milestone extraction failed, using fallback", "error", err)
		return fallbackMilestones(msgs)
	}
	return splitList(strings.Split(out, "\n"), true, milestonesCap)
}

func (s *Summarizer) personalityInsights(ctx context.Context, msgs []models.Message) []string {
	var user []models.Message
	var parts []string
	for _, m := range msgs {
		if m.IsUserMessage {
			user = append(user, m)
			parts = append(parts, m.Content)
		}
	}
	text := strings.Join(parts, "\n")
	if len(text) < minInsightText {
		return []string{}
	}

	prompt := fmt.Sprintf(`Based on these user messages, identify 3-5 key personality traits or insights about the user:

%s

Personality insights:`, text)

	out, err := s.complete(ctx, prompt, 150, 0.3)
	if err != nil {
		s.logger.Warn("personality insights failed, using fallback", "error", err)
		return fallbackPersonality(user)
	}
	return splitList(strings.Split(out, "\n"), true, insightsCap)
}

func splitList(items []string, stripBullets bool, limit int) []string {
	out := []string{}
	for _, it := range items {
		if stripBullets {
			it = bulletPrefix.ReplaceAllString(strings.TrimSpace(it), "")
		}
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

func formatTranscript(msgs []models.Message) string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		who := "AI"
		if m.IsUserMessage {
			who = "User"
		}
		lines[i] = who + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}

func nonEmpty(msgs []models.Message) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) != "" {
			out = append(out, m)
		}
	}
	return out
}

func emptySummary(conversationID string, now time.Time) models.ConversationSummary {
	return models.ConversationSummary{
		SchemaVersion:           models.SummarySchemaVersion,
		ID:                      fmt.Sprintf("summary_%s_empty", conversationID),
		ConversationID:          conversationID,
		Summary:                 "No messages to summarize",
		KeyTopics:               []string{},
		EmotionalHighlights:     []string{},
		RelationshipMilestones:  []string{},
		UserPersonalityInsights: []string{},
		SignificantMoments:      []models.SignificantMoment{},
		SummaryMetadata: models.SummaryMetadata{
			TimeSpan:      "0 minutes",
			EmotionalTone: "neutral",
		},
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// union keeps first-seen order and drops duplicates.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
