package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iammorganparry/companion/internal/models"
)

const (
	// Interval is the message count between automatic summary refreshes.
	Interval = 50
	// LegacyInterval is the message count between placeholder summaries.
	LegacyInterval = 10
)

// Store persists summaries. GetSummary returns nil, nil when absent.
type Store interface {
	GetSummary(ctx context.Context, conversationID string) (*models.ConversationSummary, error)
	UpsertSummary(ctx context.Context, s *models.ConversationSummary) error
}

// MessageSource reads a conversation's history in chronological order.
type MessageSource interface {
	CountMessages(ctx context.Context, conversationID string) (int, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
}

// AutoManager refreshes the stored summary every Interval messages.
type AutoManager struct {
	summarizer *Summarizer
	store      Store
	messages   MessageSource
	cfg        models.SummaryConfig
	logger     *slog.Logger

	convLocks sync.Map
}

func NewAutoManager(summarizer *Summarizer, store Store, messages MessageSource, cfg models.SummaryConfig, logger *slog.Logger) *AutoManager {
	return &AutoManager{
		summarizer: summarizer,
		store:      store,
		messages:   messages,
		cfg:        cfg,
		logger:     logger,
	}
}

func (m *AutoManager) lockFor(conversationID string) *sync.Mutex {
	v, _ := m.convLocks.LoadOrStore(conversationID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// AfterMessage runs after a message is persisted. It only does work when the
// total message count is a positive multiple of Interval. Failures are
// logged; the caller never sees them.
func (m *AutoManager) AfterMessage(ctx context.Context, conversationID string) {
	mu := m.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()

	count, err := m.messages.CountMessages(ctx, conversationID)
	if err != nil {
		m.logger.Warn("summary trigger: count messages", "conversation_id", conversationID, "error", err)
		return
	}
	if count == 0 || count%Interval != 0 {
		return
	}

	if _, err := m.refresh(ctx, conversationID, m.cfg); err != nil {
		m.logger.Warn("summary trigger failed", "conversation_id", conversationID, "error", err)
		return
	}
	m.logger.Info("conversation summary refreshed", "conversation_id", conversationID, "messages", count)
}

// Refresh recomputes the summary regardless of the message count: the last
// Interval messages are folded into an existing summary, otherwise the whole
// history is summarized.
func (m *AutoManager) Refresh(ctx context.Context, conversationID string) (*models.ConversationSummary, error) {
	return m.RefreshWith(ctx, conversationID, m.cfg)
}

// RefreshWith is Refresh with a one-off summary configuration.
func (m *AutoManager) RefreshWith(ctx context.Context, conversationID string, cfg models.SummaryConfig) (*models.ConversationSummary, error) {
	mu := m.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()
	return m.refresh(ctx, conversationID, cfg)
}

func (m *AutoManager) refresh(ctx context.Context, conversationID string, cfg models.SummaryConfig) (*models.ConversationSummary, error) {
	all, err := m.messages.ListMessages(ctx, conversationID, 0)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	existing, err := m.store.GetSummary(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}

	var out models.ConversationSummary
	if existing != nil {
		recent := all
		if len(recent) > Interval {
			recent = recent[len(recent)-Interval:]
		}
		out = m.summarizer.Update(ctx, *existing, recent, all, cfg)
	} else {
		out = m.summarizer.Summarize(ctx, conversationID, all, cfg)
	}

	if err := m.store.UpsertSummary(ctx, &out); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	return &out, nil
}

// LegacyStore records the placeholder summary on the conversation row.
type LegacyStore interface {
	SetLegacySummary(ctx context.Context, conversationID, summary string, at time.Time) error
}

// LegacySummarizer writes a cheap placeholder summary every LegacyInterval
// messages. It predates the structured summaries and is kept for clients
// that read the conversation row directly.
type LegacySummarizer struct {
	messages MessageSource
	store    LegacyStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewLegacySummarizer(messages MessageSource, store LegacyStore, logger *slog.Logger) *LegacySummarizer {
	return &LegacySummarizer{messages: messages, store: store, logger: logger, now: time.Now}
}

func (l *LegacySummarizer) AfterMessage(ctx context.Context, conversationID string) {
	count, err := l.messages.CountMessages(ctx, conversationID)
	if err != nil {
		l.logger.Warn("legacy summary: count messages", "conversation_id", conversationID, "error", err)
		return
	}
	if count == 0 || count%LegacyInterval != 0 {
		return
	}

	msgs, err := l.messages.ListMessages(ctx, conversationID, 0)
	if err != nil {
		l.logger.Warn("legacy summary: list messages", "conversation_id", conversationID, "error", err)
		return
	}
	if err := l.store.SetLegacySummary(ctx, conversationID, PlaceholderSummary(formatTranscript(msgs)), l.now()); err != nil {
		l.logger.Warn("legacy summary: save", "conversation_id", conversationID, "error", err)
	}
}

// PlaceholderSummary is the legacy summary text for a transcript.
func PlaceholderSummary(text string) string {
	if strings.TrimSpace(text) == "" {
		return "No text to summarize."
	}
	r := []rune(text)
	if len(r) > 50 {
		r = r[:50]
	}
	return fmt.Sprintf(`Summary of: "%s..." (Length: %d)`, string(r), len(text))
}
