// Package chat runs a companion chat turn end to end: history, retrieval,
// persona, prompt, completion, persistence, and the background jobs that
// keep summaries, profiles and the search index current.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iammorganparry/companion/internal/emotion"
	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/prompt"
	"github.com/iammorganparry/companion/internal/search"
)

var (
	ErrEmptyMessage         = errors.New("message is required and must be a non-empty string")
	ErrConversationNotFound = errors.New("conversation not found")
)

type ConversationStore interface {
	Create(ctx context.Context, c *models.Conversation) error
	Get(ctx context.Context, id string) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Conversation, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type MessageStore interface {
	Add(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	CountMessages(ctx context.Context, conversationID string) (int, error)
}

type SummaryReader interface {
	GetSummary(ctx context.Context, conversationID string) (*models.ConversationSummary, error)
}

type PersonaResolver interface {
	Resolve(ctx context.Context, characterID string) models.Persona
}

type Indexer interface {
	Ingest(ctx context.Context, userID string, msg models.Message)
	Forget(ctx context.Context, userID, conversationID string) error
}

// Trigger is a job that runs after every persisted message of a conversation.
type Trigger interface {
	AfterMessage(ctx context.Context, conversationID string)
}

type OpeningSelector interface {
	Next(ctx context.Context, sessionID string) (string, error)
	Reset(ctx context.Context, sessionID string) error
}

type ProfileUpdater interface {
	Load(ctx context.Context, userID string) *models.UserProfile
	UpdateWithNewMessages(ctx context.Context, userID string, newMessages []models.Message) *models.UserProfile
}

// Deps are the collaborators of a Service. Retriever, Indexer, Summaries,
// Profiles and Triggers may be nil.
type Deps struct {
	Conversations ConversationStore
	Messages      MessageStore
	Summaries     SummaryReader
	Personas      PersonaResolver
	Retriever     search.Retriever
	Indexer       Indexer
	Profiles      ProfileUpdater
	Completer     llm.Completer
	Openings      OpeningSelector
	Triggers      []Trigger
}

// defaultProviderTimeout bounds each provider-backed step of a turn
// (retrieval, reply) so a turn always answers inside the server's write
// timeout.
const defaultProviderTimeout = 20 * time.Second

type Options struct {
	// ContextCount is how many semantic snippets are retrieved per turn.
	ContextCount int
	// Completion tunes the reply. A nil Backoff means llm.InteractiveBackoff.
	Completion      llm.Options
	Location        *time.Location
	ProviderTimeout time.Duration
}

type TurnRequest struct {
	UserID         string
	ConversationID string
	CharacterID    string
	Message        string
}

type Service struct {
	deps     Deps
	opts     Options
	analyzer *emotion.Analyzer
	asm      assembler
	logger   *slog.Logger
	now      func() time.Time

	background sync.WaitGroup
}

func NewService(deps Deps, opts Options, logger *slog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = defaultProviderTimeout
	}
	if opts.Completion.Backoff == nil {
		opts.Completion.Backoff = &llm.InteractiveBackoff
	}
	s := &Service{
		deps:     deps,
		opts:     opts,
		analyzer: emotion.NewAnalyzer(opts.Location),
		logger:   logger,
		now:      time.Now,
	}
	s.asm = assembler{loc: opts.Location, now: func() time.Time { return s.now() }}
	return s
}

// Turn answers one user message. Provider outages never fail a turn: the
// reply degrades to llm.FallbackReply.
func (s *Service) Turn(ctx context.Context, req TurnRequest) (*models.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.conversationFor(ctx, req)
	if err != nil {
		return nil, err
	}

	priorCount, err := s.deps.Messages.CountMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	history, err := s.deps.Messages.ListMessages(ctx, conv.ID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	recent := newestFirst(history)

	userMsg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Content:        req.Message,
		IsUserMessage:  true,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.deps.Messages.Add(ctx, &userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	semantic := s.retrieve(ctx, req.UserID, conv.ID, req.Message)

	characterID := conv.CharacterID
	if characterID == "" {
		characterID = req.CharacterID
	}
	persona := s.deps.Personas.Resolve(ctx, characterID)

	var stored *models.ConversationSummary
	if s.deps.Summaries != nil {
		if stored, err = s.deps.Summaries.GetSummary(ctx, conv.ID); err != nil {
			s.logger.Warn("load conversation summary failed", "conversation_id", conv.ID, "error", err)
			stored = nil
		}
	}
	var profile *models.UserProfile
	if s.deps.Profiles != nil {
		profile = s.deps.Profiles.Load(ctx, req.UserID)
	}

	smart := s.asm.build(persona, req.Message, semantic, recent, priorCount, stored, profile)
	system := prompt.BuildSmartPrompt(smart)
	s.logger.Debug("smart prompt built", "conversation_id", conv.ID, "length", len(system))

	replyCtx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	reply := llm.ChatReply(replyCtx, s.deps.Completer, []models.ChatMessage{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: req.Message},
	}, s.opts.Completion, s.logger)
	cancel()

	aiMsg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Content:        reply,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.deps.Messages.Add(ctx, &aiMsg); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}
	if err := s.deps.Conversations.Touch(ctx, conv.ID, aiMsg.CreatedAt); err != nil {
		s.logger.Warn("bump conversation failed", "conversation_id", conv.ID, "error", err)
	}

	s.afterTurn(ctx, req.UserID, conv.ID, userMsg, aiMsg)

	return &models.ChatResponse{
		Reply:          reply,
		ConversationID: conv.ID,
		MessageID:      aiMsg.ID,
		UserMessageID:  userMsg.ID,
		Persona:        persona.Name,
		Intelligence: models.Intelligence{
			SemanticContextUsed: len(semantic) > 0,
			EmotionalState:      smart.EmotionalState.Mood,
			RelationshipStage:   smart.RelationshipContext.Stage,
			MemoryIntegration:   len(smart.ConversationMemory.RecentTopics) > 0,
		},
	}, nil
}

func (s *Service) conversationFor(ctx context.Context, req TurnRequest) (*models.Conversation, error) {
	if req.ConversationID != "" {
		return s.Conversation(ctx, req.UserID, req.ConversationID)
	}

	now := s.now().UTC()
	conv := &models.Conversation{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		CharacterID: req.CharacterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deps.Conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	s.logger.Info("conversation created", "conversation_id", conv.ID, "user_id", req.UserID)
	return conv, nil
}

// DeleteConversation removes a conversation owned by userID together with
// its messages, summary and search index entries. Index cleanup failures
// are logged; the conversation is deleted regardless.
func (s *Service) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if _, err := s.Conversation(ctx, userID, conversationID); err != nil {
		return err
	}
	if s.deps.Indexer != nil {
		if err := s.deps.Indexer.Forget(ctx, userID, conversationID); err != nil {
			s.logger.Warn("search index cleanup failed", "conversation_id", conversationID, "error", err)
		}
	}
	if err := s.deps.Conversations.Delete(ctx, conversationID); err != nil {
		return err
	}
	s.logger.Info("conversation deleted", "conversation_id", conversationID, "user_id", userID)
	return nil
}

// Conversation returns a conversation owned by userID.
func (s *Service) Conversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	conv, err := s.deps.Conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil || conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

func (s *Service) retrieve(ctx context.Context, userID, conversationID, message string) []models.SemanticResult {
	if s.deps.Retriever == nil || s.opts.ContextCount <= 0 {
		return []models.SemanticResult{}
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()
	results, err := s.deps.Retriever.Query(ctx, message,
		search.Scope{UserID: userID, ConversationID: conversationID}, s.opts.ContextCount)
	if err != nil {
		s.logger.Warn("semantic retrieval failed", "conversation_id", conversationID, "error", err)
		return []models.SemanticResult{}
	}
	return results
}

// afterTurn starts the background jobs of a turn. They outlive the request
// but not the service: Wait blocks until they finish.
func (s *Service) afterTurn(ctx context.Context, userID, conversationID string, userMsg, aiMsg models.Message) {
	bg := context.WithoutCancel(ctx)

	if s.deps.Indexer != nil {
		s.goBackground(func() {
			s.deps.Indexer.Ingest(bg, userID, userMsg)
			s.deps.Indexer.Ingest(bg, userID, aiMsg)
		})
	}
	for _, t := range s.deps.Triggers {
		s.goBackground(func() { t.AfterMessage(bg, conversationID) })
	}
	if s.deps.Profiles != nil {
		s.goBackground(func() {
			s.deps.Profiles.UpdateWithNewMessages(bg, userID, []models.Message{userMsg, aiMsg})
		})
	}
}

func (s *Service) goBackground(fn func()) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("background job panicked", "panic", r)
			}
		}()
		fn()
	}()
}

// Wait blocks until every background job started so far has finished.
func (s *Service) Wait() {
	s.background.Wait()
}

// ConversationsOverview lists the user's conversations, most recently
// active first.
func (s *Service) ConversationsOverview(ctx context.Context, userID string) ([]models.ConversationOverview, error) {
	convs, err := s.deps.Conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	out := make([]models.ConversationOverview, 0, len(convs))
	for _, c := range convs {
		count, err := s.deps.Messages.CountMessages(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("count messages: %w", err)
		}
		msgs, err := s.deps.Messages.ListMessages(ctx, c.ID, overviewWindow)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		recent := newestFirst(msgs)

		last := "No messages yet"
		if len(recent) > 0 {
			last = recent[0].Content
		}
		out = append(out, models.ConversationOverview{
			ID:            c.ID,
			LastMessage:   last,
			Timestamp:     c.UpdatedAt,
			MessageCount:  count,
			RecentTopics:  Topics(recent),
			EmotionalTone: Tone(recent),
		})
	}
	return out, nil
}

// Messages returns a conversation's history, oldest first. limit <= 0
// returns everything.
func (s *Service) Messages(ctx context.Context, userID, conversationID string, limit int) ([]models.Message, error) {
	if _, err := s.Conversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.deps.Messages.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Analysis runs the emotion, stage and mood detectors over a conversation,
// reading the newest user message as the current one.
func (s *Service) Analysis(ctx context.Context, userID, conversationID string) (*models.ConversationAnalysis, error) {
	msgs, err := s.Messages(ctx, userID, conversationID, 0)
	if err != nil {
		return nil, err
	}

	var current string
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUserMessage {
			current = msgs[i].Content
			break
		}
	}
	return &models.ConversationAnalysis{
		ConversationID: conversationID,
		MessageCount:   len(msgs),
		UserState:      s.analyzer.AnalyzeUserState(msgs, current),
	}, nil
}

// Opening returns the next greeting of a client session.
func (s *Service) Opening(ctx context.Context, sessionID string) (string, error) {
	return s.deps.Openings.Next(ctx, sessionID)
}

// ResetOpening forgets which greetings a session has seen.
func (s *Service) ResetOpening(ctx context.Context, sessionID string) error {
	return s.deps.Openings.Reset(ctx, sessionID)
}
