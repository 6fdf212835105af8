package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iammorganparry/companion/internal/models"
)

// Store persists one profile blob per user.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, p *models.UserProfile) error
}

// HistorySource lists every message of a user across conversations,
// oldest first.
type HistorySource interface {
	ListUserMessages(ctx context.Context, userID string) ([]models.Message, error)
}

// Manager runs the load-merge-save cycle for user profiles. Storage
// failures are logged and never returned: a lost profile update only makes
// later prompts less personal.
type Manager struct {
	analyzer *Analyzer
	store    Store
	history  HistorySource
	logger   *slog.Logger

	userLocks sync.Map // map[string]*sync.Mutex
}

func NewManager(analyzer *Analyzer, store Store, history HistorySource, logger *slog.Logger) *Manager {
	return &Manager{
		analyzer: analyzer,
		store:    store,
		history:  history,
		logger:   logger,
	}
}

func (m *Manager) lockFor(userID string) *sync.Mutex {
	l, _ := m.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// Load returns the stored profile, or nil when there is none or it cannot
// be read.
func (m *Manager) Load(ctx context.Context, userID string) *models.UserProfile {
	p, err := m.store.GetProfile(ctx, userID)
	if err != nil {
		m.logger.Error("load user profile failed", "user_id", userID, "error", err)
		return nil
	}
	return p
}

// UpdateWithNewMessages merges newMessages into the stored profile, or builds a profile
// from the user's full history when none is stored yet. When the stored
// profile cannot be read nothing is saved and nil is returned. Updates for
// the same user are serialized.
func (m *Manager) UpdateWithNewMessages(ctx context.Context, userID string, newMessages []models.Message) *models.UserProfile {
	mu := m.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := m.store.GetProfile(ctx, userID)
	if err != nil {
		// Building here would overwrite the stored profile with a fresh one.
		m.logger.Error("load user profile failed, update skipped", "user_id", userID, "error", err)
		return nil
	}

	var p models.UserProfile
	if existing != nil {
		p = m.analyzer.Update(*existing, newMessages)
	} else {
		all, err := m.history.ListUserMessages(ctx, userID)
		if err != nil {
			m.logger.Error("list user messages failed", "user_id", userID, "error", err)
			return nil
		}
		p = m.analyzer.Build(userID, all)
	}

	if err := m.store.UpsertProfile(ctx, &p); err != nil {
		m.logger.Error("save user profile failed", "user_id", userID, "error", err)
	} else {
		m.logger.Debug("user profile saved",
			"user_id", userID,
			"confidence", p.ConfidenceScore,
			"total_messages", p.RelationshipHistory.TotalMessages,
		)
	}
	return &p
}

// Insights loads the stored profile and renders it.
func (m *Manager) Insights(ctx context.Context, userID string) models.ProfileInsights {
	return Insights(m.Load(ctx, userID))
}

// Rebuild discards the stored profile and builds a new one from the user's
// whole history.
func (m *Manager) Rebuild(ctx context.Context, userID string) (*models.UserProfile, error) {
	mu := m.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	all, err := m.history.ListUserMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user messages: %w", err)
	}
	p := m.analyzer.Build(userID, all)
	if err := m.store.UpsertProfile(ctx, &p); err != nil {
		return nil, fmt.Errorf("save user profile: %w", err)
	}
	return &p, nil
}
