package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iammorganparry/companion/internal/models"
)

// SummaryStore keeps one summary blob per conversation.
type SummaryStore struct {
	db *DB
}

func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// GetSummary returns the stored summary, or nil if none exists.
func (s *SummaryStore) GetSummary(ctx context.Context, conversationID string) (*models.ConversationSummary, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT summary_data FROM conversation_summaries WHERE conversation_id = ?`, conversationID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}

	var out models.ConversationSummary
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &out, nil
}

// UpsertSummary creates or replaces the conversation's summary.
func (s *SummaryStore) UpsertSummary(ctx context.Context, sum *models.ConversationSummary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_summaries (conversation_id, summary_data, summarized_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			summary_data = excluded.summary_data,
			summarized_at = excluded.summarized_at
	`, sum.ConversationID, string(data), toMillis(sum.LastUpdated))
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// ProfileStore keeps one profile blob per user. The confidence score is
// also stored in its own column so it can be queried.
type ProfileStore struct {
	db *DB
}

func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// GetProfile returns the stored profile, or nil if none exists.
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile_data FROM user_profiles WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var out models.UserProfile
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &out, nil
}

// UpsertProfile creates or replaces the user's profile.
func (s *ProfileStore) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, profile_data, confidence_score, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			profile_data = excluded.profile_data,
			confidence_score = excluded.confidence_score,
			last_updated = excluded.last_updated
	`, p.UserID, string(data), p.ConfidenceScore, toMillis(p.LastUpdated))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
