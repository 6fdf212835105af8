package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iammorganparry/companion/internal/models"
)

// ConversationStore handles conversation rows.
type ConversationStore struct {
	db *DB
}

func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Create inserts a new conversation.
func (s *ConversationStore) Create(ctx context.Context, c *models.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, character_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.UserID, nullString(c.CharacterID), toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

const conversationColumns = `id, user_id, character_id, legacy_summary, created_at, updated_at`

// Get fetches a conversation by ID, or nil if not found.
func (s *ConversationStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	c, err := scanConversation(s.db.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

// ListByUser returns the user's conversations, most recently active first.
func (s *ConversationStore) ListByUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Touch bumps the conversation's updated_at.
func (s *ConversationStore) Touch(ctx context.Context, id string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, toMillis(at), id); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// Delete removes a conversation. Messages and the summary go with it.
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// SetLegacySummary stores the placeholder summary on the conversation row.
func (s *ConversationStore) SetLegacySummary(ctx context.Context, id, summary string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET legacy_summary = ?, legacy_summarized_at = ? WHERE id = ?
	`, summary, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("set legacy summary: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(row scanner) (*models.Conversation, error) {
	var (
		c                    models.Conversation
		characterID, summary sql.NullString
		created, updated     int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &characterID, &summary, &created, &updated); err != nil {
		return nil, err
	}
	c.CharacterID = characterID.String
	c.LegacySummary = summary.String
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
