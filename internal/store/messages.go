package store

import (
	"context"
	"fmt"

	"github.com/iammorganparry/companion/internal/models"
)

// MessageStore handles chat messages.
type MessageStore struct {
	db *DB
}

func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

// Add inserts a message.
func (s *MessageStore) Add(ctx context.Context, m *models.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, content, is_user_message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.ConversationID, m.Content, m.IsUserMessage, toMillis(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages returns the conversation's most recent limit messages in
// chronological order. A limit of zero or less returns every message.
func (s *MessageStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, content, is_user_message, created_at FROM (
			SELECT rowid AS seq, id, conversation_id, content, is_user_message, created_at
			FROM messages
			WHERE conversation_id = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		) ORDER BY created_at, seq
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ListUserMessages returns every message of every conversation owned by
// the user, oldest first.
func (s *MessageStore) ListUserMessages(ctx context.Context, userID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.content, m.is_user_message, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.user_id = ?
		ORDER BY m.created_at, m.rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// CountMessages returns the number of messages in a conversation.
func (s *MessageStore) CountMessages(ctx context.Context, conversationID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	scanner
	Next() bool
	Err() error
}

func scanMessages(rows rowScanner) ([]models.Message, error) {
	out := []models.Message{}
	for rows.Next() {
		var (
			m       models.Message
			created int64
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Content, &m.IsUserMessage, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}
