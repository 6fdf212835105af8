package store

import (
	"context"
	"fmt"

	"github.com/iammorganparry/companion/internal/models"
)

// Chunk is one indexed piece of a message.
type Chunk struct {
	ID             string
	MessageID      string
	ConversationID string
	UserID         string
	ChunkIndex     int
	TotalChunks    int
	Text           string
	CreatedAt      int64 // unix millis
}

// BM25Result holds an FTS5 match result.
type BM25Result struct {
	Chunk
	Rank float64
}

// BM25Store indexes message chunks and searches them via SQLite FTS5.
type BM25Store struct {
	db *DB
}

func NewBM25Store(db *DB) *BM25Store {
	return &BM25Store{db: db}
}

// Index upserts a chunk; the FTS triggers keep the index in step.
func (s *BM25Store) Index(ctx context.Context, c *Chunk) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_chunks (id, message_id, conversation_id, user_id, chunk_index, total_chunks, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			chunk_index = excluded.chunk_index,
			total_chunks = excluded.total_chunks
	`, c.ID, c.MessageID, c.ConversationID, c.UserID, c.ChunkIndex, c.TotalChunks, c.Text, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("index chunk: %w", err)
	}
	return nil
}

// ChunkIDs lists the ids of a conversation's indexed chunks.
func (s *BM25Store) ChunkIDs(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM message_chunks WHERE conversation_id = ? ORDER BY rowid`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteConversation drops a conversation's chunks from the index.
func (s *BM25Store) DeleteConversation(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM message_chunks WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// Search performs BM25 full-text search over the user's chunks, optionally
// restricted to one conversation. Higher Rank is a better match.
func (s *BM25Store) Search(ctx context.Context, query, userID, conversationID string, limit int) ([]BM25Result, error) {
	if query == "" || userID == "" {
		return nil, nil
	}

	// bm25() returns negative values where more negative = better match,
	// so we negate to get positive scores where higher = better.
	q := `
		SELECT c.id, c.message_id, c.conversation_id, c.user_id, c.chunk_index, c.total_chunks, c.text, c.created_at,
			-rank AS score
		FROM message_chunks_fts
		JOIN message_chunks c ON c.rowid = message_chunks_fts.rowid
		WHERE message_chunks_fts MATCH ?
		  AND c.user_id = ?`
	args := []any{query, userID}
	if conversationID != "" {
		q += ` AND c.conversation_id = ?`
		args = append(args, conversationID)
	}
	q += ` ORDER BY rank LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("bm25 search: %w", err)
	}
	defer rows.Close()

	var results []BM25Result
	for rows.Next() {
		var r BM25Result
		if err := rows.Scan(&r.ID, &r.MessageID, &r.ConversationID, &r.UserID,
			&r.ChunkIndex, &r.TotalChunks, &r.Text, &r.CreatedAt, &r.Rank); err != nil {
			return nil, fmt.Errorf("scan bm25 result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ToSemanticResult converts a match, normalizing the BM25 score into [0,1).
func (r BM25Result) ToSemanticResult() models.SemanticResult {
	score := r.Rank
	if score < 0 {
		score = 0
	}
	return models.SemanticResult{
		ID:             r.ID,
		Text:           r.Text,
		Score:          score / (1 + score),
		ConversationID: r.ConversationID,
		UserID:         r.UserID,
		CreatedAt:      fromMillis(r.CreatedAt).Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
