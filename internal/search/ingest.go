package search

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/privacy"
	"github.com/iammorganparry/companion/internal/store"
	"github.com/iammorganparry/companion/internal/vectorstore"
)

// MaxChunkSize is the longest message stored as a single chunk.
const MaxChunkSize = 1000

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// chunkNamespace seeds the deterministic ids of multi-chunk points.
var chunkNamespace = uuid.MustParse("6f1c3d0a-8f52-4a8e-9a57-2b9e61f0c4d1")

// Chunk splits text for indexing. Short text is one chunk; longer text is
// split into sentences that are packed back together up to MaxChunkSize.
func Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= MaxChunkSize {
		return []string{text}
	}

	var chunks []string
	var current string
	for _, s := range sentenceBreak.Split(text, -1) {
		if strings.TrimSpace(s) == "" {
			continue
		}
		n, m := utf8.RuneCountInString(current), utf8.RuneCountInString(s)
		switch {
		case n+m > MaxChunkSize && n > 0:
			chunks = append(chunks, strings.TrimSpace(current))
			current = s
		case current == "":
			current = s
		default:
			current += ". " + s
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// ChunkID is the point id of chunk i of a message split into total chunks.
func ChunkID(messageID string, i, total int) string {
	if total == 1 {
		return messageID
	}
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s_chunk_%d", messageID, i))).String()
}

// Indexer stores messages for later retrieval.
type Indexer struct {
	embedder llm.Embedder
	colls    *vectorstore.CollectionManager
	bm25     *store.BM25Store
	logger   *slog.Logger
}

func NewIndexer(embedder llm.Embedder, colls *vectorstore.CollectionManager, bm25 *store.BM25Store, logger *slog.Logger) *Indexer {
	return &Indexer{embedder: embedder, colls: colls, bm25: bm25, logger: logger}
}

// Ingest indexes one message of the user's conversation. Private blocks
// are removed first. Every chunk goes into the keyword index; chunks that
// embed successfully also go into the user's vector collection. Failures
// are logged and never returned.
func (ix *Indexer) Ingest(ctx context.Context, userID string, msg models.Message) {
	text := privacy.StripPrivateTags(msg.Content)
	chunks := Chunk(text)
	if len(chunks) == 0 {
		ix.logger.Debug("skipping ingestion, no content", "message_id", msg.ID)
		return
	}

	createdAt := msg.CreatedAt.UTC().Format(time.RFC3339Nano)
	var points []vectorstore.Point
	for i, c := range chunks {
		id := ChunkID(msg.ID, i, len(chunks))

		if err := ix.bm25.Index(ctx, &store.Chunk{
			ID:             id,
			MessageID:      msg.ID,
			ConversationID: msg.ConversationID,
			UserID:         userID,
			ChunkIndex:     i,
			TotalChunks:    len(chunks),
			Text:           c,
			CreatedAt:      msg.CreatedAt.UnixMilli(),
		}); err != nil {
			ix.logger.Warn("keyword index failed", "message_id", msg.ID, "chunk", i, "error", err)
		}

		if ix.embedder == nil || ix.colls == nil {
			continue
		}
		vec, err := ix.embedder.Embed(ctx, c)
		if err != nil {
			ix.logger.Warn("embedding failed", "message_id", msg.ID, "chunk", i, "error", err)
			continue
		}
		points = append(points, vectorstore.Point{
			ID:     id,
			Vector: vec,
			Payload: map[string]any{
				"conversationId": msg.ConversationID,
				"userId":         userID,
				"text":           c,
				"messageId":      msg.ID,
				"chunkIndex":     i,
				"totalChunks":    len(chunks),
				"createdAt":      createdAt,
			},
		})
	}

	if len(points) == 0 {
		return
	}
	collection, err := ix.colls.EnsureForUser(ctx, userID)
	if err != nil {
		ix.logger.Warn("vector collection unavailable", "user_id", userID, "error", err)
		return
	}
	if err := ix.colls.Client().Upsert(ctx, collection, points); err != nil {
		ix.logger.Warn("vector upsert failed", "message_id", msg.ID, "error", err)
		return
	}
	ix.logger.Debug("message indexed", "message_id", msg.ID, "chunks", len(points))
}

// Forget removes a conversation's chunks from the vector collection and the
// keyword index.
func (ix *Indexer) Forget(ctx context.Context, userID, conversationID string) error {
	ids, err := ix.bm25.ChunkIDs(ctx, conversationID)
	if err != nil {
		return err
	}

	if len(ids) > 0 && ix.colls != nil {
		client := ix.colls.Client()
		collection := vectorstore.CollectionName(userID)
		exists, err := client.CollectionExists(ctx, collection)
		if err != nil {
			return err
		}
		if exists {
			if err := client.DeletePoints(ctx, collection, ids); err != nil {
				return fmt.Errorf("delete vector points: %w", err)
			}
		}
	}

	if err := ix.bm25.DeleteConversation(ctx, conversationID); err != nil {
		return err
	}
	ix.logger.Debug("conversation forgotten", "conversation_id", conversationID, "chunks", len(ids))
	return nil
}
