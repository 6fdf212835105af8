// Package search retrieves semantically related past messages and indexes
// new ones. Vector search runs against per-user Qdrant collections; SQLite
// FTS5 is the keyword fallback when the vector path fails or finds nothing.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/store"
	"github.com/iammorganparry/companion/internal/vectorstore"
)

// Scope limits a query to one user's messages, optionally to a single
// conversation.
type Scope struct {
	UserID         string
	ConversationID string
}

// Retriever returns past snippets related to a text, best first.
type Retriever interface {
	Query(ctx context.Context, text string, scope Scope, topK int) ([]models.SemanticResult, error)
}

// SemanticRetriever is the vector-then-keyword Retriever.
type SemanticRetriever struct {
	embedder llm.Embedder
	qdrant   *vectorstore.QdrantClient
	bm25     *store.BM25Store
	minScore float64
	logger   *slog.Logger
}

func NewSemanticRetriever(embedder llm.Embedder, qdrant *vectorstore.QdrantClient, bm25 *store.BM25Store, minScore float64, logger *slog.Logger) *SemanticRetriever {
	return &SemanticRetriever{
		embedder: embedder,
		qdrant:   qdrant,
		bm25:     bm25,
		minScore: minScore,
		logger:   logger,
	}
}

// Query never fails because of the vector backend: its errors are logged
// and the keyword index is consulted instead.
func (r *SemanticRetriever) Query(ctx context.Context, text string, scope Scope, topK int) ([]models.SemanticResult, error) {
	if strings.TrimSpace(text) == "" || scope.UserID == "" || topK <= 0 {
		return []models.SemanticResult{}, nil
	}

	results, err := r.vectorQuery(ctx, text, scope, topK)
	if err != nil {
		r.logger.Warn("vector search failed, using keyword search", "user_id", scope.UserID, "error", err)
	}
	if len(results) > 0 {
		return results, nil
	}
	return r.keywordQuery(ctx, text, scope, topK)
}

func (r *SemanticRetriever) vectorQuery(ctx context.Context, text string, scope Scope, topK int) ([]models.SemanticResult, error) {
	if r.qdrant == nil || r.embedder == nil {
		return nil, nil
	}

	collection := vectorstore.CollectionName(scope.UserID)
	exists, err := r.qdrant.CollectionExists(ctx, collection)
	if err != nil || !exists {
		return nil, err
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	hits, err := r.qdrant.Search(ctx, collection, vec,
		vectorstore.Filter{"userId": scope.UserID, "conversationId": scope.ConversationID},
		topK, r.minScore)
	if err != nil {
		return nil, err
	}

	out := make([]models.SemanticResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.SemanticResult{
			ID:             h.ID,
			Text:           payloadString(h.Payload, "text"),
			Score:          h.Score,
			ConversationID: payloadString(h.Payload, "conversationId"),
			UserID:         payloadString(h.Payload, "userId"),
			CreatedAt:      payloadString(h.Payload, "createdAt"),
		})
	}
	sortByScore(out)
	return out, nil
}

func (r *SemanticRetriever) keywordQuery(ctx context.Context, text string, scope Scope, topK int) ([]models.SemanticResult, error) {
	q := FTSQuery(text)
	if q == "" {
		return []models.SemanticResult{}, nil
	}

	rows, err := r.bm25.Search(ctx, q, scope.UserID, scope.ConversationID, topK)
	if err != nil {
		return nil, err
	}

	out := make([]models.SemanticResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToSemanticResult())
	}
	sortByScore(out)
	return out, nil
}

func sortByScore(results []models.SemanticResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

func payloadString(p map[string]any, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}
