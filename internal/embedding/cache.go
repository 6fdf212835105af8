// Package embedding caches provider embeddings by content hash.
package embedding

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
)

// Cache is the persistent side of CachedEmbedder.
type Cache interface {
	Get(ctx context.Context, contentHash string) (*models.EmbeddingCacheEntry, error)
	Put(ctx context.Context, entry *models.EmbeddingCacheEntry) error
}

// CachedEmbedder wraps a provider embedder with content-hash caching.
type CachedEmbedder struct {
	client llm.Embedder
	cache  Cache
	model  string
	logger *slog.Logger
}

func NewCachedEmbedder(client llm.Embedder, cache Cache, model string, logger *slog.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		client: client,
		cache:  cache,
		model:  model,
		logger: logger,
	}
}

// Embed returns the embedding for text, using cache when available.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := ContentHash(e.model + "\x00" + text)

	entry, err := e.cache.Get(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if entry != nil {
		return BytesToFloat32(entry.Embedding), nil
	}

	vec, err := e.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	cacheEntry := &models.EmbeddingCacheEntry{
		ContentHash: hash,
		Embedding:   Float32ToBytes(vec),
		Dimension:   len(vec),
		Model:       e.model,
	}
	if err := e.cache.Put(ctx, cacheEntry); err != nil {
		e.logger.Warn("embedding cache write failed", "error", err)
	}

	return vec, nil
}

// ContentHash computes a SHA-256 hash of text content.
func ContentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}
