package vectorstore

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

const collectionPrefix = "companion_messages_"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// CollectionManager maps user IDs to Qdrant collections and ensures
// they are created on first use.
type CollectionManager struct {
	client *QdrantClient
	known  map[string]bool
	mu     sync.RWMutex
}

func NewCollectionManager(client *QdrantClient) *CollectionManager {
	return &CollectionManager{
		client: client,
		known:  make(map[string]bool),
	}
}

// CollectionName returns the Qdrant collection name for a user ID.
func CollectionName(userID string) string {
	return collectionPrefix + unsafeName.ReplaceAllString(userID, "_")
}

// EnsureForUser creates the Qdrant collection for a user if it doesn't
// already exist. Results are cached in-memory.
func (m *CollectionManager) EnsureForUser(ctx context.Context, userID string) (string, error) {
	name := CollectionName(userID)

	m.mu.RLock()
	if m.known[name] {
		m.mu.RUnlock()
		return name, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if m.known[name] {
		return name, nil
	}

	if err := m.client.EnsureCollection(ctx, name); err != nil {
		return "", fmt.Errorf("ensure collection %s: %w", name, err)
	}

	m.known[name] = true
	return name, nil
}

// Client exposes the underlying Qdrant client.
func (m *CollectionManager) Client() *QdrantClient {
	return m.client
}
