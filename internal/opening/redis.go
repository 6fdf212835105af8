package opening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore keeps session states in Redis as JSON under
// "<prefix>:<sessionId>", each expiring after the configured TTL.
type RedisStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStateStore keys sessions as "<prefix>:<sessionID>". A trailing
// colon on prefix is ignored.
func NewRedisStateStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStateStore {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = "opening"
	}
	return &RedisStateStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStateStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

func (r *RedisStateStore) Load(ctx context.Context, sessionID string) (State, bool, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("redis get: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, false, fmt.Errorf("decode opening state: %w", err)
	}
	return st, true, nil
}

func (r *RedisStateStore) Save(ctx context.Context, sessionID string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode opening state: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStateStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

var _ StateStore = (*RedisStateStore)(nil)
