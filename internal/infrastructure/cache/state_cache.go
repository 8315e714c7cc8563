package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wastetrack/backend/internal/domain/event"
	"github.com/wastetrack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StateCache caches point-in-time replay results in Redis. A fold
// bounded by a past instant is stable: the log is append-only and the
// bound excludes anything appended later, so cached entries never go
// stale. The TTL is purely an eviction policy.
//
// Values round-trip through JSON, which downgrades dates and decimals
// to strings. Callers must re-normalize a cache hit before use;
// normalization is idempotent so this is loss-free.
type StateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStateCache creates a StateCache from Redis configuration.
func NewStateCache(cfg config.RedisConfig, ttl time.Duration, log *zap.Logger) (*StateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &StateCache{client: client, ttl: ttl, logger: log}, nil
}

// Get returns the cached state for a stream at an instant, or false on
// a miss. Cache failures degrade to a miss; replay correctness never
// depends on the cache.
func (c *StateCache) Get(ctx context.Context, streamID string, at time.Time) (event.State, bool) {
	raw, err := c.client.Get(ctx, c.key(streamID, at)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("state cache read failed", zap.String("stream_id", streamID), zap.Error(err))
		}
		return nil, false
	}
	var state event.State
	if err := json.Unmarshal(raw, &state); err != nil {
		c.logger.Warn("state cache entry corrupt", zap.String("stream_id", streamID), zap.Error(err))
		return nil, false
	}
	return state, true
}

// Set stores the state for a stream at an instant.
func (c *StateCache) Set(ctx context.Context, streamID string, at time.Time, state event.State) {
	raw, err := json.Marshal(state)
	if err != nil {
		c.logger.Warn("state cache marshal failed", zap.String("stream_id", streamID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(streamID, at), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("state cache write failed", zap.String("stream_id", streamID), zap.Error(err))
	}
}

// Close releases the underlying Redis connection.
func (c *StateCache) Close() error {
	return c.client.Close()
}

func (c *StateCache) key(streamID string, at time.Time) string {
	return fmt.Sprintf("wt:state:%s:%d", streamID, at.UnixNano())
}
