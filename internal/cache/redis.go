package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jmylchreest/xtreamr/internal/storage"
)

const redisKeyPrefix = "xtreamr"

// RedisStore keeps snapshots in Redis under "xtreamr:<provider slug>:<key>".
// Staleness is delegated to key expiry.
type RedisStore struct {
	client   *redis.Client
	provider string
	ttl      time.Duration
	logger   *slog.Logger
}

// NewRedisStore parses a Redis URL (e.g. "redis://host:6379/0") and returns a
// store using it. A ttl of zero or less stores keys without expiry.
func NewRedisStore(rawURL, provider string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client:   redis.NewClient(opts),
		provider: provider,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

// Ping checks the connection to Redis.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) key(key string) string {
	return redisKeyPrefix + ":" + storage.Slugify(r.provider) + ":" + key
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis cache read failed", slog.String("key", r.key(key)), slog.String("error", err.Error()))
		}
		return nil, false
	}
	if !usable(raw) {
		return nil, false
	}
	return json.RawMessage(raw), true
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, key string, data json.RawMessage) bool {
	if !json.Valid(data) {
		return false
	}
	if err := r.client.Set(ctx, r.key(key), []byte(data), r.ttl).Err(); err != nil {
		r.logger.Warn("redis cache write failed", slog.String("key", r.key(key)), slog.String("error", err.Error()))
		return false
	}
	return true
}
