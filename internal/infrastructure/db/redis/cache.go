package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key holds no cached value.
var ErrCacheMiss = errors.New("cache miss")

const defaultTTL = 5 * time.Minute

// ProjectionCache stores JSON snapshots of replayed aggregate lists so that
// read-heavy endpoints do not have to fold the full event stream on every
// request. Entries are invalidated whenever an event touches the aggregate
// type they project.
type ProjectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProjectionCache builds a cache backed by the given client. A ttl of zero
// falls back to a conservative default.
func NewProjectionCache(client *redis.Client, ttl time.Duration) *ProjectionCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ProjectionCache{client: client, ttl: ttl}
}

// Get unmarshals the cached value for key into dest. ErrCacheMiss is returned
// when no entry exists.
func (c *ProjectionCache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Set stores value under key with the configured TTL.
func (c *ProjectionCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate removes the given keys. Missing keys are not an error.
func (c *ProjectionCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
