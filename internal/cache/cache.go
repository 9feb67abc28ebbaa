// Package cache stores JSON-encoded values with a time-to-live.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cache is a TTL key/value store.
type Cache interface {
	// Get returns the raw value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Fetch returns the cached value under key, or calls load and caches its result.
// The boolean reports whether the value came from the cache. Cache failures are
// logged and fall through to load.
func Fetch[T any](ctx context.Context, c Cache, log *zap.Logger, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, bool, error) {
	var zero T
	if raw, ok, err := c.Get(ctx, key); err != nil {
		log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, true, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return zero, false, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return zero, false, fmt.Errorf("failed to encode cache value: %w", err)
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, false, nil
}
