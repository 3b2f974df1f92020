package downstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// Cache memoizes platform identity lookups (pages, organizations).
// Satisfied by the redis caching client.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
}

// TokenKey builds a cache key that never contains the raw access token.
func TokenKey(prefix, token string, parts ...string) string {
	sum := sha256.Sum256([]byte(token))
	key := "syndication:" + prefix + ":" + hex.EncodeToString(sum[:12])
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Cached returns the cached value for key, or calls load and stores its result.
// Cache failures are logged and otherwise ignored.
func Cached[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if c != nil {
		var hit T
		found, err := c.Get(ctx, key, &hit)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if found {
			return hit, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if c != nil {
		if err := c.Set(ctx, key, v, ttl); err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return v, nil
}
