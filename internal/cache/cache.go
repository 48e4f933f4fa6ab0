// Package cache provides an optional Redis-backed cache for rendered post
// HTML and the generated feed XML. The blog works without it — a nil
// *RenderCache is valid and every method degrades to a miss or a no-op.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces render-cache keys in Redis.
	keyPrefix = "render:"

	// DefaultTTL is how long a rendered artifact stays cached.
	DefaultTTL = 5 * time.Minute
)

// Connect creates a Redis client and verifies the connection with a ping.
func Connect(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("redis connected", "addr", addr)
	return client, nil
}

// RenderCache stores rendered artifacts (post HTML, feed XML) in Redis.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a render cache backed by the given Redis client.
func New(client *redis.Client, ttl time.Duration) *RenderCache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &RenderCache{client: client, ttl: ttl}
}

// Get retrieves a cached artifact. Returns false on miss or when caching is
// disabled.
func (c *RenderCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("render cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a rendered artifact with the configured TTL.
func (c *RenderCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		slog.Warn("render cache set error", "key", key, "error", err)
	}
}

// InvalidateAll drops every cached artifact. Called after any post or
// taxonomy mutation, since listings, the feed, and the sitemap may all be
// affected.
func (c *RenderCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("render cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("render cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("render cache cleared", "deleted", deleted)
	}
}

// PostKey returns the cache key for a rendered post.
func PostKey(slug string) string {
	return "post:" + slug
}

// FeedKey is the cache key for the RSS feed document.
func FeedKey() string {
	return "feed"
}

// SitemapKey is the cache key for the sitemap document.
func SitemapKey() string {
	return "sitemap"
}
