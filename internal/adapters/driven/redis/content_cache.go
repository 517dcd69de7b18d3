package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ContentCache = (*ContentCache)(nil)

const contentPrefix = "doccontent:"

// defaultTTL keeps entries for roughly one listing session; the cache is a
// convenience, not a source of truth.
const defaultTTL = time.Hour

// ContentCache implements driven.ContentCache on Redis. SETNX enforces the
// write-once invariant per (projectID, docKey).
type ContentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContentCache creates a Redis-backed content cache.
func NewContentCache(client *redis.Client) *ContentCache {
	return &ContentCache{client: client, ttl: defaultTTL}
}

// NewContentCacheTTL creates a cache with a custom entry TTL.
func NewContentCacheTTL(client *redis.Client, ttl time.Duration) *ContentCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ContentCache{client: client, ttl: ttl}
}

func contentKey(projectID, docKey string) string {
	return contentPrefix + projectID + ":" + docKey
}

// Get returns the cached body for a document, if present.
func (c *ContentCache) Get(ctx context.Context, projectID, docKey string) (string, bool) {
	val, err := c.client.Get(ctx, contentKey(projectID, docKey)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// SetOnce stores content unless the key already has an entry.
func (c *ContentCache) SetOnce(ctx context.Context, projectID, docKey, content string) (bool, error) {
	return c.client.SetNX(ctx, contentKey(projectID, docKey), content, c.ttl).Result()
}

// Contains reports whether the key already has an entry.
func (c *ContentCache) Contains(ctx context.Context, projectID, docKey string) bool {
	n, err := c.client.Exists(ctx, contentKey(projectID, docKey)).Result()
	return err == nil && n > 0
}
