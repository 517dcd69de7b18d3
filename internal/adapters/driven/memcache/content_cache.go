package memcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ContentCache = (*ContentCache)(nil)

// ContentCache implements driven.ContentCache in process memory. Used when
// no Redis is configured; entries are discarded with the session.
type ContentCache struct {
	cache *gocache.Cache
}

// NewContentCache creates an in-memory content cache with the given entry
// TTL (default one hour).
func NewContentCache(ttl time.Duration) *ContentCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ContentCache{cache: gocache.New(ttl, 2*ttl)}
}

func contentKey(projectID, docKey string) string {
	return projectID + "_" + docKey
}

// Get returns the cached body for a document, if present.
func (c *ContentCache) Get(ctx context.Context, projectID, docKey string) (string, bool) {
	v, ok := c.cache.Get(contentKey(projectID, docKey))
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SetOnce stores content unless the key already has an entry. go-cache's Add
// is the write-once primitive: it errors when the key exists.
func (c *ContentCache) SetOnce(ctx context.Context, projectID, docKey, content string) (bool, error) {
	if err := c.cache.Add(contentKey(projectID, docKey), content, gocache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

// Contains reports whether the key already has an entry.
func (c *ContentCache) Contains(ctx context.Context, projectID, docKey string) bool {
	_, ok := c.cache.Get(contentKey(projectID, docKey))
	return ok
}
