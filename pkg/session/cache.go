package session

import (
	"context"

	"github.com/learntrack/learnkit/pkg/cache"
)

// Cache is a non-authoritative index over the session store, keyed by
// token. It exists purely to avoid a store round trip on the hot path:
// correctness must hold with an empty cache, and a miss always falls
// back to the store. Implementations must be safe for concurrent use
// by multiple request-handling workers.
type Cache interface {
	Get(ctx context.Context, token string) (*Session, bool)
	Put(ctx context.Context, sess *Session)
	Remove(ctx context.Context, token string)
	Clear(ctx context.Context)
}

// LRUCache is the default process-local Cache, bounded in size with
// least-recently-used eviction.
type LRUCache struct {
	lru *cache.LRU[string, Session]
}

// NewLRUCache creates a bounded in-process session cache.
func NewLRUCache(capacity int) *LRUCache {
	return &LRUCache{lru: cache.New[string, Session](capacity)}
}

func (c *LRUCache) Get(ctx context.Context, token string) (*Session, bool) {
	sess, ok := c.lru.Get(token)
	if !ok {
		return nil, false
	}
	return &sess, true
}

func (c *LRUCache) Put(ctx context.Context, sess *Session) {
	if sess == nil || sess.Token == "" {
		return
	}
	c.lru.Put(sess.Token, *sess)
}

func (c *LRUCache) Remove(ctx context.Context, token string) {
	c.lru.Delete(token)
}

func (c *LRUCache) Clear(ctx context.Context) {
	c.lru.Clear()
}
