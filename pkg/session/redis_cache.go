package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisCache is a Cache backed by Redis, useful when multiple
// instances should share a warm index. It keeps the same contract as
// the in-process cache: every Redis failure degrades to a miss and the
// durable store stays the final authority, so a flushed or unreachable
// Redis can never produce an incorrect "valid" result.
type RedisCache struct {
	client redis.UniversalClient
	log    *slog.Logger
}

// NewRedisCache creates a Redis-backed session cache.
func NewRedisCache(client redis.UniversalClient, log *slog.Logger) *RedisCache {
	if client == nil {
		panic("session: redis cache requires a client")
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisCache{client: client, log: log}
}

func (c *RedisCache) Get(ctx context.Context, token string) (*Session, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WarnContext(ctx, "session cache read failed, falling back to store", "error", err)
		}
		return nil, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Corrupted entry; drop it so the next lookup repopulates.
		_ = c.client.Del(ctx, redisKeyPrefix+token).Err()
		return nil, false
	}
	return &sess, true
}

func (c *RedisCache) Put(ctx context.Context, sess *Session) {
	if sess == nil || sess.Token == "" {
		return
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, redisKeyPrefix+sess.Token, data, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "session cache write failed", "error", err)
	}
}

func (c *RedisCache) Remove(ctx context.Context, token string) {
	if err := c.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		c.log.WarnContext(ctx, "session cache eviction failed", "error", err)
	}
}

// Clear drops every cached session entry. Scans by prefix instead of
// flushing the whole database, since the Redis instance may be shared.
func (c *RedisCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
	if err := iter.Err(); err != nil {
		c.log.WarnContext(ctx, "session cache clear failed", "error", err)
	}
}
