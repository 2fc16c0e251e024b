// Package cache provides a short-TTL Redis cache for read-mostly reference
// data (cities, services, page content). The same slugs are read by several
// page sections per render, so a small TTL shields the database without the
// unbounded growth of in-process memoization.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StaticCache is a read-through cache keyed by reference-data kind and slug.
// A nil StaticCache (or one built from an empty address) is valid and acts as
// a pass-through, so Redis stays optional in development.
type StaticCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient creates a Redis client from the given address, or nil when
// the address is empty.
func NewRedisClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// New builds a StaticCache over the given client. The client may be nil.
func New(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *StaticCache {
	if client == nil {
		return nil
	}
	return &StaticCache{client: client, ttl: ttl, logger: logger}
}

func key(kind, slug string) string {
	return fmt.Sprintf("static:%s:%s", kind, slug)
}

// Get loads a cached value into dest. It reports whether the key was present.
// Cache failures are logged and treated as misses; the caller falls back to
// the database.
func (c *StaticCache) Get(ctx context.Context, kind, slug string, dest any) bool {
	if c == nil {
		return false
	}
	val, err := c.client.Get(ctx, key(kind, slug)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("kind", kind).Str("slug", slug).Msg("cache read failed")
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.logger.Warn().Err(err).Str("kind", kind).Str("slug", slug).Msg("cache entry corrupt")
		return false
	}
	return true
}

// Set stores a value under (kind, slug) with the cache TTL.
func (c *StaticCache) Set(ctx context.Context, kind, slug string, value any) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("kind", kind).Str("slug", slug).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key(kind, slug), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("kind", kind).Str("slug", slug).Msg("cache write failed")
	}
}

// Invalidate drops every cached entry of the given kind. Writers to a
// reference table call this so stale rows never outlive a write by more than
// one round-trip.
func (c *StaticCache) Invalidate(ctx context.Context, kind string) {
	if c == nil {
		return
	}
	pattern := key(kind, "*")
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Str("kind", kind).Msg("cache scan failed")
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn().Err(err).Str("kind", kind).Msg("cache invalidation failed")
		}
	}
}

// Close releases the underlying Redis connection.
func (c *StaticCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
