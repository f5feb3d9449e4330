// Package rediscache implements the cache contract on Redis, for multi-node
// deployments where per-process memory caches would go stale independently.
package rediscache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moklgydocs/mokpermissions/pkg/cache"
)

// Cache stores entries as Redis strings with per-key TTL. Sliding expiry is
// applied by refreshing the TTL on every hit, capped by the absolute TTL at
// write time.
type Cache struct {
	client     *redis.Client
	prefix     string
	slidingTTL time.Duration

	hits      uint64
	misses    uint64
	keysAdded uint64
}

// Config holds configuration for the Redis cache.
type Config struct {
	// Addr is the Redis host:port.
	Addr string

	// Password is optional.
	Password string

	// DB selects the Redis logical database.
	DB int

	// KeyPrefix namespaces this cache's keys within the Redis instance.
	KeyPrefix string

	// SlidingTTL refreshes a key's expiry on every hit. Zero disables it.
	SlidingTTL time.Duration
}

// New creates a Redis cache and verifies connectivity.
func New(ctx context.Context, config *Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = "mokperm:"
	}
	return &Cache{client: client, prefix: prefix, slidingTTL: config.SlidingTTL}, nil
}

// Get retrieves a value. A hit refreshes the sliding window when enabled.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		atomic.AddUint64(&c.misses, 1)
		return "", false
	}

	if c.slidingTTL > 0 {
		// Only shorten, never extend past the absolute expiry set on write.
		c.client.ExpireLT(ctx, c.prefix+key, c.slidingTTL)
	}

	atomic.AddUint64(&c.hits, 1)
	return value, true
}

// Set stores a value with the given absolute TTL.
func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}
	atomic.AddUint64(&c.keysAdded, 1)
	return nil
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key: %w", err)
	}
	return nil
}

// Clear removes all entries under this cache's prefix.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Metrics returns cache statistics. Evictions are Redis-side and are not
// visible here.
func (c *Cache) Metrics() *cache.Metrics {
	return &cache.Metrics{
		Hits:      atomic.LoadUint64(&c.hits),
		Misses:    atomic.LoadUint64(&c.misses),
		KeysAdded: atomic.LoadUint64(&c.keysAdded),
	}
}

var _ cache.Cache = (*Cache)(nil)
