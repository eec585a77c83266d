// Package cache provides an optional result cache for computed value metrics.
// The engine itself never persists anything; callers use this to avoid
// recomputing metrics between scraper updates.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/brickfolio/brickfolio/internal/valuation"
)

// MetricsCache caches computed value metrics keyed by product ID.
type MetricsCache interface {
	Get(ctx context.Context, productID string) (*valuation.ValueMetrics, bool)
	Set(ctx context.Context, productID string, metrics valuation.ValueMetrics) error
	Invalidate(ctx context.Context, productID string) error
}

const keyPrefix = "brickfolio:metrics:"

// RedisCache is a Redis-backed MetricsCache with msgpack-encoded values.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis at addr. Entries expire after ttl.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns cached metrics for the product, if present. Cache errors are
// indistinguishable from misses on purpose: the caller recomputes either way.
func (c *RedisCache) Get(ctx context.Context, productID string) (*valuation.ValueMetrics, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+productID).Bytes()
	if err != nil {
		return nil, false
	}
	var m valuation.ValueMetrics
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}

// Set stores metrics for the product.
func (c *RedisCache) Set(ctx context.Context, productID string, metrics valuation.ValueMetrics) error {
	raw, err := msgpack.Marshal(metrics)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+productID, raw, c.ttl).Err()
}

// Invalidate drops the cached metrics for the product.
func (c *RedisCache) Invalidate(ctx context.Context, productID string) error {
	return c.client.Del(ctx, keyPrefix+productID).Err()
}

// MemoryCache is an in-process MetricsCache used in tests and when no Redis
// address is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]valuation.ValueMetrics
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]valuation.ValueMetrics)}
}

// Get returns cached metrics for the product, if present.
func (c *MemoryCache) Get(_ context.Context, productID string) (*valuation.ValueMetrics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[productID]
	if !ok {
		return nil, false
	}
	return &m, true
}

// Set stores metrics for the product.
func (c *MemoryCache) Set(_ context.Context, productID string, metrics valuation.ValueMetrics) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[productID] = metrics
	return nil
}

// Invalidate drops the cached metrics for the product.
func (c *MemoryCache) Invalidate(_ context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productID)
	return nil
}
