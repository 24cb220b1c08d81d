package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/crm/internal/reliability/circuitbreaker"
)

// Cache adapts Client to cache.Store. Redis failures are logged and reported
// as misses; after repeated failures the breaker skips redis entirely until
// its timeout elapses.
type Cache struct {
	client  *Client
	prefix  string
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewCache creates a redis-backed store whose keys are namespaced by prefix
func NewCache(client *Client, prefix string, breaker *circuitbreaker.CircuitBreaker, logger *slog.Logger) *Cache {
	return &Cache{client: client, prefix: prefix, breaker: breaker, logger: logger}
}

// Get returns the value for key, or a miss when redis is unavailable
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.breaker.AllowRequest() {
		return nil, false
	}
	b, err := c.client.Get(ctx, c.prefix+key)
	if errors.Is(err, ErrMiss) {
		c.breaker.RecordSuccess()
		return nil, false
	}
	if err != nil {
		c.fail("get", key, err)
		return nil, false
	}
	c.breaker.RecordSuccess()
	return b, true
}

// Set stores value under key for ttl
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if !c.breaker.AllowRequest() {
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl); err != nil {
		c.fail("set", key, err)
		return
	}
	c.breaker.RecordSuccess()
}

// Delete removes key
func (c *Cache) Delete(ctx context.Context, key string) {
	if !c.breaker.AllowRequest() {
		return
	}
	if err := c.client.Delete(ctx, c.prefix+key); err != nil {
		c.fail("delete", key, err)
		return
	}
	c.breaker.RecordSuccess()
}

func (c *Cache) fail(op, key string, err error) {
	c.breaker.RecordFailure()
	c.logger.Warn("redis cache operation failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}
