package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key does not exist
var ErrMiss = errors.New("redis: key not found")

// Client wraps the Redis client with the operations the CRM uses
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewClient creates a new Redis client and verifies connectivity
func NewClient(ctx context.Context, url string, logger *slog.Logger) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis", slog.String("addr", opts.Addr), slog.Int("db", opts.DB))
	return &Client{rdb: rdb, logger: logger}, nil
}

// Set stores a value with optional TTL
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value, returning ErrMiss for absent keys
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// SlidingWindow records one hit for key at now and reports whether the number
// of hits inside the trailing window, this one included, stays within limit.
// Rejected hits are not recorded.
func (c *Client) SlidingWindow(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, error) {
	cutoff := now.Add(-window).UnixNano()

	var card *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		card = pipe.ZCard(ctx, key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to read window %s: %w", key, err)
	}
	if card.Val() >= int64(limit) {
		return false, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to record hit %s: %w", key, err)
	}
	return true, nil
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
