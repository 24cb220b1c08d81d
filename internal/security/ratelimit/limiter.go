package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/crm/internal/reliability/circuitbreaker"
)

// Allower decides whether one more request from key fits in its window
type Allower interface {
	Allow(ctx context.Context, key string) bool
}

// Limiter is an in-process sliding window limiter
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	maxReqs int
	window  time.Duration
	now     func() time.Time
	cleanup *time.Ticker
	done    chan struct{}
}

type bucket struct {
	requests []time.Time
	lastSeen time.Time
}

// NewLimiter allows maxRequests per key in any trailing window
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		maxReqs: maxRequests,
		window:  window,
		now:     time.Now,
		cleanup: time.NewTicker(5 * time.Minute),
		done:    make(chan struct{}),
	}
	go l.cleanupOldBuckets()
	return l
}

// Allow records a request for key unless the window is full. Empty keys are never limited.
func (l *Limiter) Allow(_ context.Context, key string) bool {
	if key == "" || l.maxReqs <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{}
		l.buckets[key] = b
	}

	cutoff := now.Add(-l.window)
	kept := b.requests[:0]
	for _, t := range b.requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.requests = kept
	b.lastSeen = now

	if len(b.requests) >= l.maxReqs {
		return false
	}
	b.requests = append(b.requests, now)
	return true
}

func (l *Limiter) cleanupOldBuckets() {
	for {
		select {
		case <-l.done:
			return
		case <-l.cleanup.C:
			l.mu.Lock()
			stale := l.now().Add(-3 * l.window)
			for key, b := range l.buckets {
				if b.lastSeen.Before(stale) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the background cleanup
func (l *Limiter) Stop() {
	l.cleanup.Stop()
	close(l.done)
}

// Windower is the redis operation the shared limiter needs
type Windower interface {
	SlidingWindow(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, error)
}

var _ Windower = (*redis.Client)(nil)

// RedisLimiter shares windows across API instances through redis. While
// redis is failing it falls back to the local limiter.
type RedisLimiter struct {
	store    Windower
	fallback *Limiter
	breaker  *circuitbreaker.CircuitBreaker
	prefix   string
	maxReqs  int
	window   time.Duration
	logger   *slog.Logger
}

// NewRedisLimiter creates a redis-backed limiter with a local fallback
func NewRedisLimiter(store Windower, fallback *Limiter, breaker *circuitbreaker.CircuitBreaker, logger *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		store:    store,
		fallback: fallback,
		breaker:  breaker,
		prefix:   "crm:ratelimit:",
		maxReqs:  fallback.maxReqs,
		window:   fallback.window,
		logger:   logger,
	}
}

// Allow checks the shared window for key
func (r *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" || r.maxReqs <= 0 {
		return true
	}
	if !r.breaker.AllowRequest() {
		return r.fallback.Allow(ctx, key)
	}
	ok, err := r.store.SlidingWindow(ctx, r.prefix+key, time.Now(), r.window, r.maxReqs)
	if err != nil {
		r.breaker.RecordFailure()
		r.logger.Warn("redis rate limit check failed, using local limiter",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return r.fallback.Allow(ctx, key)
	}
	r.breaker.RecordSuccess()
	return ok
}
