package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/internal/reliability/circuitbreaker"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(max, window)
	l.now = func() time.Time { return now }
	t.Cleanup(l.Stop)
	return l, &now
}

func TestLimiterSlidingWindow(t *testing.T) {
	ctx := context.Background()
	l, now := newTestLimiter(t, 2, time.Minute)

	assert.True(t, l.Allow(ctx, "10.0.0.1"))
	assert.True(t, l.Allow(ctx, "10.0.0.1"))
	assert.False(t, l.Allow(ctx, "10.0.0.1"))
	assert.True(t, l.Allow(ctx, "10.0.0.2"), "keys are limited independently")

	*now = now.Add(61 * time.Second)
	assert.True(t, l.Allow(ctx, "10.0.0.1"))
}

func TestLimiterEmptyKeyAndDisabled(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 1, time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(ctx, ""))
	}

	off, _ := newTestLimiter(t, 0, time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, off.Allow(ctx, "10.0.0.1"))
	}
}

type stubWindow struct {
	allow bool
	err   error
	calls int
}

func (s *stubWindow) SlidingWindow(context.Context, string, time.Time, time.Duration, int) (bool, error) {
	s.calls++
	return s.allow, s.err
}

func TestRedisLimiterUsesSharedWindow(t *testing.T) {
	ctx := context.Background()
	local, _ := newTestLimiter(t, 1, time.Minute)
	store := &stubWindow{allow: false}
	r := NewRedisLimiter(store, local, circuitbreaker.NewCircuitBreaker(3, 1, time.Minute), logger.Discard())

	assert.False(t, r.Allow(ctx, "10.0.0.1"))
	assert.Equal(t, 1, store.calls)
}

func TestRedisLimiterFallsBackWhenRedisFails(t *testing.T) {
	ctx := context.Background()
	local, _ := newTestLimiter(t, 1, time.Minute)
	store := &stubWindow{err: errors.New("connection refused")}
	breaker := circuitbreaker.NewCircuitBreaker(1, 1, time.Hour)
	r := NewRedisLimiter(store, local, breaker, logger.Discard())

	assert.True(t, r.Allow(ctx, "10.0.0.1"))
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	assert.False(t, r.Allow(ctx, "10.0.0.1"), "local window applies while redis is down")
	assert.Equal(t, 1, store.calls, "open breaker skips redis")
}
