package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/internal/reliability/circuitbreaker"
)

func TestCacheSkipsRedisWhileBreakerOpen(t *testing.T) {
	breaker := circuitbreaker.NewCircuitBreaker(1, 1, time.Hour)
	breaker.RecordFailure()

	// a nil client would panic if the breaker let any call through
	c := NewCache(nil, "crm:", breaker, logger.Discard())
	ctx := context.Background()

	c.Set(ctx, "stages", []byte("[]"), time.Minute)
	c.Delete(ctx, "stages")
	_, ok := c.Get(ctx, "stages")
	assert.False(t, ok)
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())
}
