package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Store is a byte-valued cache with per-key TTL. Implementations treat
// backend failures as misses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{items: map[string]entry{}, now: time.Now}
}

// Set stores a copy of value under key for ttl
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now().Add(ttl),
	}
}

// Get returns the value for key if it has not expired
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		m.Delete(context.Background(), key)
		return nil, false
	}
	return append([]byte(nil), e.value...), true
}

// Delete removes a key
func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Invalidate removes all keys with the given prefix
func (m *Memory) Invalidate(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
}

// Len reports the number of stored entries, expired ones included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// GetJSON decodes the cached value for key into a T
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool) {
	var v T
	raw, ok := s.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		s.Delete(ctx, key)
		return v, false
	}
	return v, true
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Set(ctx, key, raw, ttl)
	return nil
}
