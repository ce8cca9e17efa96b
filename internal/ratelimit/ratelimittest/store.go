// Package ratelimittest provides an in-memory counter store for handler tests.
package ratelimittest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/yashng7/zero-grid/internal/ratelimit"
)

// MemoryStore keeps counters in a map.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]ratelimit.Counter
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]ratelimit.Counter)}
}

// NewLimiter returns a limiter over a fresh MemoryStore with logging discarded.
func NewLimiter() *ratelimit.Limiter {
	return ratelimit.New(NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*ratelimit.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[key]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string, resetAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] = ratelimit.Counter{Count: 1, ResetAt: resetAt}
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters[key]
	c.Count++
	s.counters[key] = c
	return c.Count, nil
}

func (s *MemoryStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, c := range s.counters {
		if c.ResetAt.Before(before) {
			delete(s.counters, k)
			n++
		}
	}
	return n, nil
}
