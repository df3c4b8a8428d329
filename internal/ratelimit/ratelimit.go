// Package ratelimit implements a fixed-window request quota keyed by client
// identity. Each key gets a counter that resets when its window expires; the
// counter advances on every check, including denied ones, so a client hammering
// the endpoint does not see its remaining budget refill early.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store counts requests per key within a fixed window.
//
// Check must increment the key's counter (creating or resetting the window as
// needed) and report whether the request is admitted and how much budget is
// left. Implementations must be safe for concurrent use.
type Store interface {
	Check(ctx context.Context, key string) (allowed bool, remaining int, err error)
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is an in-process fixed-window store backed by a mutex-guarded
// map. State is per process; horizontally scaled deployments that need a
// shared budget should use RedisStore instead.
type MemoryStore struct {
	limit  int
	period time.Duration

	mu      sync.Mutex
	windows map[string]*window

	now func() time.Time // injectable for tests
}

// NewMemoryStore returns a MemoryStore admitting limit requests per period.
func NewMemoryStore(limit int, period time.Duration) *MemoryStore {
	return &MemoryStore{
		limit:   limit,
		period:  period,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Check increments key's counter and reports admission and remaining budget.
// The error return is always nil; it exists to satisfy Store.
func (s *MemoryStore) Check(_ context.Context, key string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(s.period)}
		s.windows[key] = w
	}

	// Count denied attempts too: remaining stays pinned at zero while the
	// client keeps retrying inside the same window.
	w.count++

	remaining := s.limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= s.limit, remaining, nil
}

// Len reports the number of tracked keys. Expired windows are only replaced
// lazily on their next Check, so the count includes stale entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Sweep drops expired windows. Call it periodically from a background
// goroutine when the key space is unbounded.
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, k)
		}
	}
}
