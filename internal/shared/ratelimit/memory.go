package ratelimit

import (
	"context"
	"sync"
	"time"
)

const purgeEvery = 256

// MemoryStore keeps windows in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]Window
	calls   int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]Window)}
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, key string, now time.Time, limit int, window time.Duration) (Window, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.calls%purgeEvery == 0 {
		s.purge(now, window)
	}

	w, ok := s.windows[key]
	if !ok || now.Sub(w.Start) >= window {
		w = Window{Start: now, Count: 1}
		s.windows[key] = w
		return w, true, nil
	}
	if w.Count >= limit {
		return w, false, nil
	}
	w.Count++
	s.windows[key] = w
	return w, true, nil
}

// Len reports the number of tracked addresses.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *MemoryStore) purge(now time.Time, window time.Duration) {
	for key, w := range s.windows {
		if now.Sub(w.Start) >= window {
			delete(s.windows, key)
		}
	}
}
