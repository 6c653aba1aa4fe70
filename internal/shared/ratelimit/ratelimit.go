// Package ratelimit implements per-address fixed-window request budgets.
package ratelimit

import (
	"context"
	"time"

	"tailorhire-api/internal/shared/telemetry"
)

// Window is the state recorded for one address.
type Window struct {
	Start time.Time
	Count int
}

// Store persists windows keyed by client address.
//
// Record counts one request for key. If the stored window is older than
// window (or absent) a new window starting at now is opened with Count 1.
// When the stored count has already reached limit the request is not
// counted and the unchanged window is returned with recorded=false.
type Store interface {
	Record(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (w Window, recorded bool, err error)
}

// Decision is the outcome of a single check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter applies Limit requests per Window to each address.
type Limiter struct {
	Store  Store
	Limit  int
	Window time.Duration
	Now    func() time.Time
}

// New builds a limiter. A nil store defaults to an in-memory store.
func New(store Store, limit int, window time.Duration) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{Store: store, Limit: limit, Window: window, Now: time.Now}
}

// Clock returns the limiter's time source.
func (l *Limiter) Clock() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

// CheckAndRecord counts a request from address at now and reports whether
// it fits in the current window. Store failures fail open.
func (l *Limiter) CheckAndRecord(ctx context.Context, address string, now time.Time) Decision {
	if l == nil || l.Limit <= 0 || l.Window <= 0 {
		return Decision{Allowed: true}
	}
	w, recorded, err := l.Store.Record(ctx, address, now, l.Limit, l.Window)
	if err != nil {
		telemetry.Warn("ratelimit.store_error", map[string]any{
			"client_ip": address,
			"err":       err.Error(),
		})
		return Decision{Allowed: true, Remaining: l.Limit}
	}
	if recorded {
		return Decision{Allowed: true, Remaining: max(l.Limit-w.Count, 0)}
	}
	retry := l.Window - now.Sub(w.Start)
	if retry < 0 {
		retry = 0
	}
	return Decision{Allowed: false, RetryAfter: retry}
}
