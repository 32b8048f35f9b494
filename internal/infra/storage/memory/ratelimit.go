package memory

import (
	"context"
	"sync"
	"time"

	"rentdom/internal/app/policies"
	"rentdom/internal/domain/inquiry"
)

// RateLimiter keeps per-client submission history in process memory.
type RateLimiter struct {
	Window inquiry.SlidingWindow

	mu      sync.Mutex
	history map[string][]time.Time
}

func NewRateLimiter(window inquiry.SlidingWindow) *RateLimiter {
	return &RateLimiter{Window: window, history: make(map[string][]time.Time)}
}

func (l *RateLimiter) Allow(ctx context.Context, key string, now time.Time) (inquiry.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept, decision := l.Window.Decide(l.history[key], now)
	if len(kept) == 0 {
		delete(l.history, key)
	} else {
		l.history[key] = kept
	}
	return decision, nil
}

func (l *RateLimiter) Remaining(ctx context.Context, key string, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Window.Remaining(l.history[key], now), nil
}

var _ policies.RateLimiter = (*RateLimiter)(nil)
