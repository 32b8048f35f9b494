package policies

import (
	"context"
	"time"

	"rentdom/internal/domain/inquiry"
)

// RateLimiter tracks submissions per client key over a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, now time.Time) (inquiry.Decision, error)
	Remaining(ctx context.Context, key string, now time.Time) (int, error)
}
