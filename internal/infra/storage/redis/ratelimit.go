package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"rentdom/internal/app/policies"
	"rentdom/internal/domain/inquiry"
)

const keyPrefix = "rentdom:inquiries:"

// allowScript prunes the window, then adds the attempt when there is room.
// Returns {allowed, count, oldest_ms}.
var allowScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then first = tonumber(oldest[2]) end
return {allowed, count, first}
`)

// RateLimiter keeps submission history in a sorted set per client so that every
// instance behind the load balancer shares one window.
type RateLimiter struct {
	client goredis.UniversalClient
	window inquiry.SlidingWindow
}

func NewRateLimiter(client goredis.UniversalClient, window inquiry.SlidingWindow) *RateLimiter {
	return &RateLimiter{client: client, window: window}
}

// NewClient connects and pings, closing the client when the ping fails.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (l *RateLimiter) Allow(ctx context.Context, key string, now time.Time) (inquiry.Decision, error) {
	res, err := allowScript.Run(ctx, l.client, []string{keyPrefix + key},
		now.UnixMilli(),
		l.window.Window.Milliseconds(),
		l.window.Limit,
		strconv.FormatInt(now.UnixNano(), 10)+":"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return inquiry.Decision{}, fmt.Errorf("redis rate limit %s: %w", key, err)
	}
	return decisionFrom(res, l.window), nil
}

func (l *RateLimiter) Remaining(ctx context.Context, key string, now time.Time) (int, error) {
	cutoff := strconv.FormatInt(now.Add(-l.window.Window).UnixMilli(), 10)
	count, err := l.client.ZCount(ctx, keyPrefix+key, "("+cutoff, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis rate limit count %s: %w", key, err)
	}
	left := l.window.Limit - int(count)
	if left < 0 {
		left = 0
	}
	return left, nil
}

func decisionFrom(res []int64, w inquiry.SlidingWindow) inquiry.Decision {
	if len(res) < 3 {
		return inquiry.Decision{}
	}
	remaining := w.Limit - int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return inquiry.Decision{
		Allowed:   res[0] == 1,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(res[2]).Add(w.Window).UTC(),
	}
}

var _ policies.RateLimiter = (*RateLimiter)(nil)
