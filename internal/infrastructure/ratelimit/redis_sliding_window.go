package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snowch/vast-sp-console/internal/domain/service"
	apperrors "github.com/snowch/vast-sp-console/pkg/errors"
)

// slidingWindowScript implements the same admit-or-reject decision as the
// in-memory limiter atomically in Redis: evict entries older than the
// window, reject without recording when the window is full, otherwise
// record now.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local max_calls = tonumber(ARGV[3])

-- Exclusive bound: an entry exactly one window old is still counted,
-- matching the in-memory limiter's eviction rule.
redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. (now - window_ms))

local count = redis.call('ZCARD', key)
if count >= max_calls then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. redis.call('INCR', key .. ':seq'))
redis.call('PEXPIRE', key, window_ms)
redis.call('PEXPIRE', key .. ':seq', window_ms)
return 1
`

// RedisSlidingWindow is a Redis-backed sliding-window limiter sharing one
// admission budget across replicas. Keys expire one full window after the
// last admitted request.
type RedisSlidingWindow struct {
	client   redis.UniversalClient
	script   *redis.Script
	maxCalls int
	window   time.Duration
	prefix   string
}

var _ service.RateLimitService = (*RedisSlidingWindow)(nil)

// NewRedisSlidingWindow creates a limiter on the given Redis client.
func NewRedisSlidingWindow(client redis.UniversalClient, maxCalls int, window time.Duration) *RedisSlidingWindow {
	return &RedisSlidingWindow{
		client:   client,
		script:   redis.NewScript(slidingWindowScript),
		maxCalls: maxCalls,
		window:   window,
		prefix:   "ratelimit:",
	}
}

// Allow implements service.RateLimitService. Redis failures surface as
// errors; the caller decides whether to fail open.
func (r *RedisSlidingWindow) Allow(ctx context.Context, clientKey string) (bool, error) {
	now := time.Now().UnixMilli()
	result, err := r.script.Run(ctx, r.client,
		[]string{r.prefix + clientKey},
		now, r.window.Milliseconds(), r.maxCalls,
	).Int()
	if err != nil {
		return false, apperrors.Unavailable("rate limiter backend unavailable").WithCause(err)
	}
	return result == 1, nil
}

// Key returns the Redis key used for a client, exposed for tests.
func (r *RedisSlidingWindow) Key(clientKey string) string {
	return fmt.Sprintf("%s%s", r.prefix, clientKey)
}
