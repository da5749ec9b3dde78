package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"seatmap/internal/shared/constants"
)

type RateLimitType string

const (
	RateLimitTypeDefault RateLimitType = "default"
	RateLimitTypeHold    RateLimitType = "hold"   // hold, release, confirm
	RateLimitTypeRender  RateLimitType = "render" // geometry and seat maps
	RateLimitTypeAdmin   RateLimitType = "admin"
	RateLimitTypeHealth  RateLimitType = "health"
)

type Config struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	HoldRequests    int           `json:"hold_requests"`
	RenderRequests  int           `json:"render_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// Sliding window over a sorted set of request timestamps (ms).
// KEYS[1] = window key; ARGV = window_start, now, limit, window_seconds, member
// -> {count after this request, remaining}
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_seconds = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

local current_count = redis.call('ZCARD', key)
if current_count >= limit then
    redis.call('EXPIRE', key, window_seconds)
    return {current_count + 1, 0}
end

redis.call('ZADD', key, now, ARGV[5])
redis.call('EXPIRE', key, window_seconds)
return {current_count + 1, limit - current_count - 1}
`)

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client redis.UniversalClient
	config *Config
	now    func() time.Time
}

func NewRateLimiter(client redis.UniversalClient, config *Config) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		now:    time.Now,
	}
}

// IsAllowed checks whether clientIP may make one more request of limitType
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)
	if !r.config.Enabled || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: r.now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := constants.BuildRateLimitKey(clientIP, string(limitType))
	return r.checkLimit(ctx, key, limit)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := r.now()
	windowStart := now.Add(-r.config.WindowDuration)
	member := strconv.FormatInt(now.UnixNano(), 10)

	values, err := slidingWindow.Run(ctx, r.client, []string{key},
		strconv.FormatInt(windowStart.UnixMilli(), 10),
		strconv.FormatInt(now.UnixMilli(), 10),
		strconv.Itoa(limit),
		strconv.Itoa(int(r.config.WindowDuration.Seconds())),
		member,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	return &Result{
		Allowed:   int(values[0]) <= limit,
		Limit:     limit,
		Remaining: int(values[1]),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypeHold:
		return r.config.HoldRequests
	case RateLimitTypeRender:
		return r.config.RenderRequests
	case RateLimitTypeAdmin:
		return r.config.AdminRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	for _, whitelistedIP := range r.config.WhitelistedIPs {
		if ip == whitelistedIP {
			return true
		}
	}
	return false
}
