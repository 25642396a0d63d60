package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/pkg/response"
)

// RateLimiter counts requests per caller in fixed windows. Counters live in
// Redis when a client is given and in process memory otherwise.
type RateLimiter struct {
	redis  *redis.Client
	local  *cache.Cache
	logger *zap.Logger
}

// NewRateLimiter creates a limiter. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		local:  cache.New(time.Hour, 10*time.Minute),
		logger: logger.Named("ratelimit"),
	}
}

// Limit creates a rate limiting middleware. maxRequests <= 0 disables it.
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	if maxRequests <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		subject := GetCaller(c)
		if subject == "" {
			subject = c.IP()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, subject)

		count, ttl, err := rl.incr(c.UserContext(), key, window)
		if err != nil {
			// fail open
			rl.logger.Warn("rate limit counter unavailable", zap.String("key", key), zap.Error(err))
			return c.Next()
		}

		if count > int64(maxRequests) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(maxRequests-int(count)))

		return c.Next()
	}
}

func (rl *RateLimiter) incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if rl.redis == nil {
		return rl.incrLocal(key, window)
	}

	// INCR and EXPIRE NX run in one MULTI; NX anchors the window at the
	// first request.
	var incr *redis.IntCmd
	var ttlCmd *redis.DurationCmd
	_, err := rl.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttlCmd = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = window
	}
	return incr.Val(), ttl, nil
}

func (rl *RateLimiter) incrLocal(key string, window time.Duration) (int64, time.Duration, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if err := rl.local.Add(key, int64(1), window); err == nil {
			return 1, window, nil
		}
		count, err := rl.local.IncrementInt64(key, 1)
		if err != nil {
			// expired between Add and Increment
			continue
		}
		_, expires, _ := rl.local.GetWithExpiration(key)
		return count, time.Until(expires), nil
	}
	return 0, 0, errors.New("rate limit counter contention")
}

// SuggestLimit limits shot suggestion requests per minute.
func (rl *RateLimiter) SuggestLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("suggest", maxPerMin, time.Minute)
}

// PanelLimit limits panel generation and refinement requests per minute.
func (rl *RateLimiter) PanelLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("panel", maxPerMin, time.Minute)
}

// StoryboardLimit limits storyboard job submissions per hour.
func (rl *RateLimiter) StoryboardLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("storyboard", maxPerHour, time.Hour)
}
