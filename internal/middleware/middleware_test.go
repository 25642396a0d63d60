package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/auth"
	"github.com/storyboarder/ai-service/internal/metrics"
)

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	chain := append(handlers, func(c *fiber.Ctx) error {
		return c.SendString(GetCaller(c))
	})
	app.Get("/t", chain...)
	return app
}

func get(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/t", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthenticate_ServiceToken(t *testing.T) {
	mw := NewAuthMiddleware(nil, "s3cret", "storyboarder")
	app := newApp(mw.Authenticate())

	token, err := auth.IssueServiceToken("script-editor", "s3cret", "storyboarder", time.Minute)
	require.NoError(t, err)

	status, body := get(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "script-editor", body)
}

func TestAuthenticate_Rejects(t *testing.T) {
	mw := NewAuthMiddleware(nil, "s3cret", "")
	app := newApp(mw.Authenticate())

	status, _ := get(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = get(t, app, "Basic abc")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := get(t, app, "Bearer not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "UNAUTHORIZED")
}

func TestAuthenticate_NotConfigured(t *testing.T) {
	app := newApp(NewAuthMiddleware(nil, "", "").Authenticate())

	status, body := get(t, app, "Bearer x")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "Authentication not configured")
}

func TestRateLimit_LocalCounter(t *testing.T) {
	rl := NewRateLimiter(nil, zap.NewNop())
	app := newApp(rl.Limit("test-local", 2, time.Minute))

	for i := 0; i < 2; i++ {
		status, _ := get(t, app, "")
		assert.Equal(t, fiber.StatusOK, status)
	}

	req := httptest.NewRequest("GET", "/t", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRateLimit_ZeroDisables(t *testing.T) {
	rl := NewRateLimiter(nil, zap.NewNop())
	app := newApp(rl.Limit("test-off", 0, time.Minute))

	for i := 0; i < 5; i++ {
		status, _ := get(t, app, "")
		assert.Equal(t, fiber.StatusOK, status)
	}
}

func TestRateLimit_PerCaller(t *testing.T) {
	rl := NewRateLimiter(nil, zap.NewNop())
	mw := NewAuthMiddleware(nil, "s3cret", "")
	app := newApp(mw.Authenticate(), rl.Limit("test-caller", 1, time.Minute))

	a, err := auth.IssueServiceToken("a", "s3cret", "", time.Minute)
	require.NoError(t, err)
	b, err := auth.IssueServiceToken("b", "s3cret", "", time.Minute)
	require.NoError(t, err)

	status, _ := get(t, app, "Bearer "+a)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = get(t, app, "Bearer "+a)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	status, _ = get(t, app, "Bearer "+b)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestMetrics_RecordsRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "204"))

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "204"))
	assert.Equal(t, before+1, after)
}

func newRedisLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRateLimiter(rdb, zap.NewNop()), mr
}

func TestRateLimit_RedisCounter(t *testing.T) {
	rl, mr := newRedisLimiter(t)
	app := newApp(rl.Limit("test-redis", 2, time.Minute))

	for i := 0; i < 2; i++ {
		status, _ := get(t, app, "")
		assert.Equal(t, fiber.StatusOK, status)
	}
	status, _ := get(t, app, "")
	assert.Equal(t, fiber.StatusTooManyRequests, status)

	key := "ratelimit:test-redis:0.0.0.0"
	ttl := mr.TTL(key)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	mr.FastForward(time.Minute)
	status, _ = get(t, app, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRateLimit_RedisCounterWithoutTTLGetsOne(t *testing.T) {
	rl, mr := newRedisLimiter(t)
	app := newApp(rl.Limit("test-stuck", 5, time.Minute))

	key := "ratelimit:test-stuck:0.0.0.0"
	require.NoError(t, mr.Set(key, "9"))
	require.Zero(t, mr.TTL(key))

	status, _ := get(t, app, "")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(time.Minute)
	status, _ = get(t, app, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	rl, mr := newRedisLimiter(t)
	app := newApp(rl.Limit("test-down", 1, time.Minute))
	mr.Close()

	for i := 0; i < 3; i++ {
		status, _ := get(t, app, "")
		assert.Equal(t, fiber.StatusOK, status)
	}
}
