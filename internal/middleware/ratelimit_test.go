package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRateLimiter(rdb, true), mr
}

func TestRateLimiter_AllowWithinWindow(t *testing.T) {
	t.Parallel()
	limiter, _ := newTestLimiter(t)
	rule := RateLimitRule{Scope: "comments", Limit: 3, Window: time.Hour}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, rule, "user:a")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should pass", i+1)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := limiter.Allow(ctx, rule, "user:a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))

	other, err := limiter.Allow(ctx, rule, "user:b")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "limits are per identity")
}

func TestRateLimiter_RejectedRequestsAreNotCounted(t *testing.T) {
	t.Parallel()
	limiter, mr := newTestLimiter(t)
	rule := RateLimitRule{Scope: "auth", Limit: 1, Window: time.Minute}
	ctx := context.Background()

	_, err := limiter.Allow(ctx, rule, "ip:1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, rule, "ip:1")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	}

	members, err := mr.ZMembers(rateLimitKey("auth", "ip:1"))
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestRateLimiter_SlidingWindowExpiresOldEntries(t *testing.T) {
	t.Parallel()
	limiter, _ := newTestLimiter(t)
	now := time.Now()
	limiter.now = func() time.Time { return now }
	rule := RateLimitRule{Scope: "posts", Limit: 1, Window: time.Minute}
	ctx := context.Background()

	d, err := limiter.Allow(ctx, rule, "user:a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, rule, "user:a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	now = now.Add(61 * time.Second)
	d, err = limiter.Allow(ctx, rule, "user:a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRateLimiter_DisabledOrNilRedisAllows(t *testing.T) {
	t.Parallel()
	rule := RateLimitRule{Scope: "auth", Limit: 1, Window: time.Minute}

	d, err := NewRateLimiter(nil, true).Allow(context.Background(), rule, "ip:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	limiter, _ := newTestLimiter(t)
	limiter.enabled = false
	for i := 0; i < 5; i++ {
		d, err := limiter.Allow(context.Background(), rule, "ip:1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}

func TestRateLimiter_HandlerReturns429(t *testing.T) {
	t.Parallel()
	limiter, _ := newTestLimiter(t)
	app := fiber.New()
	app.Post("/login", limiter.Handler(RateLimitRule{Scope: "auth", Limit: 2, Window: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRateLimiter_HandlerFailsOpen(t *testing.T) {
	t.Parallel()
	limiter, mr := newTestLimiter(t)
	mr.Close()

	app := fiber.New()
	app.Get("/", limiter.Handler(RateLimitRule{Scope: "api", Limit: 1, Window: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}
