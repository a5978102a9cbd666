package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"vecinu/internal/models"
	"vecinu/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitRule is a sliding-window budget for one scope.
type RateLimitRule struct {
	Scope  string
	Limit  int
	Window time.Duration
}

// Budgets used by the API routes.
var (
	AuthRateLimit    = RateLimitRule{Scope: "auth", Limit: 5, Window: 15 * time.Minute}
	PostRateLimit    = RateLimitRule{Scope: "posts", Limit: 10, Window: time.Hour}
	CommentRateLimit = RateLimitRule{Scope: "comments", Limit: 30, Window: time.Hour}
	APIRateLimit     = RateLimitRule{Scope: "api", Limit: 100, Window: time.Minute}
)

// RateLimitDecision is the outcome of a single check.
type RateLimitDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter enforces sliding-window limits backed by a Redis sorted set per
// identity. A nil client or a disabled limiter allows everything.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
	now     func() time.Time
}

// NewRateLimiter builds a limiter. Pass enabled=false to turn limiting off.
func NewRateLimiter(rdb *redis.Client, enabled bool) *RateLimiter {
	return &RateLimiter{rdb: rdb, enabled: enabled, now: time.Now}
}

func rateLimitKey(scope, identity string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, identity)
}

// Allow records one request for identity and reports whether it fits in the window.
// Requests rejected by the limit are not counted against later windows.
func (l *RateLimiter) Allow(ctx context.Context, rule RateLimitRule, identity string) (RateLimitDecision, error) {
	if l == nil || !l.enabled || l.rdb == nil {
		return RateLimitDecision{Allowed: true, Remaining: rule.Limit}, nil
	}

	key := rateLimitKey(rule.Scope, identity)
	now := l.now()
	windowStart := now.Add(-rule.Window)
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
		card = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, rule.Window)
		return nil
	})
	if err != nil {
		return RateLimitDecision{}, err
	}

	count := int(card.Val())
	if count <= rule.Limit {
		return RateLimitDecision{Allowed: true, Remaining: rule.Limit - count}, nil
	}

	if err := l.rdb.ZRem(ctx, key, member).Err(); err != nil {
		Logger.WarnContext(ctx, "rate limit: failed to drop rejected request", slog.String("key", key), slog.String("error", err.Error()))
	}

	retryAfter := rule.Window
	if zs := oldest.Val(); len(zs) > 0 {
		oldestAt := time.Unix(0, int64(zs[0].Score))
		retryAfter = oldestAt.Add(rule.Window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
	}
	return RateLimitDecision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
}

// Handler returns a Fiber middleware enforcing rule. It keys by the
// authenticated user when one is present, otherwise by client IP, and fails
// open when Redis is unavailable.
func (l *RateLimiter) Handler(rule RateLimitRule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := "ip:" + c.IP()
		if user := CurrentUser(c); user != nil {
			identity = "user:" + user.ID.String()
		}

		ctx := c.UserContext()
		decision, err := l.Allow(ctx, rule, identity)
		if err != nil {
			observability.RateLimitDecisions.WithLabelValues(rule.Scope, "failopen").Inc()
			Logger.WarnContext(ctx, "rate limit check failed, allowing request",
				slog.String("scope", rule.Scope),
				slog.String("error", err.Error()),
			)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			observability.RateLimitDecisions.WithLabelValues(rule.Scope, "limited").Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(decision.RetryAfter.Seconds())))
			return models.RespondWithError(c, models.NewRateLimitError(""))
		}

		observability.RateLimitDecisions.WithLabelValues(rule.Scope, "allowed").Inc()
		return c.Next()
	}
}
