package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"vecinu/internal/middleware"
	"vecinu/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store is a best-effort JSON cache. Every method is safe on a Store without
// a client or with caching disabled; reads then always miss and writes are no-ops.
type Store struct {
	rdb     *redis.Client
	enabled bool
}

// NewStore wraps rdb. A nil client disables caching.
func NewStore(rdb *redis.Client, enabled bool) *Store {
	return &Store{rdb: rdb, enabled: enabled && rdb != nil}
}

// Enabled reports whether reads and writes reach Redis.
func (s *Store) Enabled() bool {
	return s != nil && s.enabled
}

// GetJSON loads key into dest. It returns (false, nil) on a miss.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key with ttl.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// Aside serves dest from the cache when possible. On a miss, or when the
// cache fails, fetch populates dest and the result is written back. Cache
// failures are logged and never returned; fetch errors are.
func (s *Store) Aside(ctx context.Context, namespace, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := s.GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheRequests.WithLabelValues(namespace, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed, falling back to database",
			slog.String("key", key), slog.String("error", err.Error()))
	case found:
		observability.CacheRequests.WithLabelValues(namespace, "hit").Inc()
		return nil
	case s.Enabled():
		observability.CacheRequests.WithLabelValues(namespace, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := s.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Delete removes keys, logging failures.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache delete failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// DeletePattern removes every key matching pattern using SCAN so large
// keyspaces do not block Redis. It returns the number of keys removed.
func (s *Store) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}

	removed := 0
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := s.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Ping checks Redis reachability. A disabled store reports no error.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}
