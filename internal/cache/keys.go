package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vecinu/internal/middleware"
	"vecinu/internal/observability"

	"github.com/google/uuid"
)

const (
	FeedNamespace = "feed"
	PostNamespace = "post"

	feedPattern = "feed:*"
)

const (
	DefaultFeedTTL = 5 * time.Minute
	DefaultPostTTL = 10 * time.Minute
)

// FeedKey addresses the first feed page for a neighborhood and optional category.
func FeedKey(neighborhoodSlug, category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("feed:nbh:%s:cat:%s", neighborhoodSlug, category)
}

// PostKey addresses a single post detail.
func PostKey(id uuid.UUID) string {
	return "post:" + id.String()
}

// InvalidateFeed drops every cached feed page. Failures are logged; TTL expiry
// bounds staleness when Redis is unavailable.
func (s *Store) InvalidateFeed(ctx context.Context) {
	n, err := s.DeletePattern(ctx, feedPattern)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "feed cache invalidation failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		observability.CacheInvalidations.WithLabelValues(FeedNamespace).Add(float64(n))
	}
}

// InvalidatePost drops a cached post detail.
func (s *Store) InvalidatePost(ctx context.Context, id uuid.UUID) {
	s.Delete(ctx, PostKey(id))
	observability.CacheInvalidations.WithLabelValues(PostNamespace).Inc()
}
