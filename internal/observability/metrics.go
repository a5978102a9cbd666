// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheRequests counts cache lookups by namespace and result (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_cache_requests_total",
		Help: "Cache lookups by namespace and result",
	}, []string{"namespace", "result"})

	// CacheInvalidations counts invalidated keys by namespace.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_cache_invalidated_keys_total",
		Help: "Number of cache keys removed by invalidation",
	}, []string{"namespace"})

	// RateLimitDecisions counts rate limit checks by scope and outcome.
	RateLimitDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_rate_limit_decisions_total",
		Help: "Rate limit checks by scope and outcome (allowed, limited, failopen)",
	}, []string{"scope", "outcome"})

	// PostsCreated counts new posts by category.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_posts_created_total",
		Help: "Posts created by category",
	}, []string{"category"})

	// CommentsCreated counts new comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vecinu_comments_created_total",
		Help: "Comments created",
	})

	// ReportsSubmitted counts report submissions by target type and outcome (created, duplicate).
	ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_reports_submitted_total",
		Help: "Report submissions by target type and outcome",
	}, []string{"target_type", "outcome"})

	// ModerationActions counts audited moderation actions.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_moderation_actions_total",
		Help: "Moderation actions by audit action tag",
	}, []string{"action"})

	// NotificationJobs counts notification jobs by outcome (enqueued, dropped, delivered, failed, panic).
	NotificationJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_notification_jobs_total",
		Help: "Notification dispatch jobs by outcome",
	}, []string{"outcome"})

	// NotificationQueueDepth is the number of queued notification jobs.
	NotificationQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vecinu_notification_queue_depth",
		Help: "Notification jobs waiting for a worker",
	})

	// ImageUploads counts post image uploads by outcome.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vecinu_image_uploads_total",
		Help: "Post image uploads by outcome",
	}, []string{"outcome"})
)
