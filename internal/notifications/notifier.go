// Package notifications delivers in-app notifications: an asynchronous
// dispatcher that runs notification work off the request path and a Redis
// publisher that fans persisted notifications out to realtime consumers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"vecinu/internal/middleware"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc/panics"
)

const userChannelPattern = "notifications:user:*"

// Notifier publishes notification payloads into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uuid.UUID) string {
	return "notifications:user:" + userID.String()
}

// PublishUser sends payload, JSON encoded, to the user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uuid.UUID, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), b).Err()
}

// StartUserSubscriber subscribes to every user channel and calls onMessage for
// each message until ctx is cancelled. A panicking handler is logged and the
// subscription keeps running.
func (n *Notifier) StartUserSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if r := panics.Try(func() { onMessage(msg.Channel, msg.Payload) }); r != nil {
					middleware.Logger.ErrorContext(ctx, "notification subscriber panic",
						slog.String("channel", msg.Channel), slog.String("panic", r.String()))
				}
			}
		}
	}()
	return nil
}
