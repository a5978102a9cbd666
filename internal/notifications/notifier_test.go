package notifications

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	t.Parallel()
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), uuid.New(), map[string]string{"a": "b"}))
	assert.NoError(t, n.StartUserSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	id := uuid.MustParse("4b8f1c1e-6f41-4c39-9c55-0a6f0f6b2d10")
	assert.Equal(t, "notifications:user:4b8f1c1e-6f41-4c39-9c55-0a6f0f6b2d10", UserChannel(id))
}

func TestNotifier_PublishReachesSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	require.NoError(t, n.StartUserSubscriber(ctx, func(channel, payload string) {
		if payload == `"boom"` {
			panic("handler failure")
		}
		got <- channel + " " + payload
	}))

	userID := uuid.New()
	require.NoError(t, n.PublishUser(context.Background(), userID, "boom"))
	require.NoError(t, n.PublishUser(context.Background(), userID, map[string]string{"type": "NEW_COMMENT"}))

	select {
	case msg := <-got:
		assert.Equal(t, UserChannel(userID)+` {"type":"NEW_COMMENT"}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not receive the message")
	}
}

func TestDispatcher_RunsJobs(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(2, 8)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.True(t, d.Enqueue(context.Background(), Job{Name: "count", Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, int32(5), ran.Load())
}

func TestDispatcher_SurvivesFailuresAndPanics(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(1, 8)

	var ran atomic.Int32
	d.Enqueue(context.Background(), Job{Name: "fails", Run: func(context.Context) error { return errors.New("smtp down") }})
	d.Enqueue(context.Background(), Job{Name: "panics", Run: func(context.Context) error { panic("nil map") }})
	d.Enqueue(context.Background(), Job{Name: "ok", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, int32(1), ran.Load())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(1, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	block := Job{Name: "block", Run: func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}

	require.True(t, d.Enqueue(context.Background(), block))
	<-started
	require.True(t, d.Enqueue(context.Background(), block))
	assert.False(t, d.Enqueue(context.Background(), block))

	close(release)
	require.NoError(t, d.Close(context.Background()))
	assert.False(t, d.Enqueue(context.Background(), block))
	assert.ErrorIs(t, d.Close(context.Background()), ErrClosed)
}

func TestDispatcher_JobOutlivesRequestContext(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(1, 4)

	reqCtx, cancel := context.WithCancel(context.Background())
	var jobErr atomic.Value
	d.Enqueue(reqCtx, Job{Name: "late", Run: func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		jobErr.Store(ctx.Err() == nil)
		return nil
	}})
	cancel()

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, true, jobErr.Load())
}
