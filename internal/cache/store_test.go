package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedPage struct {
	IDs []string `json:"ids"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, true), mr
}

func TestAside_MissThenHit(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()
	key := FeedKey("centru", "SELL")

	calls := 0
	fetch := func(dest *feedPage) func() error {
		return func() error {
			calls++
			dest.IDs = []string{"a", "b"}
			return nil
		}
	}

	var first feedPage
	require.NoError(t, store.Aside(ctx, FeedNamespace, key, &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(key))

	var second feedPage
	require.NoError(t, store.Aside(ctx, FeedNamespace, key, &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls, "second read should be served from cache")
	assert.Equal(t, []string{"a", "b"}, second.IDs)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestAside_FetchErrorIsReturnedAndNotCached(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	boom := errors.New("db down")

	var page feedPage
	err := store.Aside(context.Background(), FeedNamespace, "feed:x", &page, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("feed:x"))
}

func TestAside_RedisDownFallsBackToFetch(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	mr.Close()

	var page feedPage
	err := store.Aside(context.Background(), FeedNamespace, "feed:x", &page, time.Minute, func() error {
		page.IDs = []string{"db"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"db"}, page.IDs)
}

func TestDisabledStoreIsNoop(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, false)

	require.NoError(t, store.SetJSON(context.Background(), "k", 1, time.Minute))
	assert.False(t, mr.Exists("k"))

	var nilStore *Store
	found, err := nilStore.GetJSON(context.Background(), "k", new(int))
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidateFeed_RemovesOnlyFeedNamespace(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	postID := uuid.New()
	for _, k := range []string{FeedKey("centru", ""), FeedKey("centru", "ALERT"), FeedKey("manastur", "SELL")} {
		require.NoError(t, mr.Set(k, "[]"))
	}
	require.NoError(t, mr.Set(PostKey(postID), "{}"))

	store.InvalidateFeed(ctx)

	assert.False(t, mr.Exists(FeedKey("centru", "")))
	assert.False(t, mr.Exists(FeedKey("centru", "ALERT")))
	assert.False(t, mr.Exists(FeedKey("manastur", "SELL")))
	assert.True(t, mr.Exists(PostKey(postID)))

	store.InvalidatePost(ctx, postID)
	assert.False(t, mr.Exists(PostKey(postID)))
}

func TestFeedKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "feed:nbh:centru:cat:all", FeedKey("centru", ""))
	assert.Equal(t, "feed:nbh:centru:cat:SELL", FeedKey("centru", "SELL"))
}
