package redis

import (
	"context"
	"testing"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFeed(t *testing.T) (*Feed, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewFeed(rdb, "appuni:"), mr
}

func TestFeed_NotifyReachesSubscriber(t *testing.T) {
	feed, _ := setupFeed(t)
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "orders.restaurant.r1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, feed.Notify(ctx, "orders.restaurant.r1"))

	select {
	case _, ok := <-sub.Events():
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestFeed_UsesPrefixedChannels(t *testing.T) {
	feed, mr := setupFeed(t)
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "orders.customer.c1")
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []string{"appuni:orders.customer.c1"}, mr.PubSubChannels(""))
}

func TestFeed_CloseEndsSubscription(t *testing.T) {
	feed, _ := setupFeed(t)

	sub, err := feed.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not closed")
	}
	assert.NoError(t, sub.Err())
}

func TestFeed_ContextCancelEndsSubscription(t *testing.T) {
	feed, _ := setupFeed(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := feed.Subscribe(ctx, "t")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not closed")
	}
	assert.ErrorIs(t, sub.Err(), context.Canceled)
}

func TestFeed_NotifyFailsWhenRedisIsDown(t *testing.T) {
	feed, mr := setupFeed(t)
	mr.Close()

	err := feed.Notify(context.Background(), "t")
	assert.Error(t, err)
}

func TestFeed_FeedCloseEndsSubscriptionsWithError(t *testing.T) {
	feed, _ := setupFeed(t)

	first, err := feed.Subscribe(context.Background(), "a")
	require.NoError(t, err)
	second, err := feed.Subscribe(context.Background(), "b")
	require.NoError(t, err)

	feed.Close()
	feed.Close()

	for _, sub := range []interface {
		Events() <-chan struct{}
		Err() error
	}{first, second} {
		select {
		case _, ok := <-sub.Events():
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("subscription was not closed")
		}
		assert.ErrorIs(t, sub.Err(), ifeed.ErrSubscriptionClosed)
	}
}
