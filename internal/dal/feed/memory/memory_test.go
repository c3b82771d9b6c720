package memory

import (
	"context"
	"testing"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub ifeed.Subscription) bool {
	t.Helper()

	select {
	case _, ok := <-sub.Events():
		return ok
	case <-time.After(time.Second):
		t.Fatal("no event received")

		return false
	}
}

func TestFeed_NotifyReachesTopicSubscribers(t *testing.T) {
	feed := NewFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "orders.customer.c1")
	require.NoError(t, err)
	other, err := feed.Subscribe(ctx, "orders.customer.c2")
	require.NoError(t, err)

	require.NoError(t, feed.Notify(ctx, "orders.customer.c1", "orders.restaurant.r1"))

	assert.True(t, receive(t, sub))
	select {
	case <-other.Events():
		t.Fatal("unexpected event on another topic")
	default:
	}
}

func TestFeed_NotificationsCoalesce(t *testing.T) {
	feed := NewFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "t")
	require.NoError(t, err)

	for range 5 {
		require.NoError(t, feed.Notify(ctx, "t"))
	}

	assert.True(t, receive(t, sub))
	select {
	case <-sub.Events():
		t.Fatal("signals were not coalesced")
	default:
	}
}

func TestFeed_CloseDetaches(t *testing.T) {
	feed := NewFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, 1, feed.subscriberCount("t"))

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	assert.False(t, receive(t, sub))
	assert.NoError(t, sub.Err())
	assert.Equal(t, 0, feed.subscriberCount("t"))
	assert.NoError(t, feed.Notify(ctx, "t"))
}

func TestFeed_ContextCancelDetaches(t *testing.T) {
	feed := NewFeed()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := feed.Subscribe(ctx, "t")
	require.NoError(t, err)

	cancel()

	assert.False(t, receive(t, sub))
	assert.ErrorIs(t, sub.Err(), context.Canceled)
	assert.Equal(t, 0, feed.subscriberCount("t"))
}

func TestFeed_CloseEndsSubscriptionsWithError(t *testing.T) {
	feed := NewFeed()

	sub, err := feed.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	feed.Close()

	assert.False(t, receive(t, sub))
	assert.ErrorIs(t, sub.Err(), ifeed.ErrSubscriptionClosed)
}

func TestFeed_SubscribeWithDoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFeed().Subscribe(ctx, "t")
	assert.ErrorIs(t, err, context.Canceled)
}
