package ifeed

import (
	"context"
	"errors"
)

var ErrSubscriptionClosed = errors.New("subscription closed")

// IFeed is a change feed keyed by topic. A notification carries no payload; subscribers
// re-read the records they watch.
type IFeed interface {
	Notify(ctx context.Context, topics ...string) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription delivers change signals until it is closed or fails.
type Subscription interface {
	// Events is closed when the subscription ends. Err then reports why.
	Events() <-chan struct{}
	Err() error
	Close() error
}
