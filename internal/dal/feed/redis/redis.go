package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
	goredis "github.com/redis/go-redis/v9"
)

const payload = "changed"

// Feed is a change feed over Redis pub/sub. Every API instance subscribed to Redis sees every
// notification.
type Feed struct {
	rdb       *goredis.Client
	prefix    string
	done      chan struct{}
	closeOnce sync.Once
}

var _ ifeed.IFeed = (*Feed)(nil)

func NewFeed(rdb *goredis.Client, prefix string) *Feed {
	return &Feed{
		rdb:    rdb,
		prefix: prefix,
		done:   make(chan struct{}),
	}
}

// Close ends all subscriptions with ErrSubscriptionClosed. The Redis client stays open.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		close(f.done)
	})
}

func (f *Feed) Notify(ctx context.Context, topics ...string) error {
	for _, topic := range topics {
		if err := f.rdb.Publish(ctx, f.prefix+topic, payload).Err(); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", topic, err)
		}
	}

	return nil
}

// Subscribe returns once Redis has confirmed the subscription.
func (f *Feed) Subscribe(ctx context.Context, topic string) (ifeed.Subscription, error) {
	ps := f.rdb.Subscribe(ctx, f.prefix+topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()

		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	s := &subscription{
		ps:     ps,
		events: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	go s.run(ctx, f.done)

	return s, nil
}

type subscription struct {
	ps     *goredis.PubSub
	events chan struct{}
	stop   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

func (s *subscription) run(ctx context.Context, feedDone <-chan struct{}) {
	var err error
	defer func() {
		_ = s.ps.Close()

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		close(s.events)
	}()

	msgs := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()

			return
		case <-s.stop:
			return
		case <-feedDone:
			err = ifeed.ErrSubscriptionClosed

			return
		case _, ok := <-msgs:
			if !ok {
				err = ifeed.ErrSubscriptionClosed

				return
			}
			select {
			case s.events <- struct{}{}:
			default:
			}
		}
	}
}

func (s *subscription) Events() <-chan struct{} {
	return s.events
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.stop)
	})

	return nil
}
