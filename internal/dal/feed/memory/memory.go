package memory

import (
	"context"
	"sync"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
)

// Feed is an in-process change feed. Notifications reach subscribers of this process only.
type Feed struct {
	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

var _ ifeed.IFeed = (*Feed)(nil)

func NewFeed() *Feed {
	return &Feed{
		subs: make(map[string]map[*subscription]struct{}),
	}
}

// Notify signals every subscriber of the given topics. Signals to a subscriber that has not
// consumed the previous one are coalesced.
func (f *Feed) Notify(_ context.Context, topics ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, topic := range topics {
		for s := range f.subs[topic] {
			select {
			case s.events <- struct{}{}:
			default:
			}
		}
	}

	return nil
}

// Subscribe registers a subscriber that is detached when ctx is done or Close is called.
func (f *Feed) Subscribe(ctx context.Context, topic string) (ifeed.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &subscription{
		feed:   f,
		topic:  topic,
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	f.mu.Lock()
	if f.subs[topic] == nil {
		f.subs[topic] = make(map[*subscription]struct{})
	}
	f.subs[topic][s] = struct{}{}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.closeWith(ctx.Err())
		case <-s.done:
		}
	}()

	return s, nil
}

// Close ends all subscriptions with ErrSubscriptionClosed.
func (f *Feed) Close() {
	f.mu.Lock()
	var all []*subscription
	for _, subs := range f.subs {
		for s := range subs {
			all = append(all, s)
		}
	}
	f.mu.Unlock()

	for _, s := range all {
		s.closeWith(ifeed.ErrSubscriptionClosed)
	}
}

func (f *Feed) remove(s *subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.subs[s.topic], s)
	if len(f.subs[s.topic]) == 0 {
		delete(f.subs, s.topic)
	}
}

// subscriberCount is used by tests to check that subscriptions are released.
func (f *Feed) subscriberCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.subs[topic])
}

type subscription struct {
	feed   *Feed
	topic  string
	events chan struct{}
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
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
	s.closeWith(nil)

	return nil
}

func (s *subscription) closeWith(err error) {
	s.once.Do(func() {
		// Removal happens under the feed lock, so no Notify can send after this point.
		s.feed.remove(s)

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		close(s.events)
		close(s.done)
	})
}
