package mocks

import (
	"context"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ipublisher"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
	"github.com/stretchr/testify/mock"
)

type Feed struct {
	mock.Mock
}

var _ ifeed.IFeed = (*Feed)(nil)

func (m *Feed) Notify(ctx context.Context, topics ...string) error {
	return m.Called(ctx, topics).Error(0)
}

func (m *Feed) Subscribe(ctx context.Context, topic string) (ifeed.Subscription, error) {
	args := m.Called(ctx, topic)
	if sub := args.Get(0); sub != nil {
		return sub.(ifeed.Subscription), args.Error(1)
	}

	return nil, args.Error(1)
}

type EventPublisher struct {
	mock.Mock
}

var _ ipublisher.IEventPublisher = (*EventPublisher)(nil)

func (m *EventPublisher) Publish(ctx context.Context, msg outbox.OutboxMessage) error {
	return m.Called(ctx, msg).Error(0)
}
