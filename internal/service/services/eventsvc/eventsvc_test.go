package eventsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/mocks"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderevent"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestEventService_HandleOrderEvent(t *testing.T) {
	occurred := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := orderevent.Event{
		ID:           "e1",
		Type:         orderevent.TypeStatusChanged,
		OrderID:      "o1",
		CustomerID:   "u1",
		RestaurantID: "r1",
		Status:       order.StatusConfirmed,
		Actor:        order.ActorRestaurant,
		OccurredAt:   occurred,
	}
	entry := statuslog.Entry{
		EventID:   "e1",
		OrderID:   "o1",
		Status:    order.StatusConfirmed,
		Actor:     order.ActorRestaurant,
		ChangedAt: occurred,
	}
	topics := []string{"orders.customer.u1", "orders.restaurant.r1"}

	tests := []struct {
		name        string
		insertErr   error
		notifyErr   error
		expectedErr string
		notified    bool
	}{
		{name: "recorded and notified", notified: true},
		{name: "store failure", insertErr: errors.New("deadlock"), expectedErr: "failed to record status change"},
		{name: "feed failure", notifyErr: errors.New("redis down"), expectedErr: "failed to notify change feed", notified: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			statusLog := &mocks.StatusLogRepository{}
			statusLog.On("Insert", mock.Anything, entry).Return(testCase.insertErr)
			feed := &mocks.Feed{}
			feed.On("Notify", mock.Anything, topics).Return(testCase.notifyErr)
			svc := MustNewEventService(WithStatusLogRepository(statusLog), WithFeed(feed))

			err := svc.HandleOrderEvent(context.Background(), event)

			if testCase.expectedErr != "" {
				assert.ErrorContains(t, err, testCase.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			statusLog.AssertExpectations(t)
			if testCase.notified {
				feed.AssertCalled(t, "Notify", mock.Anything, topics)
			} else {
				feed.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestEventService_WithoutStatusLog(t *testing.T) {
	feed := &mocks.Feed{}
	feed.On("Notify", mock.Anything, mock.Anything).Return(nil)
	svc := MustNewEventService(WithFeed(feed))

	err := svc.HandleOrderEvent(context.Background(), orderevent.Event{ID: "e1", OrderID: "o1", CustomerID: "u1", RestaurantID: "r1"})

	assert.NoError(t, err)
	feed.AssertNumberOfCalls(t, "Notify", 1)
}

func TestMustNewEventService_RequiresFeed(t *testing.T) {
	assert.Panics(t, func() { MustNewEventService() })
}
