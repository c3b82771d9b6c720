package eventsvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/istatuslogrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderevent"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// EventService applies order events received from the broker.
type EventService struct {
	statusLog istatuslogrepo.IStatusLogRepository
	feed      ifeed.IFeed
}

// option is a function that configures the EventService.
type option func(*EventService)

// MustNewEventService creates a new EventService.
func MustNewEventService(opts ...option) *EventService {
	s := &EventService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.feed == nil {
		panic("eventsvc: a change feed is required")
	}

	return s
}

// WithStatusLogRepository sets the repository the status history is written to.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStatusLogRepository(repo istatuslogrepo.IStatusLogRepository) option {
	return func(s *EventService) {
		s.statusLog = repo
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithFeed(feed ifeed.IFeed) option {
	return func(s *EventService) {
		s.feed = feed
	}
}

// HandleOrderEvent records the status carried by e and notifies the watchers of its order.
// Handling the same event twice records it once.
func (s *EventService) HandleOrderEvent(ctx context.Context, e orderevent.Event) error {
	ctx, span := otel.Tracer("eventsvc").Start(ctx, "EventService.HandleOrderEvent")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.id", e.ID),
		attribute.String("event.type", string(e.Type)),
		attribute.String("order.id", e.OrderID),
	)

	if s.statusLog != nil {
		err := s.statusLog.Insert(ctx, statuslog.Entry{
			EventID:   e.ID,
			OrderID:   e.OrderID,
			Status:    e.Status,
			Actor:     e.Actor,
			ChangedAt: e.OccurredAt,
		})
		if err != nil {
			span.RecordError(err)

			return fmt.Errorf("failed to record status change: %w", err)
		}
	}

	if err := s.feed.Notify(ctx, e.Topics()...); err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to notify change feed: %w", err)
	}

	slog.Debug("Order event handled", "event_id", e.ID, "type", e.Type, "order_id", e.OrderID, "status", e.Status)

	return nil
}
