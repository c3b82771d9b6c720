package watchsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderevent"
	"go.opentelemetry.io/otel"
)

// orderSource re-reads the orders a view shows. Results come back already sorted.
type orderSource interface {
	CustomerOrders(ctx context.Context, customerID string, filter order.ListFilter) ([]order.Order, error)
	RestaurantOrders(ctx context.Context, restaurantID string, filter order.ListFilter) ([]order.Order, error)
}

// View is one materialization of a watched order list. A View with Err set reports a failed
// refresh; if the feed itself failed it is the last View before the channel closes.
type View struct {
	Orders []order.Order
	Err    error
}

// WatchService keeps customer and restaurant order lists live.
type WatchService struct {
	feed   ifeed.IFeed
	orders orderSource
}

// option is a function that configures the WatchService.
type option func(*WatchService)

// MustNewWatchService creates a new WatchService.
func MustNewWatchService(opts ...option) *WatchService {
	s := &WatchService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.feed == nil || s.orders == nil {
		panic("watchsvc: a change feed and an order source are required")
	}

	return s
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithFeed(feed ifeed.IFeed) option {
	return func(s *WatchService) {
		s.feed = feed
	}
}

// WithOrderSource sets the service the watched lists are read from.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderSource(orders orderSource) option {
	return func(s *WatchService) {
		s.orders = orders
	}
}

// WatchCustomer streams the customer's orders, newest first.
func (s *WatchService) WatchCustomer(ctx context.Context, customerID string, filter order.ListFilter) (*Watch, error) {
	return s.watch(ctx, orderevent.CustomerTopic(customerID), func(ctx context.Context) ([]order.Order, error) {
		return s.orders.CustomerOrders(ctx, customerID, filter)
	})
}

// WatchRestaurant streams the restaurant's queue in priority order.
func (s *WatchService) WatchRestaurant(ctx context.Context, restaurantID string, filter order.ListFilter) (*Watch, error) {
	return s.watch(ctx, orderevent.RestaurantTopic(restaurantID), func(ctx context.Context) ([]order.Order, error) {
		return s.orders.RestaurantOrders(ctx, restaurantID, filter)
	})
}

func (s *WatchService) watch(
	ctx context.Context,
	topic string,
	load func(ctx context.Context) ([]order.Order, error),
) (*Watch, error) {
	ctx, cancel := context.WithCancel(ctx)

	// Subscribe before the first read so no write between the two is missed.
	sub, err := s.feed.Subscribe(ctx, topic)
	if err != nil {
		cancel()

		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	w := &Watch{
		views:  make(chan View, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go w.run(ctx, topic, sub, load)

	return w, nil
}

// Watch is a live order list. Views is closed when the watch ends.
type Watch struct {
	views  chan View
	cancel context.CancelFunc
	done   chan struct{}
}

func (w *Watch) Views() <-chan View {
	return w.views
}

// Close detaches from the feed and waits for the watch to end.
func (w *Watch) Close() {
	w.cancel()
	<-w.done
}

func (w *Watch) run(
	ctx context.Context,
	topic string,
	sub ifeed.Subscription,
	load func(ctx context.Context) ([]order.Order, error),
) {
	defer close(w.done)
	defer close(w.views)
	defer func() {
		if err := sub.Close(); err != nil {
			slog.Warn("Failed to close feed subscription", "topic", topic, "error", err)
		}
	}()

	if !w.refresh(ctx, load) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok {
				err := sub.Err()
				if err == nil || ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				slog.Warn("Order watch ended by feed failure", "topic", topic, "error", err)
				w.emit(ctx, View{Err: err})

				return
			}
			if !w.refresh(ctx, load) {
				return
			}
		}
	}
}

func (w *Watch) refresh(ctx context.Context, load func(ctx context.Context) ([]order.Order, error)) bool {
	ctx, span := otel.Tracer("watchsvc").Start(ctx, "Watch.refresh")
	defer span.End()

	orders, err := load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		span.RecordError(err)

		return w.emit(ctx, View{Err: fmt.Errorf("failed to load orders: %w", err)})
	}

	return w.emit(ctx, View{Orders: orders})
}

// emit delivers v, replacing a view the reader has not taken yet.
func (w *Watch) emit(ctx context.Context, v View) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case w.views <- v:
			return true
		default:
		}

		select {
		case <-w.views:
		default:
		}
	}
}
