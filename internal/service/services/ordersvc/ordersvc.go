package ordersvc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ifeed"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/iorderrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ioutboxrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/irestaurantrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/istatuslogrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/postgres"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/uow"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/cart"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/currency"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderevent"
	"github.com/shopspring/decimal"
)

var (
	ErrNotAuthenticated   = errors.New("customer is not authenticated")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingAddress     = errors.New("delivery address is required")
	ErrNotRestaurantOwner = errors.New("user does not operate this restaurant")

	ErrOrderNotFound  = iorderrepo.ErrOrderNotFound
	ErrDuplicateOrder = iorderrepo.ErrDuplicateOrder
)

// DefaultDeliveryFee is the flat fee added to every order.
var DefaultDeliveryFee = decimal.RequireFromString("30.00")

// OrderService submits orders, changes their status and reads them back.
type OrderService struct {
	newUOW      func() unitOfWork
	restaurants irestaurantrepo.IRestaurantRepository
	statusLog   istatuslogrepo.IStatusLogRepository
	carts       cartStore
	feed        ifeed.IFeed

	deliveryFee decimal.Decimal
	currency    currency.Currency
	strict      bool

	eventsTopic      string
	eventsMaxRetries int
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// cartStore runs fn on the caller's session cart while holding the session.
type cartStore interface {
	WithCart(ctx context.Context, userID string, fn func(c *cart.Cart) error) error
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		deliveryFee: DefaultDeliveryFee,
		currency:    currency.CurrencyMXN,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: a database is required")
	}
	if s.feed == nil {
		panic("ordersvc: a change feed is required")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient.DB())
		}
	}
}

func withUnitOfWork(newUOW func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = newUOW
	}
}

// WithRestaurantRepository sets the repository used to authorize restaurant operators.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRestaurantRepository(repo irestaurantrepo.IRestaurantRepository) option {
	return func(s *OrderService) {
		s.restaurants = repo
	}
}

// WithStatusLogRepository sets the repository serving order status history.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStatusLogRepository(repo istatuslogrepo.IStatusLogRepository) option {
	return func(s *OrderService) {
		s.statusLog = repo
	}
}

// WithCartStore sets the session cart store used by Checkout.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCartStore(carts cartStore) option {
	return func(s *OrderService) {
		s.carts = carts
	}
}

// WithFeed sets the change feed notified after every write.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithFeed(feed ifeed.IFeed) option {
	return func(s *OrderService) {
		s.feed = feed
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithDeliveryFee(fee decimal.Decimal) option {
	return func(s *OrderService) {
		s.deliveryFee = fee
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithCurrency(c currency.Currency) option {
	return func(s *OrderService) {
		s.currency = c
	}
}

// WithStrictTransitions rejects forward status jumps that skip a step.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStrictTransitions(strict bool) option {
	return func(s *OrderService) {
		s.strict = strict
	}
}

// WithEvents makes every order write also store an event in the outbox, addressed to topic.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEvents(topic string, maxRetries int) option {
	return func(s *OrderService) {
		s.eventsTopic = topic
		s.eventsMaxRetries = maxRetries
	}
}

// writeEvent stores an event for o in the outbox of work, when events are enabled.
func (s *OrderService) writeEvent(
	ctx context.Context,
	work unitOfWork,
	t orderevent.Type,
	o order.Order,
	actor order.Actor,
) error {
	if s.eventsTopic == "" {
		return nil
	}

	msg, err := orderevent.New(t, o, actor).ToOutbox(s.eventsTopic, s.eventsMaxRetries)
	if err != nil {
		return err
	}

	return work.OutboxRepository().Insert(ctx, msg)
}

// notify tells watchers of o's customer and restaurant that something changed. The write has
// already succeeded, so a failure is only logged.
func (s *OrderService) notify(ctx context.Context, o order.Order) {
	topics := []string{orderevent.CustomerTopic(o.CustomerID), orderevent.RestaurantTopic(o.RestaurantID)}
	if err := s.feed.Notify(ctx, topics...); err != nil {
		slog.Warn("Failed to notify change feed", "order_id", o.ID, "error", err)
	}
}

func rollback(work unitOfWork) {
	if err := work.Rollback(); err != nil {
		slog.Error("Failed to rollback transaction", "error", err)
	}
}
