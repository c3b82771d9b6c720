package mocks

import (
	"context"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/imenurepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/iorderrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ioutboxrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/irestaurantrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/istatuslogrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/menuitem"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"github.com/stretchr/testify/mock"
)

type OrderRepository struct {
	mock.Mock
}

var _ iorderrepo.IOrderRepository = (*OrderRepository)(nil)

func (m *OrderRepository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	args := m.Called(ctx, o)

	return args.Get(0).(order.Order), args.Error(1)
}

func (m *OrderRepository) Get(ctx context.Context, id string) (order.Order, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(order.Order), args.Error(1)
}

func (m *OrderRepository) GetForUpdate(ctx context.Context, id string) (order.Order, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(order.Order), args.Error(1)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	args := m.Called(ctx, id, status)

	return args.Get(0).(order.Order), args.Error(1)
}

func (m *OrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if orders := args.Get(0); orders != nil {
		return orders.([]order.Order), args.Error(1)
	}

	return nil, args.Error(1)
}

type OutboxRepository struct {
	mock.Mock
}

var _ ioutboxrepo.IOutboxRepository = (*OutboxRepository)(nil)

func (m *OutboxRepository) Insert(ctx context.Context, msg outbox.OutboxMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *OutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]outbox.OutboxMessage), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *OutboxRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	return m.Called(ctx, id, retryCount, lastError, nextRetryAt).Error(0)
}

type MenuRepository struct {
	mock.Mock
}

var _ imenurepo.IMenuRepository = (*MenuRepository)(nil)

func (m *MenuRepository) Get(ctx context.Context, id string) (menuitem.MenuItem, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(menuitem.MenuItem), args.Error(1)
}

type RestaurantRepository struct {
	mock.Mock
}

var _ irestaurantrepo.IRestaurantRepository = (*RestaurantRepository)(nil)

func (m *RestaurantRepository) IsOwner(ctx context.Context, restaurantID, userID string) (bool, error) {
	args := m.Called(ctx, restaurantID, userID)

	return args.Bool(0), args.Error(1)
}

type StatusLogRepository struct {
	mock.Mock
}

var _ istatuslogrepo.IStatusLogRepository = (*StatusLogRepository)(nil)

func (m *StatusLogRepository) Insert(ctx context.Context, entry statuslog.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *StatusLogRepository) ListByOrder(ctx context.Context, orderID string) ([]statuslog.Entry, error) {
	args := m.Called(ctx, orderID)
	if entries := args.Get(0); entries != nil {
		return entries.([]statuslog.Entry), args.Error(1)
	}

	return nil, args.Error(1)
}
