package ordersvc

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/iorderrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ioutboxrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
)

// memStore is a transactional in-memory order store with a monotonic clock.
type memStore struct {
	mu         sync.Mutex
	orders     map[string]order.Order
	outbox     []outbox.OutboxMessage
	clock      time.Time
	failCreate error
	failCommit error
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[string]order.Order),
		clock:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) newUOW() unitOfWork {
	return &memUOW{store: m, pending: make(map[string]order.Order)}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)

	return m.clock
}

func (m *memStore) get(id string) (order.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]

	return o, ok
}

func (m *memStore) put(o order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders[o.ID] = o
}

func (m *memStore) outboxLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.outbox)
}

type memUOW struct {
	store         *memStore
	began         bool
	pending       map[string]order.Order
	pendingOutbox []outbox.OutboxMessage
}

func (u *memUOW) Begin(context.Context) error {
	u.began = true

	return nil
}

func (u *memUOW) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	if u.store.failCommit != nil {
		return u.store.failCommit
	}
	for id, o := range u.pending {
		u.store.orders[id] = o
	}
	u.store.outbox = append(u.store.outbox, u.pendingOutbox...)
	u.pending = make(map[string]order.Order)
	u.pendingOutbox = nil

	return nil
}

func (u *memUOW) Rollback() error {
	u.pending = make(map[string]order.Order)
	u.pendingOutbox = nil

	return nil
}

func (u *memUOW) OrderRepository() iorderrepo.IOrderRepository {
	return memOrderRepo{u}
}

func (u *memUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return memOutboxRepo{u}
}

type memOrderRepo struct {
	u *memUOW
}

func (r memOrderRepo) Create(_ context.Context, o order.Order) (order.Order, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCreate != nil {
		return order.Order{}, s.failCreate
	}
	if _, ok := s.orders[o.ID]; ok {
		return order.Order{}, iorderrepo.ErrDuplicateOrder
	}
	if _, ok := r.u.pending[o.ID]; ok {
		return order.Order{}, iorderrepo.ErrDuplicateOrder
	}

	now := s.tick()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.u.pending[o.ID] = o

	return o, nil
}

func (r memOrderRepo) Get(_ context.Context, id string) (order.Order, error) {
	if o, ok := r.u.pending[id]; ok {
		return o, nil
	}
	if o, ok := r.u.store.get(id); ok {
		return o, nil
	}

	return order.Order{}, iorderrepo.ErrOrderNotFound
}

func (r memOrderRepo) GetForUpdate(ctx context.Context, id string) (order.Order, error) {
	return r.Get(ctx, id)
}

func (r memOrderRepo) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	o, err := r.Get(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	r.u.store.mu.Lock()
	o.Status = status
	o.UpdatedAt = r.u.store.tick()
	r.u.store.mu.Unlock()

	r.u.pending[id] = o

	return o, nil
}

func (r memOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]order.Order, 0)
	for _, o := range s.orders {
		if len(filter.CustomerIds) > 0 && !slices.Contains(filter.CustomerIds, o.CustomerID) {
			continue
		}
		if len(filter.RestaurantIds) > 0 && !slices.Contains(filter.RestaurantIds, o.RestaurantID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
			continue
		}
		result = append(result, o)
	}
	if filter.ByPriority {
		order.SortForRestaurant(result)
	} else {
		order.SortForCustomer(result)
	}
	result = result[min(filter.Offset, len(result)):]
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

type memOutboxRepo struct {
	u *memUOW
}

func (r memOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.u.pendingOutbox = append(r.u.pendingOutbox, msg)

	return nil
}

func (r memOutboxRepo) GetPendingMessages(context.Context, int) ([]outbox.OutboxMessage, error) {
	panic("not used by the order service")
}

func (r memOutboxRepo) Delete(context.Context, int64) error {
	panic("not used by the order service")
}

func (r memOutboxRepo) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	panic("not used by the order service")
}
