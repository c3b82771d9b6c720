package iorderrepo

import (
	"context"
	"errors"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

// IOrderRepository is an interface for the order record store.
type IOrderRepository interface {
	// Create stores a new order and returns it with store-assigned timestamps.
	// A second order with the same id is rejected with ErrDuplicateOrder.
	Create(ctx context.Context, o order.Order) (order.Order, error)
	Get(ctx context.Context, id string) (order.Order, error)
	// GetForUpdate is Get that locks the record until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (order.Order, error)
	// UpdateStatus writes status and a fresh updated_at, nothing else.
	UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
