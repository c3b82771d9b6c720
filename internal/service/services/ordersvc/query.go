package ordersvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

// GetOrder fetches one order for its customer or for an operator of its restaurant. Orders
// the viewer may not see are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, viewer identity.Identity, id string) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.GetOrder")
	defer span.End()

	if !viewer.IsAuthenticated() {
		return order.Order{}, ErrNotAuthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return order.Order{}, ErrOrderNotFound
	}

	o, err := s.newUOW().OrderRepository().Get(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if o.CustomerID == viewer.UserID {
		return o, nil
	}

	err = s.AuthorizeRestaurant(ctx, viewer, o.RestaurantID)
	if errors.Is(err, ErrNotRestaurantOwner) {
		return order.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// CustomerOrders lists a customer's orders, newest first.
func (s *OrderService) CustomerOrders(
	ctx context.Context,
	customerID string,
	filter order.ListFilter,
) ([]order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.CustomerOrders")
	defer span.End()

	orders, err := s.newUOW().OrderRepository().Query(ctx, &order.QueryOrdersModel{
		CustomerIds: []string{customerID},
		Statuses:    filter.Statuses,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query customer orders: %w", err)
	}

	order.SortForCustomer(orders)

	return orders, nil
}

// RestaurantOrders lists a restaurant queue by status priority, newest first within a status.
func (s *OrderService) RestaurantOrders(
	ctx context.Context,
	restaurantID string,
	filter order.ListFilter,
) ([]order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.RestaurantOrders")
	defer span.End()

	orders, err := s.newUOW().OrderRepository().Query(ctx, &order.QueryOrdersModel{
		RestaurantIds: []string{restaurantID},
		Statuses:      filter.Statuses,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
		ByPriority:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurant orders: %w", err)
	}

	order.SortForRestaurant(orders)

	return orders, nil
}

// History returns the recorded status changes of an order the viewer may see.
func (s *OrderService) History(ctx context.Context, viewer identity.Identity, id string) ([]statuslog.Entry, error) {
	if _, err := s.GetOrder(ctx, viewer, id); err != nil {
		return nil, err
	}

	entries, err := s.statusLog.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}

	return entries, nil
}
