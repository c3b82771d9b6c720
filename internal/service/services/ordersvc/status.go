package ordersvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderevent"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Requester is the caller of a status change: a customer acting on their own order or an
// operator acting on behalf of RestaurantID.
type Requester struct {
	Identity     identity.Identity
	Role         order.Actor
	RestaurantID string
}

// Customer returns a customer requester.
func Customer(id identity.Identity) Requester {
	return Requester{Identity: id, Role: order.ActorCustomer}
}

// Restaurant returns a restaurant operator requester.
func Restaurant(id identity.Identity, restaurantID string) Requester {
	return Requester{Identity: id, Role: order.ActorRestaurant, RestaurantID: restaurantID}
}

// UpdateStatus writes a new status and update time, and nothing else. Writing the current
// status again succeeds and refreshes the update time.
func (s *OrderService) UpdateStatus(
	ctx context.Context,
	by Requester,
	id string,
	status order.Status,
) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id), attribute.String("order.status", status.String()))

	if !by.Identity.IsAuthenticated() {
		return order.Order{}, ErrNotAuthenticated
	}
	if by.Role == order.ActorRestaurant {
		if err := s.AuthorizeRestaurant(ctx, by.Identity, by.RestaurantID); err != nil {
			return order.Order{}, err
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		return order.Order{}, ErrOrderNotFound
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(work)

	current, err := work.OrderRepository().GetForUpdate(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if !by.owns(current) {
		return order.Order{}, ErrOrderNotFound
	}
	if err := order.ValidateTransition(current.Status, status, by.Role, s.strict); err != nil {
		return order.Order{}, err
	}

	updated, err := work.OrderRepository().UpdateStatus(ctx, id, status)
	if err != nil {
		span.RecordError(err)

		return order.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := s.writeEvent(ctx, work, orderevent.TypeStatusChanged, updated, by.Role); err != nil {
		return order.Order{}, fmt.Errorf("failed to write order event: %w", err)
	}

	if err := work.Commit(); err != nil {
		return order.Order{}, fmt.Errorf("failed to commit status change: %w", err)
	}

	s.notify(ctx, updated)

	slog.Info("Order status changed",
		"order_id", id,
		"from", current.Status,
		"to", updated.Status,
		"actor", by.Role,
	)

	return updated, nil
}

// Cancel sets the order to cancelled.
func (s *OrderService) Cancel(ctx context.Context, by Requester, id string) (order.Order, error) {
	return s.UpdateStatus(ctx, by, id, order.StatusCancelled)
}

// AuthorizeRestaurant checks that the user operates the restaurant.
func (s *OrderService) AuthorizeRestaurant(ctx context.Context, user identity.Identity, restaurantID string) error {
	if !user.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	ok, err := s.restaurants.IsOwner(ctx, restaurantID, user.UserID)
	if err != nil {
		return fmt.Errorf("failed to check restaurant operator: %w", err)
	}
	if !ok {
		return ErrNotRestaurantOwner
	}

	return nil
}

func (r Requester) owns(o order.Order) bool {
	if r.Role == order.ActorRestaurant {
		return o.RestaurantID == r.RestaurantID
	}

	return o.CustomerID == r.Identity.UserID
}
