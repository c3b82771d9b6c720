package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/cart"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderevent"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderitem"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DeliveryDetails is what the customer enters at checkout.
type DeliveryDetails struct {
	Address       string
	Instructions  string
	PaymentMethod string
}

// Checkout submits the caller's session cart.
func (s *OrderService) Checkout(
	ctx context.Context,
	customer identity.Identity,
	details DeliveryDetails,
) (string, error) {
	if !customer.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}

	var id string
	err := s.carts.WithCart(ctx, customer.UserID, func(c *cart.Cart) error {
		var err error
		id, err = s.Submit(ctx, customer, c, details)

		return err
	})

	return id, err
}

// Submit turns c into a pending order. Validation failures return before any write. On success
// the cart is cleared and the new order id returned; on failure the cart is left as it was.
// The write is not aborted when ctx is cancelled.
func (s *OrderService) Submit(
	ctx context.Context,
	customer identity.Identity,
	c *cart.Cart,
	details DeliveryDetails,
) (string, error) {
	ctx, span := otel.Tracer("ordersvc").Start(context.WithoutCancel(ctx), "OrderService.Submit")
	defer span.End()

	o, err := s.buildOrder(customer, c, details)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("order.id", o.ID))

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(work)

	created, err := work.OrderRepository().Create(ctx, o)
	if err != nil {
		span.RecordError(err)

		return "", fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.writeEvent(ctx, work, orderevent.TypeCreated, created, order.ActorCustomer); err != nil {
		return "", fmt.Errorf("failed to write order event: %w", err)
	}

	if err := work.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit order: %w", err)
	}

	c.Clear()
	s.notify(ctx, created)

	slog.Info("Order submitted",
		"order_id", created.ID,
		"customer_id", created.CustomerID,
		"restaurant_id", created.RestaurantID,
		"total", created.Currency.Format(created.Total),
	)

	return created.ID, nil
}

// buildOrder validates the submission and snapshots the cart into a new order.
func (s *OrderService) buildOrder(
	customer identity.Identity,
	c *cart.Cart,
	details DeliveryDetails,
) (order.Order, error) {
	if !customer.IsAuthenticated() {
		return order.Order{}, ErrNotAuthenticated
	}
	if c == nil || c.IsEmpty() {
		return order.Order{}, ErrEmptyCart
	}
	address := strings.TrimSpace(details.Address)
	if address == "" {
		return order.Order{}, ErrMissingAddress
	}

	lines := c.Lines()
	items := make([]orderitem.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		lineTotal := l.Total()
		items = append(items, orderitem.OrderItem{
			DishID:       l.Item.ID,
			DishName:     l.Item.Name,
			DishImageURL: l.Item.ImageURL,
			Quantity:     l.Quantity,
			Price:        l.Item.Price,
			Subtotal:     lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	subtotal = s.currency.Round(subtotal)
	fee := s.currency.Round(s.deliveryFee)

	restaurantID, _ := c.RestaurantID()

	return order.Order{
		ID:                   uuid.NewString(),
		CustomerID:           customer.UserID,
		CustomerName:         customer.Name,
		CustomerEmail:        customer.Email,
		RestaurantID:         restaurantID,
		RestaurantName:       c.RestaurantName(),
		Items:                items,
		Subtotal:             subtotal,
		DeliveryFee:          fee,
		Total:                subtotal.Add(fee),
		Currency:             s.currency,
		DeliveryAddress:      address,
		DeliveryInstructions: strings.TrimSpace(details.Instructions),
		PaymentMethod:        details.PaymentMethod,
		Status:               order.StatusPending,
	}, nil
}
