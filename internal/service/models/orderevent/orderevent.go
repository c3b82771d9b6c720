package orderevent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
	"github.com/google/uuid"
)

// Type names an order event.
type Type string

const (
	TypeCreated       Type = "order.created"
	TypeStatusChanged Type = "order.status_changed"
)

const contentType = "application/json"

// Event is published whenever an order is written.
type Event struct {
	ID           string       `json:"id"`
	Type         Type         `json:"type"`
	OrderID      string       `json:"orderId"`
	CustomerID   string       `json:"customerId"`
	RestaurantID string       `json:"restaurantId"`
	Status       order.Status `json:"status"`
	Actor        order.Actor  `json:"actor,omitempty"`
	OccurredAt   time.Time    `json:"occurredAt"`
}

// New builds an event describing the current state of o.
func New(t Type, o order.Order, actor order.Actor) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         t,
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		Status:       o.Status,
		Actor:        actor,
		OccurredAt:   o.UpdatedAt,
	}
}

// CustomerTopic is the change-feed topic of a customer's orders.
func CustomerTopic(customerID string) string {
	return "orders.customer." + customerID
}

// RestaurantTopic is the change-feed topic of a restaurant's queue.
func RestaurantTopic(restaurantID string) string {
	return "orders.restaurant." + restaurantID
}

// Topics returns every change-feed topic affected by the event.
func (e Event) Topics() []string {
	return []string{CustomerTopic(e.CustomerID), RestaurantTopic(e.RestaurantID)}
}

// ToOutbox wraps the event into an outbox message for the given broker topic.
func (e Event) ToOutbox(topic string, maxRetries int) (outbox.OutboxMessage, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return outbox.OutboxMessage{}, fmt.Errorf("failed to marshal order event: %w", err)
	}

	return outbox.OutboxMessage{
		Topic:       topic,
		Key:         e.OrderID,
		Payload:     payload,
		ContentType: contentType,
		MaxRetries:  maxRetries,
	}, nil
}

// Parse decodes an event from a broker payload.
func Parse(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal order event: %w", err)
	}
	if e.OrderID == "" {
		return Event{}, fmt.Errorf("order event %q has no order id", e.ID)
	}

	return e, nil
}
