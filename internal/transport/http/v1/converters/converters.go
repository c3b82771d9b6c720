package converters

import (
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderitem"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/cartsvc"
	"github.com/shopspring/decimal"
)

// OrderItem is the wire form of an order line.
type OrderItem struct {
	DishID       string `json:"dishId"`
	DishName     string `json:"dishName"`
	DishImageURL string `json:"dishImageUrl,omitempty"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
	Subtotal     string `json:"subtotal"`
}

// Order is the wire form of an order. Money has two fractional digits; times are unix
// milliseconds.
type Order struct {
	ID                   string      `json:"id"`
	CustomerID           string      `json:"customerId"`
	CustomerName         string      `json:"customerName"`
	CustomerEmail        string      `json:"customerEmail"`
	RestaurantID         string      `json:"restaurantId"`
	RestaurantName       string      `json:"restaurantName"`
	Items                []OrderItem `json:"items"`
	Subtotal             string      `json:"subtotal"`
	DeliveryFee          string      `json:"deliveryFee"`
	Total                string      `json:"total"`
	Currency             string      `json:"currency"`
	DeliveryAddress      string      `json:"deliveryAddress"`
	DeliveryInstructions string      `json:"deliveryInstructions,omitempty"`
	PaymentMethod        string      `json:"paymentMethod"`
	Status               string      `json:"status"`
	StatusPriority       int         `json:"statusPriority"`
	CreatedAt            int64       `json:"createdAt"`
	UpdatedAt            int64       `json:"updatedAt"`
}

// CartLine is the wire form of a cart line.
type CartLine struct {
	MenuItemID   string `json:"menuItemId"`
	Name         string `json:"name"`
	ImageURL     string `json:"imageUrl,omitempty"`
	RestaurantID string `json:"restaurantId"`
	Price        string `json:"price"`
	Quantity     int    `json:"quantity"`
	LineTotal    string `json:"lineTotal"`
}

// Cart is the wire form of a session cart.
type Cart struct {
	Items          []CartLine `json:"items"`
	ItemCount      int        `json:"itemCount"`
	Total          string     `json:"total"`
	RestaurantID   string     `json:"restaurantId,omitempty"`
	RestaurantName string     `json:"restaurantName,omitempty"`
}

// StatusChange is the wire form of a status history entry.
type StatusChange struct {
	EventID   string `json:"eventId"`
	Status    string `json:"status"`
	Actor     string `json:"actor,omitempty"`
	ChangedAt int64  `json:"changedAt"`
}

func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func OrderItemToResponse(item orderitem.OrderItem) OrderItem {
	return OrderItem{
		DishID:       item.DishID,
		DishName:     item.DishName,
		DishImageURL: item.DishImageURL,
		Quantity:     item.Quantity,
		Price:        Money(item.Price),
		Subtotal:     Money(item.Subtotal),
	}
}

func OrderToResponse(o order.Order) Order {
	items := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemToResponse(item)
	}

	return Order{
		ID:                   o.ID,
		CustomerID:           o.CustomerID,
		CustomerName:         o.CustomerName,
		CustomerEmail:        o.CustomerEmail,
		RestaurantID:         o.RestaurantID,
		RestaurantName:       o.RestaurantName,
		Items:                items,
		Subtotal:             o.Currency.Amount(o.Subtotal),
		DeliveryFee:          o.Currency.Amount(o.DeliveryFee),
		Total:                o.Currency.Amount(o.Total),
		Currency:             o.Currency.String(),
		DeliveryAddress:      o.DeliveryAddress,
		DeliveryInstructions: o.DeliveryInstructions,
		PaymentMethod:        o.PaymentMethod,
		Status:               o.Status.String(),
		StatusPriority:       o.Status.Priority(),
		CreatedAt:            o.CreatedAt.UnixMilli(),
		UpdatedAt:            o.UpdatedAt.UnixMilli(),
	}
}

func OrdersToResponse(orders []order.Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = OrderToResponse(o)
	}

	return out
}

func CartToResponse(s cartsvc.Summary) Cart {
	items := make([]CartLine, len(s.Lines))
	for i, l := range s.Lines {
		items[i] = CartLine{
			MenuItemID:   l.Item.ID,
			Name:         l.Item.Name,
			ImageURL:     l.Item.ImageURL,
			RestaurantID: l.Item.RestaurantID,
			Price:        Money(l.Item.Price),
			Quantity:     l.Quantity,
			LineTotal:    Money(l.Total()),
		}
	}

	return Cart{
		Items:          items,
		ItemCount:      s.ItemCount,
		Total:          Money(s.Total),
		RestaurantID:   s.RestaurantID,
		RestaurantName: s.RestaurantName,
	}
}

func StatusLogToResponse(entries []statuslog.Entry) []StatusChange {
	out := make([]StatusChange, len(entries))
	for i, e := range entries {
		out[i] = StatusChange{
			EventID:   e.EventID,
			Status:    e.Status.String(),
			Actor:     string(e.Actor),
			ChangedAt: e.ChangedAt.UnixMilli(),
		}
	}

	return out
}
