package order

import (
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/currency"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// Order represents a submitted cart. Only Status and UpdatedAt change after creation.
type Order struct {
	ID                   string                `json:"id"`
	CustomerID           string                `json:"customerId"`
	CustomerName         string                `json:"customerName"`
	CustomerEmail        string                `json:"customerEmail"`
	RestaurantID         string                `json:"restaurantId"`
	RestaurantName       string                `json:"restaurantName"`
	Items                []orderitem.OrderItem `json:"items"`
	Subtotal             decimal.Decimal       `json:"subtotal"`
	DeliveryFee          decimal.Decimal       `json:"deliveryFee"`
	Total                decimal.Decimal       `json:"total"`
	Currency             currency.Currency     `json:"currency"`
	DeliveryAddress      string                `json:"deliveryAddress"`
	DeliveryInstructions string                `json:"deliveryInstructions"`
	PaymentMethod        string                `json:"paymentMethod"`
	Status               Status                `json:"status"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}
