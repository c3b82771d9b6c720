package orderitem

import "github.com/shopspring/decimal"

// OrderItem is a snapshot of a cart line taken at submission time.
// Later menu edits never change it.
type OrderItem struct {
	DishID       string          `json:"dishId"`
	DishName     string          `json:"dishName"`
	DishImageURL string          `json:"dishImageUrl"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}
