package menuitem

import "github.com/shopspring/decimal"

// MenuItem is a dish offered by a restaurant. The order core only reads it.
type MenuItem struct {
	ID             string          `json:"id"`
	RestaurantID   string          `json:"restaurantId"`
	RestaurantName string          `json:"restaurantName"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	ImageURL       string          `json:"imageUrl"`
}
