package irestaurantrepo

import "context"

// IRestaurantRepository answers whether a user operates a restaurant.
type IRestaurantRepository interface {
	IsOwner(ctx context.Context, restaurantID, userID string) (bool, error)
}
