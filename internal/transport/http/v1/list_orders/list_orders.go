package listorders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/converters"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/response"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

// service is an interface for the service layer.
type service interface {
	CustomerOrders(ctx context.Context, customerID string, filter order.ListFilter) ([]order.Order, error)
	RestaurantOrders(ctx context.Context, restaurantID string, filter order.ListFilter) ([]order.Order, error)
	AuthorizeRestaurant(ctx context.Context, user identity.Identity, restaurantID string) error
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// Query is the query string of the list endpoints: ?status=pending&status=confirmed&limit=20.
type Query struct {
	Status []string `schema:"status" validate:"dive,oneof=pending confirmed preparing on_delivery delivered cancelled"`
	Limit  int      `schema:"limit" validate:"min=0,max=200"`
	Offset int      `schema:"offset" validate:"min=0"`
}

// ParseFilter decodes and validates the list query of r.
func ParseFilter(r *http.Request) (order.ListFilter, error) {
	var q Query
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		return order.ListFilter{}, &response.BadRequestError{Err: fmt.Errorf("failed to decode query: %w", err)}
	}
	if err := response.Validate(q); err != nil {
		return order.ListFilter{}, err
	}

	statuses := make([]order.Status, 0, len(q.Status))
	for _, s := range q.Status {
		st, err := order.ParseStatus(s)
		if err != nil {
			return order.ListFilter{}, err
		}
		statuses = append(statuses, st)
	}

	return order.ListFilter{Statuses: statuses, Limit: q.Limit, Offset: q.Offset}, nil
}

// ListCustomerOrders returns the caller's orders, newest first.
func ListCustomerOrders(w http.ResponseWriter, r *http.Request, service service) {
	customer, ok := identity.FromContext(r.Context())
	if !ok {
		response.Error(w, r, ordersvc.ErrNotAuthenticated)

		return
	}

	filter, err := ParseFilter(r)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	orders, err := service.CustomerOrders(r.Context(), customer.UserID, filter)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, converters.OrdersToResponse(orders))
}

// ListRestaurantOrders returns the queue of the restaurant in the restaurantID path
// parameter, by status priority.
func ListRestaurantOrders(w http.ResponseWriter, r *http.Request, service service) {
	user, _ := identity.FromContext(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	if err := service.AuthorizeRestaurant(r.Context(), user, restaurantID); err != nil {
		response.Error(w, r, err)

		return
	}

	filter, err := ParseFilter(r)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	orders, err := service.RestaurantOrders(r.Context(), restaurantID, filter)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, converters.OrdersToResponse(orders))
}
