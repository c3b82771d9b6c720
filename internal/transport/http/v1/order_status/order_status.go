package orderstatus

import (
	"context"
	"net/http"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/converters"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/response"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	UpdateStatus(ctx context.Context, by ordersvc.Requester, id string, status order.Status) (order.Order, error)
	Cancel(ctx context.Context, by ordersvc.Requester, id string) (order.Order, error)
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus sets the status of an order of the restaurant in the path.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	var req UpdateStatusRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, err)

		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	user, _ := identity.FromContext(r.Context())
	by := ordersvc.Restaurant(user, chi.URLParam(r, "restaurantID"))

	updated, err := service.UpdateStatus(r.Context(), by, chi.URLParam(r, "orderID"), status)
	write(w, r, updated, err)
}

// CancelAsCustomer cancels one of the caller's own orders.
func CancelAsCustomer(w http.ResponseWriter, r *http.Request, service service) {
	user, _ := identity.FromContext(r.Context())

	updated, err := service.Cancel(r.Context(), ordersvc.Customer(user), chi.URLParam(r, "orderID"))
	write(w, r, updated, err)
}

// CancelAsRestaurant cancels an order of the restaurant in the path.
func CancelAsRestaurant(w http.ResponseWriter, r *http.Request, service service) {
	user, _ := identity.FromContext(r.Context())
	by := ordersvc.Restaurant(user, chi.URLParam(r, "restaurantID"))

	updated, err := service.Cancel(r.Context(), by, chi.URLParam(r, "orderID"))
	write(w, r, updated, err)
}

func write(w http.ResponseWriter, r *http.Request, o order.Order, err error) {
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, converters.OrderToResponse(o))
}
