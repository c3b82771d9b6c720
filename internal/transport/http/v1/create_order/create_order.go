package createorder

import (
	"context"
	"net/http"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/response"
)

// service is an interface for the service layer.
type service interface {
	Checkout(ctx context.Context, customer identity.Identity, details ordersvc.DeliveryDetails) (string, error)
}

// CheckoutRequest carries the delivery details entered at checkout. The address is
// checked by the service so that an empty cart is reported first.
type CheckoutRequest struct {
	DeliveryAddress      string `json:"deliveryAddress" validate:"max=300"`
	DeliveryInstructions string `json:"deliveryInstructions" validate:"max=500"`
	PaymentMethod        string `json:"paymentMethod" validate:"max=64"`
}

type CheckoutResponse struct {
	ID string `json:"id"`
}

// Checkout submits the caller's cart as a new order.
func Checkout(w http.ResponseWriter, r *http.Request, service service) {
	var req CheckoutRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, err)

		return
	}

	customer, _ := identity.FromContext(r.Context())
	id, err := service.Checkout(r.Context(), customer, ordersvc.DeliveryDetails{
		Address:       req.DeliveryAddress,
		Instructions:  req.DeliveryInstructions,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.Error(w, r, err)

		return
	}

	w.Header().Set("Location", "/api/v1/orders/"+id)
	response.JSON(w, http.StatusCreated, CheckoutResponse{ID: id})
}
