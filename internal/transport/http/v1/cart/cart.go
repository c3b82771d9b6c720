package cart

import (
	"context"
	"net/http"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/cartsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/converters"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/response"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	Get(ctx context.Context, userID string) (cartsvc.Summary, error)
	AddItem(ctx context.Context, userID, itemID string, qty int) (cartsvc.Summary, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, qty int) (cartsvc.Summary, error)
	Increment(ctx context.Context, userID, itemID string) (cartsvc.Summary, error)
	Decrement(ctx context.Context, userID, itemID string) (cartsvc.Summary, error)
	Remove(ctx context.Context, userID, itemID string) (cartsvc.Summary, error)
	Clear(ctx context.Context, userID string) (cartsvc.Summary, error)
}

// AddItemRequest adds a dish to the cart. A missing quantity adds one.
type AddItemRequest struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"omitempty,min=1,max=10"`
}

// UpdateQuantityRequest sets the quantity of a line. Zero removes it.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func userID(r *http.Request) string {
	id, _ := identity.FromContext(r.Context())

	return id.UserID
}

func write(w http.ResponseWriter, r *http.Request, summary cartsvc.Summary, err error) {
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, converters.CartToResponse(summary))
}

// GetCart returns the caller's cart.
func GetCart(w http.ResponseWriter, r *http.Request, service service) {
	summary, err := service.Get(r.Context(), userID(r))
	write(w, r, summary, err)
}

// AddItem adds a dish to the caller's cart.
func AddItem(w http.ResponseWriter, r *http.Request, service service) {
	var req AddItemRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, err)

		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	summary, err := service.AddItem(r.Context(), userID(r), req.MenuItemID, req.Quantity)
	write(w, r, summary, err)
}

// UpdateQuantity sets the quantity of the line in the itemID path parameter.
func UpdateQuantity(w http.ResponseWriter, r *http.Request, service service) {
	var req UpdateQuantityRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, err)

		return
	}

	summary, err := service.UpdateQuantity(r.Context(), userID(r), chi.URLParam(r, "itemID"), *req.Quantity)
	write(w, r, summary, err)
}

func Increment(w http.ResponseWriter, r *http.Request, service service) {
	summary, err := service.Increment(r.Context(), userID(r), chi.URLParam(r, "itemID"))
	write(w, r, summary, err)
}

func Decrement(w http.ResponseWriter, r *http.Request, service service) {
	summary, err := service.Decrement(r.Context(), userID(r), chi.URLParam(r, "itemID"))
	write(w, r, summary, err)
}

func RemoveItem(w http.ResponseWriter, r *http.Request, service service) {
	summary, err := service.Remove(r.Context(), userID(r), chi.URLParam(r, "itemID"))
	write(w, r, summary, err)
}

func ClearCart(w http.ResponseWriter, r *http.Request, service service) {
	summary, err := service.Clear(r.Context(), userID(r))
	write(w, r, summary, err)
}
