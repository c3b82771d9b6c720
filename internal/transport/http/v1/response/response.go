package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/imenurepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/cart"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/cartsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorBody is returned for every failed request.
type ErrorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &BadRequestError{Err: fmt.Errorf("failed to decode request body: %w", err)}
	}

	return Validate(dst)
}

// Validate checks the `validate` tags of v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return &BadRequestError{Err: err}
	}

	return nil
}

// BadRequestError wraps malformed input.
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string {
	return e.Err.Error()
}

func (e *BadRequestError) Unwrap() error {
	return e.Err
}

// Error maps err to a status code and writes it. Unknown errors are logged and hidden.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}

	JSON(w, status, body)
}

func classify(err error) (int, ErrorBody) {
	var badRequest *BadRequestError
	var conflict *cart.ConflictError

	switch {
	case errors.As(err, &conflict):
		return http.StatusConflict, ErrorBody{
			Error: cart.ErrCrossRestaurantConflict.Error(),
			Details: map[string]string{
				"cartRestaurantId": conflict.CartRestaurantID,
				"itemRestaurantId": conflict.ItemRestaurantID,
			},
		}
	case errors.As(err, &badRequest):
		return http.StatusBadRequest, ErrorBody{Error: badRequest.Error()}
	case errors.Is(err, ordersvc.ErrNotAuthenticated), errors.Is(err, cartsvc.ErrNoSession):
		return http.StatusUnauthorized, ErrorBody{Error: err.Error()}
	case errors.Is(err, ordersvc.ErrNotRestaurantOwner), errors.Is(err, order.ErrActorNotPermitted):
		return http.StatusForbidden, ErrorBody{Error: err.Error()}
	case errors.Is(err, ordersvc.ErrOrderNotFound), errors.Is(err, imenurepo.ErrMenuItemNotFound):
		return http.StatusNotFound, ErrorBody{Error: err.Error()}
	case errors.Is(err, ordersvc.ErrEmptyCart),
		errors.Is(err, ordersvc.ErrMissingAddress),
		errors.Is(err, order.ErrInvalidStatus):
		return http.StatusBadRequest, ErrorBody{Error: err.Error()}
	case errors.Is(err, cart.ErrCrossRestaurantConflict),
		errors.Is(err, order.ErrTerminalStatus),
		errors.Is(err, order.ErrCancelNotAllowed),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, ordersvc.ErrDuplicateOrder):
		return http.StatusConflict, ErrorBody{Error: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: "internal error"}
	}
}
