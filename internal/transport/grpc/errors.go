package grpctransport

import (
	"context"
	"errors"
	"log/slog"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status codes. Unknown errors are logged and
// reported as Internal without their message.
func toStatus(err error) error {
	var code codes.Code

	switch {
	case errors.Is(err, ordersvc.ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidToken):
		code = codes.Unauthenticated
	case errors.Is(err, ordersvc.ErrNotRestaurantOwner), errors.Is(err, order.ErrActorNotPermitted):
		code = codes.PermissionDenied
	case errors.Is(err, ordersvc.ErrOrderNotFound):
		code = codes.NotFound
	case errors.Is(err, order.ErrInvalidStatus), errors.Is(err, errBadFilter):
		code = codes.InvalidArgument
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		slog.Error("gRPC request failed", "error", err)

		return status.Error(codes.Internal, "internal error")
	}

	return status.Error(code, err.Error())
}
