package grpctransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/watchsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/converters"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	OrderFeedServiceName = "appuni.orders.v1.OrderFeed"

	maxListLimit = 200
)

var errBadFilter = errors.New("invalid watch filter")

// OrderFeedServer serves one-shot order reads and live order lists.
type OrderFeedServer struct {
	orders  orderService
	watches watchService
}

func NewOrderFeedServer(orders orderService, watches watchService) *OrderFeedServer {
	return &OrderFeedServer{
		orders:  orders,
		watches: watches,
	}
}

// GetOrder returns the order with the given id as a JSON-shaped struct.
func (s *OrderFeedServer) GetOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	viewer, _ := identity.FromContext(ctx)

	o, err := s.orders.GetOrder(ctx, viewer, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	msg, err := toStruct(converters.OrderToResponse(o))
	if err != nil {
		slog.Error("Error converting order", "order_id", o.ID, "error", err)

		return nil, status.Error(codes.Internal, "failed to convert order")
	}

	return msg, nil
}

// WatchCustomerOrders streams the caller's orders on every change. The request may carry
// "statuses", "limit" and "offset".
func (s *OrderFeedServer) WatchCustomerOrders(req *structpb.Struct, stream grpc.ServerStream) error {
	customer, ok := identity.FromContext(stream.Context())
	if !ok {
		return status.Error(codes.Unauthenticated, "customer is not authenticated")
	}

	filter, err := filterFromStruct(req)
	if err != nil {
		return toStatus(err)
	}

	watch, err := s.watches.WatchCustomer(stream.Context(), customer.UserID, filter)
	if err != nil {
		return toStatus(err)
	}

	return relay(stream, watch)
}

// WatchRestaurantOrders streams the queue of "restaurant_id" to one of its operators.
func (s *OrderFeedServer) WatchRestaurantOrders(req *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()
	user, _ := identity.FromContext(ctx)
	restaurantID := req.GetFields()["restaurant_id"].GetStringValue()

	if err := s.orders.AuthorizeRestaurant(ctx, user, restaurantID); err != nil {
		return toStatus(err)
	}

	filter, err := filterFromStruct(req)
	if err != nil {
		return toStatus(err)
	}

	watch, err := s.watches.WatchRestaurant(ctx, restaurantID, filter)
	if err != nil {
		return toStatus(err)
	}

	return relay(stream, watch)
}

// relay streams every view of watch. A failed refresh is logged and skipped; the stream
// ends with Unavailable only when the watch closes right after a failure.
func relay(stream grpc.ServerStream, watch *watchsvc.Watch) error {
	defer watch.Close()

	var lastErr error
	for view := range watch.Views() {
		if view.Err != nil {
			slog.Warn("Order watch reported an error", "error", view.Err)
			lastErr = view.Err

			continue
		}
		lastErr = nil

		msg, err := toStruct(snapshot{Orders: converters.OrdersToResponse(view.Orders)})
		if err != nil {
			return status.Error(codes.Internal, "failed to convert orders")
		}
		if err := stream.SendMsg(msg); err != nil {
			return err
		}
	}

	if err := stream.Context().Err(); err != nil {
		return status.FromContextError(err).Err()
	}
	if lastErr != nil {
		return status.Error(codes.Unavailable, "order feed unavailable")
	}

	return nil
}

type snapshot struct {
	Orders []converters.Order `json:"orders"`
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("failed to build struct: %w", err)
	}

	return msg, nil
}

func filterFromStruct(req *structpb.Struct) (order.ListFilter, error) {
	fields := req.GetFields()
	filter := order.ListFilter{
		Limit:  int(fields["limit"].GetNumberValue()),
		Offset: int(fields["offset"].GetNumberValue()),
	}
	if filter.Limit < 0 || filter.Limit > maxListLimit || filter.Offset < 0 {
		return order.ListFilter{}, fmt.Errorf("%w: limit must be within 0..%d", errBadFilter, maxListLimit)
	}

	for _, v := range fields["statuses"].GetListValue().GetValues() {
		st, err := order.ParseStatus(v.GetStringValue())
		if err != nil {
			return order.ListFilter{}, err
		}
		filter.Statuses = append(filter.Statuses, st)
	}

	return filter, nil
}

type orderFeedHandler interface {
	GetOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	WatchCustomerOrders(req *structpb.Struct, stream grpc.ServerStream) error
	WatchRestaurantOrders(req *structpb.Struct, stream grpc.ServerStream) error
}

// orderFeedServiceDesc describes the OrderFeed service using well-known message types,
// so clients need no generated stubs.
var orderFeedServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderFeedServiceName,
	HandlerType: (*orderFeedHandler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOrder", Handler: getOrderHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchCustomerOrders",
			Handler:       watchHandler(orderFeedHandler.WatchCustomerOrders),
			ServerStreams: true,
		},
		{
			StreamName:    "WatchRestaurantOrders",
			Handler:       watchHandler(orderFeedHandler.WatchRestaurantOrders),
			ServerStreams: true,
		},
	},
	Metadata: "appuni/orders/v1/order_feed.proto",
}

func getOrderHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	req := &wrapperspb.StringValue{}
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(orderFeedHandler).GetOrder(ctx, req)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + OrderFeedServiceName + "/GetOrder",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(orderFeedHandler).GetOrder(ctx, req.(*wrapperspb.StringValue))
	}

	return interceptor(ctx, req, info, handler)
}

func watchHandler(method func(orderFeedHandler, *structpb.Struct, grpc.ServerStream) error) grpc.StreamHandler {
	return func(srv any, stream grpc.ServerStream) error {
		req := &structpb.Struct{}
		if err := stream.RecvMsg(req); err != nil {
			return err
		}

		return method(srv.(orderFeedHandler), req, stream)
	}
}
