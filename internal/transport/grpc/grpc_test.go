package grpctransport

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/feed/memory"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderevent"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/watchsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var errStoreDown = errors.New("store down")

type store struct {
	mu       sync.Mutex
	orders   []order.Order
	failures int
}

func (s *store) failNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = n
}

func (s *store) pendingFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failures
}

func (s *store) load() ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--

		return nil, errStoreDown
	}

	return append([]order.Order(nil), s.orders...), nil
}

func (s *store) set(orders ...order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = orders
}

func (s *store) list() []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]order.Order(nil), s.orders...)
}

func (s *store) GetOrder(_ context.Context, viewer identity.Identity, id string) (order.Order, error) {
	if !viewer.IsAuthenticated() {
		return order.Order{}, ordersvc.ErrNotAuthenticated
	}
	for _, o := range s.list() {
		if o.ID == id {
			return o, nil
		}
	}

	return order.Order{}, ordersvc.ErrOrderNotFound
}

func (s *store) AuthorizeRestaurant(_ context.Context, user identity.Identity, restaurantID string) error {
	if user.UserID == "owner1" && restaurantID == "r1" {
		return nil
	}

	return ordersvc.ErrNotRestaurantOwner
}

func (s *store) CustomerOrders(context.Context, string, order.ListFilter) ([]order.Order, error) {
	return s.load()
}

func (s *store) RestaurantOrders(context.Context, string, order.ListFilter) ([]order.Order, error) {
	return s.load()
}

type fixture struct {
	conn     *grpc.ClientConn
	feed     *memory.Feed
	store    *store
	verifier *auth.Verifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	s := &store{}
	s.set(order.Order{ID: "o1", CustomerID: "u1", RestaurantID: "r1", Status: order.StatusPending})
	feed := memory.NewFeed()
	watches := watchsvc.MustNewWatchService(watchsvc.WithFeed(feed), watchsvc.WithOrderSource(s))
	verifier := auth.NewVerifier("secret")

	listener := bufconn.Listen(1 << 20)
	transport := newGRPCTransport(listener, s, watches, verifier)
	go func() { _ = transport.Run() }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = transport.Shutdown(ctx)
		feed.Close()
	})

	return fixture{conn: conn, feed: feed, store: s, verifier: verifier}
}

func (f fixture) ctx(t *testing.T, userID string) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	if userID == "" {
		return ctx
	}

	token, err := f.verifier.Issue(identity.Identity{UserID: userID}, time.Hour)
	require.NoError(t, err)

	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func (f fixture) getOrder(ctx context.Context, id string) (*structpb.Struct, error) {
	resp := &structpb.Struct{}
	err := f.conn.Invoke(ctx, "/"+OrderFeedServiceName+"/GetOrder", wrapperspb.String(id), resp)

	return resp, err
}

func (f fixture) watch(ctx context.Context, t *testing.T, method string, req *structpb.Struct) grpc.ClientStream {
	t.Helper()

	desc := &grpc.StreamDesc{StreamName: method, ServerStreams: true}
	stream, err := f.conn.NewStream(ctx, desc, "/"+OrderFeedServiceName+"/"+method)
	require.NoError(t, err)
	require.NoError(t, stream.SendMsg(req))
	require.NoError(t, stream.CloseSend())

	return stream
}

func recvOrders(stream grpc.ClientStream) ([]*structpb.Value, error) {
	msg := &structpb.Struct{}
	if err := stream.RecvMsg(msg); err != nil {
		return nil, err
	}

	return msg.GetFields()["orders"].GetListValue().GetValues(), nil
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name         string
		ctx          context.Context
		id           string
		expectedCode codes.Code
	}{
		{name: "found", ctx: f.ctx(t, "u1"), id: "o1", expectedCode: codes.OK},
		{name: "not found", ctx: f.ctx(t, "u1"), id: "o2", expectedCode: codes.NotFound},
		{name: "anonymous", ctx: f.ctx(t, ""), id: "o1", expectedCode: codes.Unauthenticated},
		{
			name:         "bad token",
			ctx:          metadata.AppendToOutgoingContext(f.ctx(t, ""), "authorization", "Bearer nope"),
			id:           "o1",
			expectedCode: codes.Unauthenticated,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			resp, err := f.getOrder(testCase.ctx, testCase.id)

			assert.Equal(t, testCase.expectedCode, status.Code(err))
			if testCase.expectedCode == codes.OK {
				assert.Equal(t, "o1", resp.GetFields()["id"].GetStringValue())
				assert.Equal(t, "pending", resp.GetFields()["status"].GetStringValue())
			}
		})
	}
}

func TestWatchCustomerOrders(t *testing.T) {
	f := newFixture(t)

	stream := f.watch(f.ctx(t, "u1"), t, "WatchCustomerOrders", &structpb.Struct{})

	orders, err := recvOrders(stream)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "pending", orders[0].GetStructValue().GetFields()["status"].GetStringValue())

	f.store.set(order.Order{ID: "o1", CustomerID: "u1", RestaurantID: "r1", Status: order.StatusConfirmed})
	require.NoError(t, f.feed.Notify(context.Background(), orderevent.CustomerTopic("u1")))

	orders, err = recvOrders(stream)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", orders[0].GetStructValue().GetFields()["status"].GetStringValue())

	f.feed.Close()
	_, err = recvOrders(stream)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestWatchCustomerOrders_SurvivesFailedRefresh(t *testing.T) {
	f := newFixture(t)

	stream := f.watch(f.ctx(t, "u1"), t, "WatchCustomerOrders", &structpb.Struct{})

	_, err := recvOrders(stream)
	require.NoError(t, err)

	f.store.failNext(1)
	f.store.set(order.Order{ID: "o1", CustomerID: "u1", RestaurantID: "r1", Status: order.StatusPreparing})
	require.NoError(t, f.feed.Notify(context.Background(), orderevent.CustomerTopic("u1")))
	require.Eventually(t, func() bool { return f.store.pendingFailures() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.feed.Notify(context.Background(), orderevent.CustomerTopic("u1")))

	orders, err := recvOrders(stream)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "preparing", orders[0].GetStructValue().GetFields()["status"].GetStringValue())
}

func TestWatch_Rejections(t *testing.T) {
	f := newFixture(t)

	badStatus, err := structpb.NewStruct(map[string]any{"statuses": []any{"lost"}})
	require.NoError(t, err)
	restaurant, err := structpb.NewStruct(map[string]any{"restaurant_id": "r1"})
	require.NoError(t, err)

	tests := []struct {
		name         string
		user         string
		method       string
		req          *structpb.Struct
		expectedCode codes.Code
	}{
		{name: "anonymous customer", method: "WatchCustomerOrders", req: &structpb.Struct{}, expectedCode: codes.Unauthenticated},
		{name: "bad status", user: "u1", method: "WatchCustomerOrders", req: badStatus, expectedCode: codes.InvalidArgument},
		{name: "not an operator", user: "u1", method: "WatchRestaurantOrders", req: restaurant, expectedCode: codes.PermissionDenied},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			stream := f.watch(f.ctx(t, testCase.user), t, testCase.method, testCase.req)

			_, err := recvOrders(stream)

			assert.Equal(t, testCase.expectedCode, status.Code(err))
		})
	}
}

func TestWatchRestaurantOrders(t *testing.T) {
	f := newFixture(t)
	req, err := structpb.NewStruct(map[string]any{"restaurant_id": "r1", "limit": 10})
	require.NoError(t, err)

	stream := f.watch(f.ctx(t, "owner1"), t, "WatchRestaurantOrders", req)

	orders, err := recvOrders(stream)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].GetStructValue().GetFields()["id"].GetStringValue())
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, err := healthpb.NewHealthClient(f.conn).Check(f.ctx(t, ""),
		&healthpb.HealthCheckRequest{Service: OrderFeedServiceName})

	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
