package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/feed/memory"
	"github.com/RicardoFlores201/appUni-sub000/internal/mocks"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/menuitem"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/cartsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/watchsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderServiceMock struct {
	mock.Mock
}

func (m *orderServiceMock) Checkout(
	ctx context.Context,
	customer identity.Identity,
	details ordersvc.DeliveryDetails,
) (string, error) {
	args := m.Called(ctx, customer, details)

	return args.String(0), args.Error(1)
}

func (m *orderServiceMock) GetOrder(ctx context.Context, viewer identity.Identity, id string) (order.Order, error) {
	args := m.Called(ctx, viewer, id)

	return args.Get(0).(order.Order), args.Error(1)
}

func (m *orderServiceMock) History(ctx context.Context, viewer identity.Identity, id string) ([]statuslog.Entry, error) {
	args := m.Called(ctx, viewer, id)

	return args.Get(0).([]statuslog.Entry), args.Error(1)
}

func (m *orderServiceMock) CustomerOrders(
	ctx context.Context,
	customerID string,
	filter order.ListFilter,
) ([]order.Order, error) {
	args := m.Called(ctx, customerID, filter)

	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *orderServiceMock) RestaurantOrders(
	ctx context.Context,
	restaurantID string,
	filter order.ListFilter,
) ([]order.Order, error) {
	args := m.Called(ctx, restaurantID, filter)

	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *orderServiceMock) AuthorizeRestaurant(ctx context.Context, user identity.Identity, restaurantID string) error {
	return m.Called(ctx, user, restaurantID).Error(0)
}

func (m *orderServiceMock) UpdateStatus(
	ctx context.Context,
	by ordersvc.Requester,
	id string,
	status order.Status,
) (order.Order, error) {
	args := m.Called(ctx, by, id, status)

	return args.Get(0).(order.Order), args.Error(1)
}

func (m *orderServiceMock) Cancel(ctx context.Context, by ordersvc.Requester, id string) (order.Order, error) {
	args := m.Called(ctx, by, id)

	return args.Get(0).(order.Order), args.Error(1)
}

type emptySource struct{}

func (emptySource) CustomerOrders(context.Context, string, order.ListFilter) ([]order.Order, error) {
	return nil, nil
}

func (emptySource) RestaurantOrders(context.Context, string, order.ListFilter) ([]order.Order, error) {
	return nil, nil
}

const secret = "test-secret"

type fixture struct {
	handler http.Handler
	orders  *orderServiceMock
	token   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	menu := &mocks.MenuRepository{}
	menu.On("Get", mock.Anything, "tacos").Return(menuitem.MenuItem{
		ID: "tacos", RestaurantID: "r1", RestaurantName: "Tacos Ana", Name: "Tacos", Price: decimal.RequireFromString("45"),
	}, nil)
	carts := cartsvc.MustNewCartService(cartsvc.WithMenuRepository(menu))

	watches := watchsvc.MustNewWatchService(
		watchsvc.WithFeed(memory.NewFeed()),
		watchsvc.WithOrderSource(emptySource{}),
	)

	verifier := auth.NewVerifier(secret)
	token, err := verifier.Issue(identity.Identity{UserID: "u1", Name: "Ana"}, time.Hour)
	require.NoError(t, err)

	orders := &orderServiceMock{}
	transport := NewHTTPTransport(orders, carts, watches, verifier)
	transport.RegisterRoutes()

	return fixture{handler: transport.Handler(), orders: orders, token: token}
}

func (f fixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	return rec
}

func TestRouter_Cart(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/cart/items", `{"menuItemId":"tacos","quantity":2}`, f.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total":"90.00"`)

	rec = f.do(http.MethodPost, "/api/v1/cart/items/tacos/increment", "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"itemCount":3`)

	rec = f.do(http.MethodDelete, "/api/v1/cart", "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"itemCount":0`)
}

func TestRouter_BadToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/orders", "", "not-a-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.orders.AssertNotCalled(t, "CustomerOrders", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_OrderRoutes(t *testing.T) {
	f := newFixture(t)
	caller := identity.Identity{UserID: "u1", Name: "Ana"}
	o := order.Order{ID: "o1", CustomerID: "u1", Status: order.StatusPending}

	f.orders.On("GetOrder", mock.Anything, caller, "o1").Return(o, nil)
	f.orders.On("CustomerOrders", mock.Anything, "u1", order.ListFilter{Statuses: []order.Status{order.StatusPending}}).
		Return([]order.Order{o}, nil)
	f.orders.On("History", mock.Anything, caller, "o1").Return([]statuslog.Entry{}, nil)
	f.orders.On("Cancel", mock.Anything, ordersvc.Customer(caller), "o1").
		Return(order.Order{ID: "o1", Status: order.StatusCancelled}, nil)
	f.orders.On("AuthorizeRestaurant", mock.Anything, caller, "r1").Return(nil)
	f.orders.On("UpdateStatus", mock.Anything, ordersvc.Restaurant(caller, "r1"), "o1", order.StatusConfirmed).
		Return(order.Order{ID: "o1", Status: order.StatusConfirmed}, nil)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "get order", method: http.MethodGet, path: "/api/v1/orders/o1", expectedStatus: http.StatusOK, expectedBody: `"id":"o1"`},
		{name: "list orders", method: http.MethodGet, path: "/api/v1/orders?status=pending", expectedStatus: http.StatusOK, expectedBody: `"o1"`},
		{name: "history", method: http.MethodGet, path: "/api/v1/orders/o1/history", expectedStatus: http.StatusOK, expectedBody: `[]`},
		{name: "customer cancel", method: http.MethodPost, path: "/api/v1/orders/o1/cancel", expectedStatus: http.StatusOK, expectedBody: `"cancelled"`},
		{
			name:           "restaurant status",
			method:         http.MethodPatch,
			path:           "/api/v1/restaurants/r1/orders/o1/status",
			body:           `{"status":"confirmed"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"confirmed"`,
		},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nope", expectedStatus: http.StatusNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			rec := f.do(testCase.method, testCase.path, testCase.body, f.token)

			require.Equal(t, testCase.expectedStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), testCase.expectedBody)
		})
	}
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
