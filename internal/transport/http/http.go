package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/cartsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/watchsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/auth"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/cart"
	createorder "github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/create_order"
	getorder "github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/get_order"
	listorders "github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/list_orders"
	orderstatus "github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/order_status"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/response"
	watchorders "github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/watch_orders"
	"github.com/RicardoFlores201/appUni-sub000/pkg/http/middleware/trace"
	"github.com/RicardoFlores201/appUni-sub000/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
)

type orderService interface {
	Checkout(ctx context.Context, customer identity.Identity, details ordersvc.DeliveryDetails) (string, error)
	GetOrder(ctx context.Context, viewer identity.Identity, id string) (order.Order, error)
	History(ctx context.Context, viewer identity.Identity, id string) ([]statuslog.Entry, error)
	CustomerOrders(ctx context.Context, customerID string, filter order.ListFilter) ([]order.Order, error)
	RestaurantOrders(ctx context.Context, restaurantID string, filter order.ListFilter) ([]order.Order, error)
	AuthorizeRestaurant(ctx context.Context, user identity.Identity, restaurantID string) error
	UpdateStatus(ctx context.Context, by ordersvc.Requester, id string, status order.Status) (order.Order, error)
	Cancel(ctx context.Context, by ordersvc.Requester, id string) (order.Order, error)
}

type cartService interface {
	Get(ctx context.Context, userID string) (cartsvc.Summary, error)
	AddItem(ctx context.Context, userID, itemID string, qty int) (cartsvc.Summary, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, qty int) (cartsvc.Summary, error)
	Increment(ctx context.Context, userID, itemID string) (cartsvc.Summary, error)
	Decrement(ctx context.Context, userID, itemID string) (cartsvc.Summary, error)
	Remove(ctx context.Context, userID, itemID string) (cartsvc.Summary, error)
	Clear(ctx context.Context, userID string) (cartsvc.Summary, error)
}

type watchService interface {
	WatchCustomer(ctx context.Context, customerID string, filter order.ListFilter) (*watchsvc.Watch, error)
	WatchRestaurant(ctx context.Context, restaurantID string, filter order.ListFilter) (*watchsvc.Watch, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	orders   orderService
	carts    cartService
	watches  watchService
	upgrader *websocket.Upgrader
	baseURL  string
}

func NewHTTPTransport(
	orders orderService,
	carts cartService,
	watches watchService,
	verifier *auth.Verifier,
) *HTTPTransport {
	router := newRouter(verifier)
	server := newServer(router)

	return &HTTPTransport{
		server:   server,
		router:   router,
		orders:   orders,
		carts:    carts,
		watches:  watches,
		upgrader: watchorders.NewUpgrader(viper.GetStringSlice("server.http.cors.allowed_origins")),
		baseURL:  viper.GetString("public_base_url"),
	}
}

func (h *HTTPTransport) Run() error {
	slog.Info("Starting HTTP server", "address", h.server.Addr)

	return h.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones. Hijacked websocket
// connections end when their watches do.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler exposes the router for tests and embedding.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	h.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Put("/items/{itemID}", h.updateCartItem)
			r.Delete("/items/{itemID}", h.removeCartItem)
			r.Post("/items/{itemID}/increment", h.incrementCartItem)
			r.Post("/items/{itemID}/decrement", h.decrementCartItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.checkout)
			r.Get("/", h.listCustomerOrders)
			r.Get("/{orderID}", h.getOrder)
			r.Get("/{orderID}/history", h.orderHistory)
			r.Get("/{orderID}/qrcode", h.orderQRCode)
			r.Post("/{orderID}/cancel", h.cancelAsCustomer)
		})

		r.Route("/restaurants/{restaurantID}/orders", func(r chi.Router) {
			r.Get("/", h.listRestaurantOrders)
			r.Patch("/{orderID}/status", h.updateStatus)
			r.Post("/{orderID}/cancel", h.cancelAsRestaurant)
		})

		r.Get("/ws/orders", h.watchCustomer)
		r.Get("/ws/restaurants/{restaurantID}/orders", h.watchRestaurant)
	})
}

func (h *HTTPTransport) getCart(w http.ResponseWriter, r *http.Request) {
	cart.GetCart(w, r, h.carts)
}

func (h *HTTPTransport) clearCart(w http.ResponseWriter, r *http.Request) {
	cart.ClearCart(w, r, h.carts)
}

func (h *HTTPTransport) addCartItem(w http.ResponseWriter, r *http.Request) {
	cart.AddItem(w, r, h.carts)
}

func (h *HTTPTransport) updateCartItem(w http.ResponseWriter, r *http.Request) {
	cart.UpdateQuantity(w, r, h.carts)
}

func (h *HTTPTransport) removeCartItem(w http.ResponseWriter, r *http.Request) {
	cart.RemoveItem(w, r, h.carts)
}

func (h *HTTPTransport) incrementCartItem(w http.ResponseWriter, r *http.Request) {
	cart.Increment(w, r, h.carts)
}

func (h *HTTPTransport) decrementCartItem(w http.ResponseWriter, r *http.Request) {
	cart.Decrement(w, r, h.carts)
}

func (h *HTTPTransport) checkout(w http.ResponseWriter, r *http.Request) {
	createorder.Checkout(w, r, h.orders)
}

func (h *HTTPTransport) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListCustomerOrders(w, r, h.orders)
}

func (h *HTTPTransport) listRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListRestaurantOrders(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) orderHistory(w http.ResponseWriter, r *http.Request) {
	getorder.History(w, r, h.orders)
}

func (h *HTTPTransport) orderQRCode(w http.ResponseWriter, r *http.Request) {
	getorder.QRCode(w, r, h.orders, h.baseURL)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderstatus.UpdateStatus(w, r, h.orders)
}

func (h *HTTPTransport) cancelAsCustomer(w http.ResponseWriter, r *http.Request) {
	orderstatus.CancelAsCustomer(w, r, h.orders)
}

func (h *HTTPTransport) cancelAsRestaurant(w http.ResponseWriter, r *http.Request) {
	orderstatus.CancelAsRestaurant(w, r, h.orders)
}

func (h *HTTPTransport) watchCustomer(w http.ResponseWriter, r *http.Request) {
	watchorders.WatchCustomer(w, r, h.watches, h.upgrader)
}

func (h *HTTPTransport) watchRestaurant(w http.ResponseWriter, r *http.Request) {
	watchorders.WatchRestaurant(w, r, h.watches, h.orders, h.upgrader)
}

func newRouter(verifier *auth.Verifier) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)
	router.Use(middleware.Recoverer)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)
	router.Use(verifier.Middleware)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(viper.GetInt("server.http.read_header_timeout_seconds")) * time.Second,
	}
}
