package watchorders

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/ordersvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/services/watchsvc"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/converters"
	listorders "github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/list_orders"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/response"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// service is an interface for the service layer.
type service interface {
	WatchCustomer(ctx context.Context, customerID string, filter order.ListFilter) (*watchsvc.Watch, error)
	WatchRestaurant(ctx context.Context, restaurantID string, filter order.ListFilter) (*watchsvc.Watch, error)
}

type authorizer interface {
	AuthorizeRestaurant(ctx context.Context, user identity.Identity, restaurantID string) error
}

// Message is pushed to the client on every change of the watched list.
type Message struct {
	Type   string             `json:"type"`
	Orders []converters.Order `json:"orders"`
	Error  string             `json:"error,omitempty"`
}

const (
	MessageSnapshot = "snapshot"
	MessageError    = "error"
)

// NewUpgrader accepts connections from the given origins; "*" accepts any.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, "*") {
				return true
			}
			if slices.Contains(allowedOrigins, origin) {
				return true
			}
			u, err := url.Parse(origin)

			return err == nil && u.Host == r.Host
		},
	}
}

// WatchCustomer streams the caller's orders over a websocket.
func WatchCustomer(w http.ResponseWriter, r *http.Request, service service, upgrader *websocket.Upgrader) {
	customer, ok := identity.FromContext(r.Context())
	if !ok {
		response.Error(w, r, ordersvc.ErrNotAuthenticated)

		return
	}

	stream(w, r, upgrader, func(ctx context.Context, filter order.ListFilter) (*watchsvc.Watch, error) {
		return service.WatchCustomer(ctx, customer.UserID, filter)
	})
}

// WatchRestaurant streams the queue of the restaurant in the path over a websocket.
func WatchRestaurant(
	w http.ResponseWriter,
	r *http.Request,
	service service,
	auth authorizer,
	upgrader *websocket.Upgrader,
) {
	user, _ := identity.FromContext(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")
	if err := auth.AuthorizeRestaurant(r.Context(), user, restaurantID); err != nil {
		response.Error(w, r, err)

		return
	}

	stream(w, r, upgrader, func(ctx context.Context, filter order.ListFilter) (*watchsvc.Watch, error) {
		return service.WatchRestaurant(ctx, restaurantID, filter)
	})
}

func stream(
	w http.ResponseWriter,
	r *http.Request,
	upgrader *websocket.Upgrader,
	start func(ctx context.Context, filter order.ListFilter) (*watchsvc.Watch, error),
) {
	filter, err := listorders.ParseFilter(r)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	// The watch outlives the handler's request context once the connection is hijacked.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	watch, err := start(ctx, filter)
	if err != nil {
		response.Error(w, r, err)

		return
	}
	defer watch.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)

		return
	}
	defer conn.Close()

	go readPump(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))

			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case view, ok := <-watch.Views():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "watch ended"), time.Now().Add(writeWait))

				return
			}
			if err := write(conn, view); err != nil {
				slog.Debug("Websocket write failed", "error", err)

				return
			}
		}
	}
}

func write(conn *websocket.Conn, view watchsvc.View) error {
	msg := Message{Type: MessageSnapshot, Orders: converters.OrdersToResponse(view.Orders)}
	if view.Err != nil {
		msg = Message{Type: MessageError, Error: "order feed unavailable"}
		slog.Warn("Order watch reported an error", "error", view.Err)
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(msg)
}

// readPump discards client frames and cancels the stream when the client goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
