package getorder

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/identity"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/converters"
	"github.com/RicardoFlores201/appUni-sub000/internal/transport/http/v1/response"
	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// service is an interface for the service layer.
type service interface {
	GetOrder(ctx context.Context, viewer identity.Identity, id string) (order.Order, error)
	History(ctx context.Context, viewer identity.Identity, id string) ([]statuslog.Entry, error)
}

// GetOrder returns a single order visible to the caller.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	viewer, _ := identity.FromContext(r.Context())

	o, err := service.GetOrder(r.Context(), viewer, chi.URLParam(r, "orderID"))
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, converters.OrderToResponse(o))
}

// History returns the recorded status changes of an order, oldest first.
func History(w http.ResponseWriter, r *http.Request, service service) {
	viewer, _ := identity.FromContext(r.Context())

	entries, err := service.History(r.Context(), viewer, chi.URLParam(r, "orderID"))
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, converters.StatusLogToResponse(entries))
}

// QRCode renders a PNG pointing at the tracking page of the order. ?size= sets the width in
// pixels.
func QRCode(w http.ResponseWriter, r *http.Request, service service, baseURL string) {
	viewer, _ := identity.FromContext(r.Context())

	o, err := service.GetOrder(r.Context(), viewer, chi.URLParam(r, "orderID"))
	if err != nil {
		response.Error(w, r, err)

		return
	}

	size := defaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > maxQRSize {
			response.JSON(w, http.StatusBadRequest, response.ErrorBody{Error: "size must be between 64 and 1024"})

			return
		}
		size = n
	}

	png, err := qrcode.Encode(TrackingURL(baseURL, o.ID), qrcode.Medium, size)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := w.Write(png); err != nil {
		slog.Error("Error writing qr code", "order_id", o.ID, "error", err)
	}
}

// TrackingURL is the client page showing the order.
func TrackingURL(baseURL, orderID string) string {
	return strings.TrimRight(baseURL, "/") + "/orders/" + orderID
}
