package statuslog

import (
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
)

// Entry records one status write of an order, as seen on the event stream.
type Entry struct {
	ID        int64        `json:"id"`
	EventID   string       `json:"eventId"`
	OrderID   string       `json:"orderId"`
	Status    order.Status `json:"status"`
	Actor     order.Actor  `json:"actor,omitempty"`
	ChangedAt time.Time    `json:"changedAt"`
}
