package istatuslogrepo

import (
	"context"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
)

// IStatusLogRepository stores the status history of orders.
type IStatusLogRepository interface {
	// Insert is idempotent on the entry's event id.
	Insert(ctx context.Context, entry statuslog.Entry) error
	ListByOrder(ctx context.Context, orderID string) ([]statuslog.Entry, error)
}
