package ipublisher

import (
	"context"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
)

// IEventPublisher delivers outbox messages to a broker.
type IEventPublisher interface {
	Publish(ctx context.Context, msg outbox.OutboxMessage) error
}
