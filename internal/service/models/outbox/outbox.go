package outbox

import (
	"time"
)

// OutboxMessage is an event stored with the order write and relayed to the broker later.
type OutboxMessage struct {
	ID          int64
	Topic       string
	Key         string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}
