package kafka

import (
	"context"
	"fmt"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ipublisher"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
	"github.com/segmentio/kafka-go"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventKafkaRepository publishes order events to Kafka, keyed by order id so the events of
// one order stay ordered.
type EventKafkaRepository struct {
	writer writer
}

var _ ipublisher.IEventPublisher = (*EventKafkaRepository)(nil)

func NewEventKafkaRepository(w *kafka.Writer) *EventKafkaRepository {
	return &EventKafkaRepository{
		writer: w,
	}
}

func (r *EventKafkaRepository) Publish(ctx context.Context, msg outbox.OutboxMessage) error {
	err := r.writer.WriteMessages(ctx, kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.Key),
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte(msg.ContentType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}
