package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ipublisher"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/rabbitmq"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
	"github.com/streadway/amqp"
)

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventRabbitMQRepository publishes order events to a fanout exchange.
type EventRabbitMQRepository struct {
	channel channel
}

var _ ipublisher.IEventPublisher = (*EventRabbitMQRepository)(nil)

// NewEventRabbitMQRepository declares the exchange and returns a publisher for it.
func NewEventRabbitMQRepository(client *rabbitmq.Client, exchange string) *EventRabbitMQRepository {
	err := client.DeclareExchange(rabbitmq.DeclareExchangeConfig{
		Name:    exchange,
		Kind:    amqp.ExchangeFanout,
		Durable: true,
	})
	if err != nil {
		panic(err)
	}

	return &EventRabbitMQRepository{
		channel: client.Channel(),
	}
}

// Publish sends the message to the exchange named by its topic.
func (r *EventRabbitMQRepository) Publish(ctx context.Context, msg outbox.OutboxMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.channel.Publish(
		msg.Topic,
		msg.Key,
		false,
		false,
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("outbox-%d", msg.ID),
			Timestamp:    time.Now(),
			Body:         msg.Payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to rabbitmq: %w", err)
	}

	return nil
}
