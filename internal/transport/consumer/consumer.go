package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/rabbitmq"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderevent"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// service represents the service layer interface.
type service interface {
	HandleOrderEvent(ctx context.Context, e orderevent.Event) error
}

// errMalformed marks a payload that can never be handled.
var errMalformed = errors.New("malformed order event")

// handle decodes one broker payload and passes it to the service.
func handle(ctx context.Context, svc service, body []byte) error {
	e, err := orderevent.Parse(body)
	if err != nil {
		return errors.Join(errMalformed, err)
	}

	return svc.HandleOrderEvent(ctx, e)
}

// Consumer receives order events from a RabbitMQ fanout exchange. Every instance binds its
// own exclusive queue, so each one sees every event.
type Consumer struct {
	client  *rabbitmq.Client
	service service
	queue   amqp.Queue
	stop    chan struct{}
	done    chan struct{}
}

// NewConsumer creates a new Consumer bound to exchange.
func NewConsumer(client *rabbitmq.Client, service service, exchange string) *Consumer {
	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       viper.GetString("rabbitmq.queue"),
		Durable:    false,
		AutoDelete: true,
		Exclusive:  true,
		NoWait:     false,
	})
	if err != nil {
		panic(err)
	}

	if err := client.BindQueue(queue.Name, "", exchange); err != nil {
		panic(err)
	}

	return &Consumer{
		client:  client,
		service: service,
		queue:   queue,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run starts consuming messages from RabbitMQ.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:     c.queue.Name,
		Consumer:  consumerTag,
		AutoAck:   false,
		Exclusive: true,
	})
	if err != nil {
		close(c.done)

		return err
	}

	slog.Info("Consumer started", "queue", c.queue.Name)

	concurrency := viper.GetInt("rabbitmq.consumer_concurrency")
	if concurrency == 0 {
		concurrency = 50
	}

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(concurrency)

	func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("Consumer context cancelled")

				return
			case <-c.stop:
				slog.Info("Stopping consumer")

				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed")

					return
				}

				g.Go(func() error {
					c.processMessage(gctx, msg)

					return nil
				})
			}
		}
	}()

	_ = g.Wait()
	close(c.done)

	return nil
}

// processMessage handles a single delivery. Malformed events are dropped, failed ones are
// requeued.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	err := handle(ctx, c.service, msg.Body)
	switch {
	case errors.Is(err, errMalformed):
		slog.Error("Dropping malformed order event", "message_id", msg.MessageId, "error", err)
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}
	case err != nil:
		span.RecordError(err)
		slog.Error("Failed to handle order event", "message_id", msg.MessageId, "error", err)
		if err := msg.Nack(false, !msg.Redelivered); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}
	default:
		if err := msg.Ack(false); err != nil {
			slog.Error("Failed to ack message", "error", err)
		}
	}
}

// Shutdown gracefully shuts down the consumer.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	close(c.stop)

	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
