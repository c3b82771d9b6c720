package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

const kafkaMaxAttempts = 3

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer receives order events from a Kafka topic. Offsets are committed once a
// message is handled or given up on.
type KafkaConsumer struct {
	reader  reader
	service service
	retry   time.Duration
	done    chan struct{}
}

// NewKafkaConsumer creates a consumer reading from r.
func NewKafkaConsumer(r *kafka.Reader, service service) *KafkaConsumer {
	return newKafkaConsumer(r, service)
}

func newKafkaConsumer(r reader, service service) *KafkaConsumer {
	return &KafkaConsumer{
		reader:  r,
		service: service,
		retry:   time.Second,
		done:    make(chan struct{}),
	}
}

// Run reads messages until ctx is cancelled.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	defer close(c.done)

	slog.Info("Kafka consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				slog.Info("Kafka consumer shutting down")

				return nil
			}

			return err
		}

		c.processMessage(ctx, msg)

		if err := c.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
			slog.Error("Failed to commit kafka offset", "offset", msg.Offset, "error", err)
		}
	}
}

func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "KafkaConsumer.processMessage")
	defer span.End()

	for attempt := 1; ; attempt++ {
		err := handle(ctx, c.service, msg.Value)
		if err == nil {
			return
		}
		if errors.Is(err, errMalformed) {
			slog.Error("Dropping malformed order event", "offset", msg.Offset, "error", err)

			return
		}

		span.RecordError(err)
		if attempt == kafkaMaxAttempts {
			slog.Error("Giving up on order event", "offset", msg.Offset, "attempts", attempt, "error", err)

			return
		}
		slog.Warn("Failed to handle order event, will retry", "offset", msg.Offset, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retry * time.Duration(attempt)):
		}
	}
}

// Shutdown closes the reader, which ends Run.
func (c *KafkaConsumer) Shutdown() error {
	slog.Info("Shutting down kafka consumer")

	err := c.reader.Close()

	select {
	case <-c.done:
	case <-time.After(10 * time.Second):
		slog.Warn("Kafka consumer shutdown timeout")
	}

	return err
}
