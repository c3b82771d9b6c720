package outbox

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ioutboxrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ipublisher"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Worker relays messages from the outbox table to the event broker.
type Worker struct {
	outboxRepo    ioutboxrepo.IOutboxRepository
	publisher     ipublisher.IEventPublisher
	pollInterval  time.Duration
	batchSize     int
	retryInterval time.Duration
	concurrency   int
	now           func() time.Time
	stopCh        chan struct{}
}

// NewWorker creates a new outbox worker.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	publisher ipublisher.IEventPublisher,
) *Worker {
	pollIntervalSeconds := viper.GetInt("outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 1
	}

	batchSize := viper.GetInt("outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retryIntervalSeconds := viper.GetInt("outbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	concurrency := viper.GetInt("outbox.concurrency")
	if concurrency == 0 {
		concurrency = 8
	}

	return &Worker{
		outboxRepo:    outboxRepo,
		publisher:     publisher,
		pollInterval:  time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		retryInterval: time.Duration(retryIntervalSeconds) * time.Second,
		concurrency:   concurrency,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

// Start begins relaying messages from the outbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
		"concurrency", w.concurrency,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processMessages relays one batch. Messages sharing a key are published in order by a
// single goroutine; distinct keys are published concurrently.
func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Debug("Processing outbox messages", "count", len(messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, batch := range groupByKey(messages) {
		g.Go(func() error {
			for _, msg := range batch {
				if !w.relay(gctx, msg) {
					return nil
				}
			}

			return nil
		})
	}

	_ = g.Wait()
}

// relay publishes one message and reports whether it left the outbox.
func (w *Worker) relay(ctx context.Context, msg outbox.OutboxMessage) bool {
	if err := w.publisher.Publish(ctx, msg); err != nil {
		newRetryCount := msg.RetryCount + 1
		nextRetryAt := w.now().Add(w.backoff(newRetryCount))

		if newRetryCount >= msg.MaxRetries {
			slog.Error("Outbox message exhausted its retries",
				"outbox_id", msg.ID,
				"topic", msg.Topic,
				"retry_count", newRetryCount,
				"error", err,
			)
		} else {
			slog.Warn("Failed to publish message from outbox, will retry",
				"outbox_id", msg.ID,
				"retry_count", newRetryCount,
				"next_retry", nextRetryAt,
				"error", err,
			)
		}

		if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
			slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
		}

		return false
	}

	if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
		slog.Error("Failed to delete message from outbox after successful publish",
			"outbox_id", msg.ID,
			"error", err,
		)

		return true
	}

	slog.Debug("Message published and removed from outbox", "outbox_id", msg.ID, "key", msg.Key)

	return true
}

// backoff grows as 2^n times the retry interval.
func (w *Worker) backoff(retryCount int) time.Duration {
	return time.Duration(math.Pow(2, float64(retryCount))) * w.retryInterval
}

func groupByKey(messages []outbox.OutboxMessage) [][]outbox.OutboxMessage {
	index := make(map[string]int)
	var groups [][]outbox.OutboxMessage
	for _, msg := range messages {
		i, ok := index[msg.Key]
		if !ok {
			i = len(groups)
			index[msg.Key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], msg)
	}

	return groups
}
