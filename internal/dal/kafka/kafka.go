package kafka

import (
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

// Client holds the broker addresses and builds writers and readers for them.
type Client struct {
	brokers []string
	writer  *kafka.Writer
}

// MustNewClient creates a new Kafka client. Connections are opened lazily by kafka-go.
func MustNewClient() *Client {
	brokers := viper.GetStringSlice("kafka.brokers")
	if len(brokers) == 0 {
		panic("kafka.brokers is not set in config")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: viper.GetBool("kafka.allow_auto_topic_creation"),
		WriteTimeout:           10 * time.Second,
	}

	slog.Info("Kafka client configured", "brokers", brokers)

	return &Client{
		brokers: brokers,
		writer:  writer,
	}
}

// Writer returns the shared writer. Messages must carry their topic.
func (c *Client) Writer() *kafka.Writer {
	return c.writer
}

// NewReader creates a reader of topic within the given consumer group.
func (c *Client) NewReader(topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
}

// Close flushes and closes the writer.
func (c *Client) Close() error {
	return c.writer.Close()
}
