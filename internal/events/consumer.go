package events

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/timmy/hotelsense/internal/logger"
)

// Reader defines the subset of *kafka.Reader the consumer uses.
// This allows for easy mocking in unit tests.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one message. A returned error is logged; the message
// is committed either way since stages do not retry.
type Handler func(ctx context.Context, msg kafka.Message) error

// Consumer runs one stage's read-handle-commit loop.
type Consumer struct {
	reader       Reader
	handler      Handler
	topic        string
	errorBackoff time.Duration
}

// ConsumerConfig describes one subscription.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewConsumer creates a consumer group member for cfg.Topic.
func NewConsumer(cfg ConsumerConfig, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		// Offsets are committed explicitly after each message.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
	})
	return NewConsumerWithReader(cfg.Topic, reader, handler)
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(topic string, reader Reader, handler Handler) *Consumer {
	return &Consumer{
		reader:       reader,
		handler:      handler,
		topic:        topic,
		errorBackoff: time.Second,
	}
}

// Run consumes until ctx is canceled or the reader is closed, then closes
// the reader.
func (c *Consumer) Run(ctx context.Context) error {
	ctx = logger.WithField(ctx, logger.FieldTopic, c.topic)
	log := logger.FromContext(ctx)
	log.Info("Starting consumer loop")

	defer func() {
		if err := c.reader.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Kafka reader")
		}
		log.Info("Consumer stopped")
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			log.WithError(err).Error("Error reading message")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.errorBackoff):
			}
			continue
		}

		msgLog := log.WithFields(logger.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		if err := c.handler(ctx, msg); err != nil {
			msgLog.WithError(err).Error("Handler failed")
		}

		// Commit with a fresh context so a shutdown mid-handler still records progress.
		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		err = c.reader.CommitMessages(commitCtx, msg)
		cancel()
		if err != nil {
			msgLog.WithError(err).Error("Failed to commit offset")
		}
	}
}
