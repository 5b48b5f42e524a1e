// Package events carries continuation events between pipeline stages over Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/timmy/hotelsense/internal/domain"
	"github.com/timmy/hotelsense/internal/logger"
	"github.com/timmy/hotelsense/internal/metrics"
)

// Writer is the subset of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements domain.Publisher.
type KafkaPublisher struct {
	writer Writer
}

// NewKafkaPublisher creates a publisher whose messages pick their topic
// individually, so one writer serves every stage.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
	}
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish JSON-encodes payload and writes it to topic. Events about a hotel
// are keyed by hotel id so they stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, payload any) (err error) {
	defer func() { metrics.ObservePublish(topic, err) }()

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event for %s: %w", topic, err)
	}
	msg := kafka.Message{Topic: topic, Value: value}
	if key := messageKey(payload); key != "" {
		msg.Key = []byte(key)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldTopic: topic,
		"bytes":           len(value),
	}).Debug("Event published")
	return nil
}

func messageKey(payload any) string {
	switch e := payload.(type) {
	case domain.HotelEvent:
		return e.HotelID
	case *domain.HotelEvent:
		return e.HotelID
	case domain.RoomImagesEvent:
		return e.HotelID
	case *domain.RoomImagesEvent:
		return e.HotelID
	}
	return ""
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
