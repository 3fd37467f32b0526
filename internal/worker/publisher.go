package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"woosync/internal/config"
	"woosync/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the producer side of the sync topic. *kafka.Writer
// implements it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher enqueues sync events for the worker.
type Publisher struct {
	writer MessageWriter
}

func NewWriter(cfg *config.Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers()...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish writes events keyed by SKU. Events without a timestamp get the
// current time.
func (p *Publisher) Publish(ctx context.Context, events ...models.SyncEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}
		value, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(event.Key()),
			Value: value,
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(messages), err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
