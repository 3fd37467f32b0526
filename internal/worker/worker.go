package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"woosync/internal/config"
	"woosync/internal/logger"
	"woosync/internal/models"
	"woosync/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the consumer side of the sync topic. *kafka.Reader
// implements it.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Processor applies a batch of decoded events.
type Processor interface {
	Process(ctx context.Context, events []models.SyncEvent) (processors.Result, error)
}

type Worker struct {
	logger        *logger.Logger
	reader        MessageReader
	processor     Processor
	batchSize     int
	flushInterval time.Duration
}

// NewReader builds the consumer group reader for cfg.
func NewReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers(),
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaTopic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
}

func New(cfg *config.Config, logger *logger.Logger, reader MessageReader, processor Processor) *Worker {
	batchSize := cfg.KafkaBatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	flushInterval := cfg.KafkaFlushInterval
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}
	return &Worker{
		logger:        logger,
		reader:        reader,
		processor:     processor,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Run consumes until ctx is cancelled or the reader is closed. Messages are
// committed after their batch has been processed, so a batch cut short by
// shutdown is delivered again.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Worker started, listening for events...")

	for {
		batch, err := w.fetchBatch(ctx)
		if len(batch) == 0 {
			switch {
			case ctx.Err() != nil, errors.Is(err, io.EOF):
				return nil
			case err != nil:
				w.logger.Error("Failed to fetch message: %v", err)
				if !sleep(ctx, time.Second) {
					return nil
				}
			}
			continue
		}

		events := w.decode(batch)
		result, err := w.processor.Process(ctx, events)
		if err != nil {
			w.logger.Warn("Stopped processing batch of %d messages: %v", len(batch), err)
			return nil
		}
		w.logger.Info("Processed batch of %d messages: %d upserted, %d deleted, %d failed, %d skipped",
			len(batch), result.Upserted, result.Deleted, result.Failed, result.Skipped)

		if err := w.reader.CommitMessages(ctx, batch...); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("Failed to commit messages: %v", err)
		}
	}
}

// fetchBatch blocks for the first message, then collects more until the
// batch is full or the flush interval has passed.
func (w *Worker) fetchBatch(ctx context.Context) ([]kafka.Message, error) {
	first, err := w.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	batch := []kafka.Message{first}

	flushCtx, cancel := context.WithTimeout(ctx, w.flushInterval)
	defer cancel()

	for len(batch) < w.batchSize {
		message, err := w.reader.FetchMessage(flushCtx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.DeadlineExceeded) {
				w.logger.Error("Failed to fetch message: %v", err)
			}
			break
		}
		batch = append(batch, message)
	}
	return batch, nil
}

func (w *Worker) decode(batch []kafka.Message) []models.SyncEvent {
	events := make([]models.SyncEvent, 0, len(batch))
	for _, message := range batch {
		w.logger.Debug("Received message: %s", string(message.Value))

		var event models.SyncEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event at offset %d: %v", message.Offset, err)
			continue
		}
		events = append(events, event)
	}
	return events
}

func (w *Worker) Stop() error {
	w.logger.Info("Stopping worker...")
	return w.reader.Close()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
