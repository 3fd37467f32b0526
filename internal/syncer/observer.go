package syncer

import (
	"time"

	"woosync/internal/logger"
)

type Operation string

const (
	OpValidate Operation = "validate"
	OpLookup   Operation = "lookup"
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
)

// Observer receives sync events. Implementations must be safe for concurrent
// use; events for records in the same slice arrive from different goroutines.
type Observer interface {
	RequestStarted(op Operation, sku string)
	ResponseReceived(op Operation, sku string, productID int64, elapsed time.Duration)
	ErrorOccurred(op Operation, sku string, err error)
	SliceStarted(index, size int)
	SliceFinished(index, succeeded, failed int)
}

type NopObserver struct{}

func (NopObserver) RequestStarted(Operation, string)                         {}
func (NopObserver) ResponseReceived(Operation, string, int64, time.Duration) {}
func (NopObserver) ErrorOccurred(Operation, string, error)                   {}
func (NopObserver) SliceStarted(int, int)                                    {}
func (NopObserver) SliceFinished(int, int, int)                              {}

// LogObserver writes sync events to a logger.
type LogObserver struct {
	logger *logger.Logger
}

func NewLogObserver(l *logger.Logger) *LogObserver {
	return &LogObserver{logger: l}
}

func (o *LogObserver) RequestStarted(op Operation, sku string) {
	o.logger.Debugw("sync request started", "op", op, "sku", sku)
}

func (o *LogObserver) ResponseReceived(op Operation, sku string, productID int64, elapsed time.Duration) {
	o.logger.Debugw("sync response received", "op", op, "sku", sku, "product_id", productID, "elapsed", elapsed)
}

func (o *LogObserver) ErrorOccurred(op Operation, sku string, err error) {
	o.logger.Errorw("sync error", "op", op, "sku", sku, "error", err)
}

func (o *LogObserver) SliceStarted(index, size int) {
	o.logger.Info("Processing batch %d (%d products)", index+1, size)
}

func (o *LogObserver) SliceFinished(index, succeeded, failed int) {
	o.logger.Info("Batch %d finished: %d succeeded, %d failed", index+1, succeeded, failed)
}
