package processors

import (
	"context"
	"errors"

	"woosync/internal/connectors/woocommerce"
	"woosync/internal/logger"
	"woosync/internal/models"
	"woosync/internal/syncer"
)

// ProductSyncer is the part of the WooCommerce connector the worker drives.
type ProductSyncer interface {
	Options() syncer.Options
	SyncProducts(ctx context.Context, source models.SyncSource, products []*models.Product, opts syncer.Options) *woocommerce.SyncReport
	DeleteProduct(ctx context.Context, id int64, force bool) (*models.Product, error)
	DeleteBySKU(ctx context.Context, sku string, force bool) (*models.Product, error)
}

type EventProcessor struct {
	syncer ProductSyncer
	logger *logger.Logger
}

func NewEventProcessor(syncer ProductSyncer, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		syncer: syncer,
		logger: logger,
	}
}

// Result counts what one batch of events did.
type Result struct {
	Upserted int
	Deleted  int
	Failed   int
	Skipped  int
}

// Process applies a batch of events in order. Consecutive upserts go to the
// store as one sync run; the run is flushed before every delete and before a
// SKU that is already pending, so events for one product never overtake each
// other or race inside one slice. Failures of single events are logged and
// counted, the only error returned is the context's.
func (ep *EventProcessor) Process(ctx context.Context, events []models.SyncEvent) (Result, error) {
	var result Result
	var pending []*models.Product
	pendingSKUs := map[string]struct{}{}

	flush := func() error {
		if len(pending) > 0 {
			report := ep.syncer.SyncProducts(ctx, models.SyncSourceWorker, pending, ep.syncer.Options())
			result.Upserted += report.Summary.Succeeded
			result.Failed += report.Summary.Failed
			pending = nil
			clear(pendingSKUs)
		}
		return ctx.Err()
	}

	for _, event := range events {
		switch event.Type {
		case models.EventProductUpsert:
			if event.Product == nil {
				ep.logger.Warn("Skipping %s event without product", event.Type)
				result.Skipped++
				continue
			}
			sku := event.Product.SKU
			if _, dup := pendingSKUs[sku]; dup && sku != "" {
				if err := flush(); err != nil {
					return result, err
				}
			}
			pending = append(pending, event.Product)
			pendingSKUs[sku] = struct{}{}

		case models.EventProductDelete:
			if event.ProductID == 0 && event.SKU == "" {
				ep.logger.Warn("Skipping %s event without product_id or sku", event.Type)
				result.Skipped++
				continue
			}
			if err := flush(); err != nil {
				return result, err
			}
			if err := ep.delete(ctx, event); err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				if errors.Is(err, woocommerce.ErrNotFound) {
					ep.logger.Info("Nothing to delete for sku %s", event.SKU)
					result.Skipped++
					continue
				}
				ep.logger.Error("Failed to delete product (id=%d sku=%s): %v", event.ProductID, event.SKU, err)
				result.Failed++
				continue
			}
			result.Deleted++

		default:
			ep.logger.Warn("Skipping event with unknown type %q", event.Type)
			result.Skipped++
		}
	}

	if err := flush(); err != nil {
		return result, err
	}

	ep.logger.Debug("Processed %d events: %+v", len(events), result)
	return result, nil
}

func (ep *EventProcessor) delete(ctx context.Context, event models.SyncEvent) error {
	if event.ProductID != 0 {
		_, err := ep.syncer.DeleteProduct(ctx, event.ProductID, event.Force)
		return err
	}
	_, err := ep.syncer.DeleteBySKU(ctx, event.SKU, event.Force)
	return err
}
