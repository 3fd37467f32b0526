package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"woosync/internal/config"
	"woosync/internal/logger"
	"woosync/internal/models"
	woo "woosync/internal/services/woocommerce"
	"woosync/internal/syncer"
)

// Store is the WooCommerce REST surface the connector uses. *woo.Client
// implements it.
type Store interface {
	syncer.ProductStore
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, opts woo.ListOptions) (*woo.ProductPage, error)
	DeleteProduct(ctx context.Context, id int64, force bool) (*models.Product, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	SystemStatus(ctx context.Context) (map[string]json.RawMessage, error)
}

// RunRecorder persists finished batch runs.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *models.SyncRun) error
}

// ErrNotFound is returned when a SKU has no product in the store.
var ErrNotFound = errors.New("product not found")

type WooCommerceConnector struct {
	config   *config.Config
	logger   *logger.Logger
	store    Store
	observer syncer.Observer
	upserter *syncer.Upserter
	runs     RunRecorder
}

// New wires a connector around store. runs may be nil, in which case batch
// runs are only logged.
func New(cfg *config.Config, logger *logger.Logger, store Store, runs RunRecorder) *WooCommerceConnector {
	observer := syncer.NewLogObserver(logger.Named("sync"))
	return &WooCommerceConnector{
		config:   cfg,
		logger:   logger,
		store:    store,
		observer: observer,
		upserter: syncer.NewUpserter(store, observer),
		runs:     runs,
	}
}

// NewFromConfig builds the HTTP client from cfg. cfg must already be validated.
func NewFromConfig(cfg *config.Config, logger *logger.Logger, runs RunRecorder) *WooCommerceConnector {
	client := woo.NewClient(
		cfg.BaseURL(),
		cfg.ConsumerKey,
		cfg.ConsumerSecret,
		logger.Named("woocommerce"),
		woo.WithTimeout(cfg.RequestTimeout),
	)
	return New(cfg, logger, client, runs)
}

// SyncReport is what a batch run returns to its caller.
type SyncReport struct {
	RunID      string               `json:"run_id"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Summary    models.SyncSummary   `json:"summary"`
	Outcomes   []models.SyncOutcome `json:"outcomes"`
}

// Options returns the scheduler options from configuration.
func (wc *WooCommerceConnector) Options() syncer.Options {
	return syncer.Options{
		Concurrency: wc.config.SyncConcurrency,
		Delay:       wc.config.SyncDelay,
	}
}

// SyncProducts upserts every product in slices and reports one outcome per
// product in input order. Failures of single products are part of the report,
// not an error.
func (wc *WooCommerceConnector) SyncProducts(ctx context.Context, source models.SyncSource, products []*models.Product, opts syncer.Options) *SyncReport {
	scheduler := syncer.NewScheduler(wc.upserter, opts, wc.observer)
	effective := scheduler.Options()

	wc.logger.Info("Syncing %d products to WooCommerce store %s (concurrency %d, delay %s)",
		len(products), wc.config.StoreURL, effective.Concurrency, effective.Delay)

	startedAt := time.Now().UTC()
	outcomes := scheduler.SyncAll(ctx, products)
	finishedAt := time.Now().UTC()

	summary := syncer.Report(wc.logger, outcomes)
	run := models.NewSyncRun(source, startedAt, finishedAt, outcomes)

	if wc.runs != nil {
		// The run already happened; a failed save only loses history.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := wc.runs.SaveRun(saveCtx, run); err != nil {
			wc.logger.Error("Failed to save sync run %s: %v", run.ID, err)
		}
	}

	return &SyncReport{
		RunID:      run.ID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Summary:    summary,
		Outcomes:   outcomes,
	}
}

// SyncProduct upserts a single product by SKU. Errors are returned to the caller.
func (wc *WooCommerceConnector) SyncProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	return wc.upserter.Sync(ctx, product)
}

// FindBySKU returns ErrNotFound when the store has no product for sku.
func (wc *WooCommerceConnector) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	product, err := wc.store.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("sku %q: %w", sku, ErrNotFound)
	}
	return product, nil
}

func (wc *WooCommerceConnector) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return wc.store.GetProduct(ctx, id)
}

func (wc *WooCommerceConnector) ListProducts(ctx context.Context, opts woo.ListOptions) (*woo.ProductPage, error) {
	return wc.store.ListProducts(ctx, opts)
}

// CreateProduct validates and creates without looking up the SKU first.
func (wc *WooCommerceConnector) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := syncer.Validate(product); err != nil {
		return nil, err
	}
	return wc.store.CreateProduct(ctx, product)
}

func (wc *WooCommerceConnector) UpdateProduct(ctx context.Context, id int64, product *models.Product) (*models.Product, error) {
	return wc.store.UpdateProduct(ctx, id, product)
}

func (wc *WooCommerceConnector) DeleteProduct(ctx context.Context, id int64, force bool) (*models.Product, error) {
	wc.logger.Info("Deleting product %d (force=%t)", id, force)
	return wc.store.DeleteProduct(ctx, id, force)
}

func (wc *WooCommerceConnector) DeleteBySKU(ctx context.Context, sku string, force bool) (*models.Product, error) {
	product, err := wc.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return wc.DeleteProduct(ctx, product.ID, force)
}

// Ping checks connectivity and credentials through the system status endpoint.
func (wc *WooCommerceConnector) Ping(ctx context.Context) (map[string]json.RawMessage, error) {
	return wc.store.SystemStatus(ctx)
}
