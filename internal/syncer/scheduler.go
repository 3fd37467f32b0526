package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"woosync/internal/models"
)

const (
	DefaultConcurrency = 3
	DefaultDelay       = time.Second
)

// ItemSyncer syncs one product. *Upserter implements it.
type ItemSyncer interface {
	Sync(ctx context.Context, p *models.Product) (*models.Product, error)
}

// Pacer decides how long to wait between slices. Pause is called after
// slice index completed and never after the last one.
type Pacer interface {
	Pause(ctx context.Context, completed int) error
}

// FixedPacer waits the same delay between every pair of slices.
type FixedPacer struct {
	Delay time.Duration
}

func (p FixedPacer) Pause(ctx context.Context, _ int) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Options struct {
	// Concurrency is the slice size; every record in a slice is synced at once.
	Concurrency int
	// Delay between slices, used when Pacer is nil.
	Delay time.Duration
	Pacer Pacer
}

func DefaultOptions() Options {
	return Options{Concurrency: DefaultConcurrency, Delay: DefaultDelay}
}

// Scheduler syncs a list of products in fixed-size slices with a pause
// between slices.
type Scheduler struct {
	syncer   ItemSyncer
	opts     Options
	observer Observer
}

func NewScheduler(syncer ItemSyncer, opts Options, observer Observer) *Scheduler {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Pacer == nil {
		opts.Pacer = FixedPacer{Delay: opts.Delay}
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Scheduler{syncer: syncer, opts: opts, observer: observer}
}

func (s *Scheduler) Options() Options {
	return s.opts
}

// SyncAll returns exactly one outcome per product, outcomes[i] belonging to
// products[i]. A failing record never stops the others. ctx is checked
// between slices: once it is done the remaining records are not attempted and
// get a failed outcome carrying ctx.Err().
func (s *Scheduler) SyncAll(ctx context.Context, products []*models.Product) []models.SyncOutcome {
	outcomes := make([]models.SyncOutcome, len(products))
	size := s.opts.Concurrency

	for index, start := 0, 0; start < len(products); index, start = index+1, start+size {
		if err := ctx.Err(); err != nil {
			abandon(outcomes, products, start, err)
			break
		}

		end := start + size
		if end > len(products) {
			end = len(products)
		}

		s.observer.SliceStarted(index, end-start)

		// Failures are outcomes, so there is no error to collect here.
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				outcomes[i] = s.syncOne(ctx, products[i])
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, o := range outcomes[start:end] {
			if o.Success {
				succeeded++
			}
		}
		s.observer.SliceFinished(index, succeeded, end-start-succeeded)

		if end < len(products) {
			if err := s.opts.Pacer.Pause(ctx, index); err != nil {
				abandon(outcomes, products, end, err)
				break
			}
		}
	}

	return outcomes
}

func (s *Scheduler) syncOne(ctx context.Context, p *models.Product) (outcome models.SyncOutcome) {
	sku := skuOf(p)
	defer func() {
		if r := recover(); r != nil {
			outcome = models.SyncOutcome{SKU: sku, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	result, err := s.syncer.Sync(ctx, p)
	if err != nil {
		return models.SyncOutcome{SKU: sku, Error: err.Error()}
	}
	return models.SyncOutcome{Success: true, SKU: sku, Product: result}
}

func abandon(outcomes []models.SyncOutcome, products []*models.Product, from int, err error) {
	for i := from; i < len(products); i++ {
		outcomes[i] = models.SyncOutcome{SKU: skuOf(products[i]), Error: fmt.Sprintf("not attempted: %v", err)}
	}
}

func skuOf(p *models.Product) string {
	if p == nil {
		return ""
	}
	return p.SKU
}
