package syncer

import (
	"context"
	"time"

	"woosync/internal/models"
)

// ProductStore is the subset of the WooCommerce client the upserter needs.
type ProductStore interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, product *models.Product) (*models.Product, error)
}

// Upserter creates or updates a single product keyed by SKU.
type Upserter struct {
	store    ProductStore
	observer Observer
}

func NewUpserter(store ProductStore, observer Observer) *Upserter {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Upserter{store: store, observer: observer}
}

// Sync validates p, looks it up by SKU and updates the match or creates a new
// product. If the store returns several products for the SKU the first one is
// updated. Errors are returned as is; nothing is retried.
func (u *Upserter) Sync(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := Validate(p); err != nil {
		sku := ""
		if p != nil {
			sku = p.SKU
		}
		u.observer.ErrorOccurred(OpValidate, sku, err)
		return nil, err
	}

	existing, err := u.call(OpLookup, p.SKU, func() (*models.Product, error) {
		return u.store.FindBySKU(ctx, p.SKU)
	})
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.ID != 0 {
		return u.call(OpUpdate, p.SKU, func() (*models.Product, error) {
			return u.store.UpdateProduct(ctx, existing.ID, p)
		})
	}

	return u.call(OpCreate, p.SKU, func() (*models.Product, error) {
		return u.store.CreateProduct(ctx, p)
	})
}

func (u *Upserter) call(op Operation, sku string, fn func() (*models.Product, error)) (*models.Product, error) {
	u.observer.RequestStarted(op, sku)
	start := time.Now()

	product, err := fn()
	if err != nil {
		u.observer.ErrorOccurred(op, sku, err)
		return nil, err
	}

	var id int64
	if product != nil {
		id = product.ID
	}
	u.observer.ResponseReceived(op, sku, id, time.Since(start))
	return product, nil
}
