package models

import "time"

// SyncEventType names what a queued sync event asks the worker to do.
type SyncEventType string

const (
	EventProductUpsert SyncEventType = "product.upsert"
	EventProductDelete SyncEventType = "product.delete"
)

// SyncEvent is one message on the sync topic. Upserts carry a Product;
// deletes name the target by ProductID or SKU.
type SyncEvent struct {
	Type      SyncEventType `json:"type"`
	Product   *Product      `json:"product,omitempty"`
	ProductID int64         `json:"product_id,omitempty"`
	SKU       string        `json:"sku,omitempty"`
	Force     bool          `json:"force,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Key is the partition key: the SKU when there is one, so events for the
// same product stay ordered.
func (e SyncEvent) Key() string {
	if e.Product != nil && e.Product.SKU != "" {
		return e.Product.SKU
	}
	return e.SKU
}
