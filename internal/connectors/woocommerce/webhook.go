package woocommerce

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"woosync/internal/models"
)

// ErrInvalidSignature is returned when a webhook body does not match its
// X-WC-Webhook-Signature header.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrInvalidPayload is returned when a webhook body is not a product.
var ErrInvalidPayload = errors.New("invalid webhook payload")

const (
	TopicProductCreated  = "product.created"
	TopicProductUpdated  = "product.updated"
	TopicProductRestored = "product.restored"
	TopicProductDeleted  = "product.deleted"
)

// WebhookResult says what a webhook delivery caused.
type WebhookResult struct {
	Topic   string          `json:"topic"`
	Action  string          `json:"action"`
	Product *models.Product `json:"product,omitempty"`
}

// VerifySignature checks the base64 HMAC-SHA256 of payload against signature.
// An empty secret disables the check.
func VerifySignature(secret string, payload []byte, signature string) error {
	if secret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

// HandleWebhook mirrors a product webhook from a source store into this
// store. Product bodies are upserted by SKU; deletions are matched by SKU and
// moved to the trash. Other topics are acknowledged and ignored.
func (wc *WooCommerceConnector) HandleWebhook(ctx context.Context, topic string, payload []byte) (*WebhookResult, error) {
	wc.logger.Debug("Received WooCommerce webhook: %s", topic)

	result := &WebhookResult{Topic: topic, Action: "ignored"}

	switch topic {
	case TopicProductCreated, TopicProductUpdated, TopicProductRestored:
		var product models.Product
		if err := json.Unmarshal(payload, &product); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		mirrored, err := wc.mirror(ctx, &product)
		if err != nil {
			return nil, err
		}
		synced, err := wc.SyncProduct(ctx, mirrored)
		if err != nil {
			return nil, err
		}
		result.Action = "upserted"
		result.Product = synced

	case TopicProductDeleted:
		var deleted struct {
			ID  int64  `json:"id"`
			SKU string `json:"sku"`
		}
		if err := json.Unmarshal(payload, &deleted); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if deleted.SKU == "" {
			wc.logger.Info("Ignoring product.deleted webhook for source id %d without sku", deleted.ID)
			return result, nil
		}
		product, err := wc.DeleteBySKU(ctx, deleted.SKU, false)
		if errors.Is(err, ErrNotFound) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		result.Action = "deleted"
		result.Product = product

	default:
		wc.logger.Debug("Ignoring webhook topic %q", topic)
	}

	return result, nil
}

// Attributes whose values only make sense in the source store: links, ids of
// related objects and read-only computed fields.
var sourceOnlyKeys = []string{
	"_links",
	"permalink",
	"date_created_gmt",
	"date_modified_gmt",
	"date_on_sale_from_gmt",
	"date_on_sale_to_gmt",
	"parent_id",
	"variations",
	"grouped_products",
	"related_ids",
	"upsell_ids",
	"cross_sell_ids",
	"tags",
	"shipping_class_id",
	"price_html",
	"on_sale",
	"purchasable",
	"total_sales",
	"average_rating",
	"rating_count",
	"backordered",
	"has_options",
}

// Lists of objects that keep their content but not their source ids.
var sourceIDLists = []string{"meta_data", "attributes", "downloads", "default_attributes"}

// mirror strips everything in a source store product that refers to the
// source store. Images are re-uploaded from src. Categories are matched by
// slug in this store and dropped when there is no match.
func (wc *WooCommerceConnector) mirror(ctx context.Context, p *models.Product) (*models.Product, error) {
	out := p.Clone()
	out.ID = 0
	out.DateModified = ""

	images := out.Images[:0]
	for _, img := range out.Images {
		if img.Src == "" {
			continue
		}
		img.ID = 0
		images = append(images, img)
	}
	out.Images = images

	categories := make([]models.Category, 0, len(out.Categories))
	for _, c := range out.Categories {
		if c.Slug == "" {
			wc.logger.Info("Dropping category %q of %s without slug", c.Name, out.SKU)
			continue
		}
		found, err := wc.store.FindCategoryBySlug(ctx, c.Slug)
		if err != nil {
			return nil, err
		}
		if found == nil {
			wc.logger.Info("Dropping category %q of %s: not in this store", c.Slug, out.SKU)
			continue
		}
		categories = append(categories, models.Category{ID: found.ID})
	}
	out.Categories = categories

	for _, key := range sourceOnlyKeys {
		delete(out.Extra, key)
	}
	for _, key := range sourceIDLists {
		raw, ok := out.Extra[key]
		if !ok {
			continue
		}
		stripped, err := withoutIDs(raw)
		if err != nil {
			delete(out.Extra, key)
			continue
		}
		out.Extra[key] = stripped
	}

	return out, nil
}

func withoutIDs(raw json.RawMessage) (json.RawMessage, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	for _, item := range items {
		delete(item, "id")
	}
	return json.Marshal(items)
}
