package syncer

import (
	"regexp"
	"strconv"
	"strings"

	"woosync/internal/models"
)

// WooCommerce takes prices as decimal strings such as "19.99".
var decimalPrice = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Validate checks the fields the store needs to match and write a product.
func Validate(p *models.Product) error {
	if p == nil {
		return &ValidationError{Field: "product", Reason: "is required"}
	}
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{SKU: p.SKU, Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(p.SKU) == "" {
		return &ValidationError{Field: "sku", Reason: "is required"}
	}

	prices := []struct {
		field string
		value string
	}{
		{"regular_price", p.RegularPrice},
		{"sale_price", p.SalePrice},
		{"price", p.Price},
	}
	for _, price := range prices {
		if price.value != "" && !decimalPrice.MatchString(price.value) {
			return &ValidationError{SKU: p.SKU, Field: price.field, Reason: "must be a decimal string, got " + strconv.Quote(price.value)}
		}
	}
	return nil
}
