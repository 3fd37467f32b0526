package models

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Product is a WooCommerce catalog item as sent to and returned by the
// products endpoints. Attributes the store returns that have no field here
// are kept in Extra and written back unchanged.
type Product struct {
	ID                int64      `json:"id,omitempty"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug,omitempty"`
	Type              string     `json:"type,omitempty"`
	Status            string     `json:"status,omitempty"`
	SKU               string     `json:"sku"`
	Description       string     `json:"description,omitempty"`
	ShortDescription  string     `json:"short_description,omitempty"`
	Price             string     `json:"price,omitempty"`
	RegularPrice      string     `json:"regular_price,omitempty"`
	SalePrice         string     `json:"sale_price,omitempty"`
	ManageStock       *bool      `json:"manage_stock,omitempty"`
	StockQuantity     *int       `json:"stock_quantity,omitempty"`
	StockStatus       string     `json:"stock_status,omitempty"`
	BackordersAllowed *bool      `json:"backorders_allowed,omitempty"`
	InStock           *bool      `json:"in_stock,omitempty"`
	Categories        []Category `json:"categories,omitempty"`
	Images            []Image    `json:"images,omitempty"`
	DateCreated       string     `json:"date_created,omitempty"`
	DateModified      string     `json:"date_modified,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type Category struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type Image struct {
	ID   int64  `json:"id,omitempty"`
	Src  string `json:"src,omitempty"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// productFields has the same declared fields as Product without its JSON methods.
type productFields Product

var knownProductKeys = jsonKeys(reflect.TypeOf(Product{}))

func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var fields productFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var extra map[string]json.RawMessage
	for key, value := range raw {
		if _, ok := knownProductKeys[key]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[key] = value
	}

	*p = Product(fields)
	p.Extra = extra
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(productFields(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range p.Extra {
		// Declared fields always win, even when omitted as empty.
		if _, ok := knownProductKeys[key]; ok {
			continue
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}

// Clone returns a deep copy of p that is safe to hand to another goroutine.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.ManageStock != nil {
		v := *p.ManageStock
		c.ManageStock = &v
	}
	if p.StockQuantity != nil {
		v := *p.StockQuantity
		c.StockQuantity = &v
	}
	if p.BackordersAllowed != nil {
		v := *p.BackordersAllowed
		c.BackordersAllowed = &v
	}
	if p.InStock != nil {
		v := *p.InStock
		c.InStock = &v
	}
	c.Categories = append([]Category(nil), p.Categories...)
	c.Images = append([]Image(nil), p.Images...)
	if p.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

type StockStatus string

const (
	StockStatusInStock     StockStatus = "instock"
	StockStatusOutOfStock  StockStatus = "outofstock"
	StockStatusOnBackorder StockStatus = "onbackorder"
)
