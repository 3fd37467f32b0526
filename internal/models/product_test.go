package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductKeepsUnknownAttributes(t *testing.T) {
	input := `{
		"id": 42,
		"name": "Hoodie",
		"sku": "HOOD-1",
		"regular_price": "45.00",
		"stock_quantity": 7,
		"manage_stock": true,
		"categories": [{"id": 9, "name": "Clothing"}],
		"meta_data": [{"key": "color", "value": "blue"}],
		"tax_class": "reduced-rate"
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(input), &p))

	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "HOOD-1", p.SKU)
	require.NotNil(t, p.StockQuantity)
	assert.Equal(t, 7, *p.StockQuantity)
	assert.Equal(t, "Clothing", p.Categories[0].Name)
	assert.Len(t, p.Extra, 2)
	assert.JSONEq(t, `"reduced-rate"`, string(p.Extra["tax_class"]))

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "reduced-rate", back["tax_class"])
	assert.Equal(t, "45.00", back["regular_price"])
	assert.Contains(t, back, "meta_data")
}

func TestProductDeclaredFieldsWinOverExtra(t *testing.T) {
	p := Product{
		Name: "Cap",
		SKU:  "CAP-1",
		Extra: map[string]json.RawMessage{
			"sku":        json.RawMessage(`"OTHER"`),
			"sale_price": json.RawMessage(`"1.00"`),
			"weight":     json.RawMessage(`"0.2"`),
		},
	}

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "CAP-1", back["sku"])
	assert.NotContains(t, back, "sale_price")
	assert.Equal(t, "0.2", back["weight"])
}

func TestProductOmitsUnsetOptionalFields(t *testing.T) {
	out, err := json.Marshal(&Product{Name: "X", SKU: "S1", RegularPrice: "10.00"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"X","sku":"S1","regular_price":"10.00"}`, string(out))
}

func TestProductClone(t *testing.T) {
	qty := 3
	p := &Product{
		Name:          "X",
		SKU:           "S1",
		StockQuantity: &qty,
		Images:        []Image{{Src: "a.png"}},
		Extra:         map[string]json.RawMessage{"weight": json.RawMessage(`"1"`)},
	}

	c := p.Clone()
	*c.StockQuantity = 9
	c.Images[0].Src = "b.png"
	c.Extra["weight"] = json.RawMessage(`"2"`)

	assert.Equal(t, 3, *p.StockQuantity)
	assert.Equal(t, "a.png", p.Images[0].Src)
	assert.Equal(t, `"1"`, string(p.Extra["weight"]))
	assert.Nil(t, (*Product)(nil).Clone())
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]SyncOutcome{
		{Success: true, SKU: "A"},
		{Success: false, SKU: "B", Error: "boom"},
		{Success: true, SKU: "C"},
	})
	assert.Equal(t, SyncSummary{Total: 3, Succeeded: 2, Failed: 1, FailedSKUs: []string{"B"}}, summary)
}

func TestNewSyncRun(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := NewSyncRun(SyncSourceCLI, start, start.Add(time.Second), []SyncOutcome{
		{Success: true, SKU: "A", Product: &Product{ID: 7}},
		{Success: false, SKU: "B", Error: "boom"},
	})

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Failed)
	require.Len(t, run.Results, 2)
	assert.Equal(t, int64(7), run.Results[0].ProductID)
	assert.Equal(t, 1, run.Results[1].Position)
	assert.Equal(t, run.ID, run.Results[1].RunID)
}
