package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRowJSONArrays(t *testing.T) {
	e := NewRowExpander(nil)

	row := RawRow{
		"CASE_ID":           "CASE203",
		"AMOUNT":            35222.5,
		"ITEMS_DESCRIPTION": `["Laptop Pro 15-inch", "Wireless Mouse"]`,
		"ITEMS_UNIT_PRICE":  "[4463.3, 2581.2]",
		"ITEMS_QUANTITY":    "[5, 5]",
	}

	items := e.ExpandRow(row)
	require.Len(t, items, 2)

	assert.Equal(t, 1, items[0].Index)
	assert.Equal(t, "Laptop Pro 15-inch", items[0].Description)
	assert.Equal(t, 4463.3, items[0].UnitPrice)
	assert.Equal(t, 5.0, items[0].Quantity)
	assert.InDelta(t, 22316.5, items[0].LineTotal, 0.0001)

	assert.Equal(t, 2, items[1].Index)
	assert.Equal(t, "Wireless Mouse", items[1].Description)
	assert.Equal(t, 2581.2, items[1].UnitPrice)
	assert.Equal(t, 5.0, items[1].Quantity)
	assert.InDelta(t, 12906.0, items[1].LineTotal, 0.0001)

	// Invoice-level columns carried, item-array columns removed.
	assert.Equal(t, "CASE203", items[0].Invoice["CASE_ID"])
	assert.Equal(t, 35222.5, items[0].Invoice["AMOUNT"])
	assert.NotContains(t, items[0].Invoice, "ITEMS_DESCRIPTION")
}

func TestExpandRowDelimitedStrings(t *testing.T) {
	e := NewRowExpander(nil)

	row := RawRow{
		"CASE_ID":           "CASE101",
		"ITEMS_DESCRIPTION": "Item A, Item B, Item C",
		"ITEMS_UNIT_PRICE":  "25.50, 15.00, 8.99",
		"ITEMS_QUANTITY":    "2, 5, 10",
	}

	items := e.ExpandRow(row)
	require.Len(t, items, 3)

	assert.InDelta(t, 51.0, items[0].LineTotal, 0.0001)
	assert.InDelta(t, 75.0, items[1].LineTotal, 0.0001)
	assert.InDelta(t, 89.9, items[2].LineTotal, 0.0001)
}

func TestExpandRowMismatchedLengths(t *testing.T) {
	e := NewRowExpander(nil)

	row := RawRow{
		"ITEMS_DESCRIPTION": "Item A, Item B",
		"ITEMS_UNIT_PRICE":  "10.00",
		"ITEMS_QUANTITY":    "1, 2, 3",
	}

	items := e.ExpandRow(row)
	require.Len(t, items, 3)

	assert.Equal(t, "Item A", items[0].Description)
	assert.Equal(t, 10.0, items[0].UnitPrice)
	assert.Equal(t, 1.0, items[0].Quantity)
	assert.Equal(t, 10.0, items[0].LineTotal)

	assert.Equal(t, "Item B", items[1].Description)
	assert.Equal(t, 0.0, items[1].UnitPrice)
	assert.Equal(t, 2.0, items[1].Quantity)
	assert.Equal(t, 0.0, items[1].LineTotal)

	assert.Equal(t, "", items[2].Description)
	assert.Equal(t, 0.0, items[2].UnitPrice)
	assert.Equal(t, 3.0, items[2].Quantity)
	assert.Equal(t, 0.0, items[2].LineTotal)
}

func TestExpandRowLineTotalAlwaysRecomputed(t *testing.T) {
	e := NewRowExpander(nil)

	// A stale total column on the row must not leak into line totals.
	row := RawRow{
		"ITEM_LINE_TOTAL":   999.0,
		"ITEMS_DESCRIPTION": "Item A",
		"ITEMS_UNIT_PRICE":  "3",
		"ITEMS_QUANTITY":    "4",
	}

	items := e.ExpandRow(row)
	require.Len(t, items, 1)
	assert.Equal(t, 12.0, items[0].LineTotal)
}

func TestExpandRowCaseInsensitiveColumns(t *testing.T) {
	e := NewRowExpander(nil)

	row := RawRow{
		"case_id":           "CASE001",
		"items_description": `["Item A"]`,
		"items_unit_price":  "[2.5]",
		"items_quantity":    "[4]",
	}

	items := e.ExpandRow(row)
	require.Len(t, items, 1)
	assert.Equal(t, "Item A", items[0].Description)
	assert.Equal(t, 10.0, items[0].LineTotal)
	assert.Equal(t, "CASE001", items[0].Invoice["case_id"])
}

func TestExpandRowEmpty(t *testing.T) {
	e := NewRowExpander(nil)

	tests := []struct {
		name string
		row  RawRow
	}{
		{"nil fields", RawRow{"CASE_ID": "C1", "ITEMS_DESCRIPTION": nil, "ITEMS_UNIT_PRICE": nil, "ITEMS_QUANTITY": nil}},
		{"empty strings", RawRow{"ITEMS_DESCRIPTION": "", "ITEMS_UNIT_PRICE": "", "ITEMS_QUANTITY": ""}},
		{"empty json arrays", RawRow{"ITEMS_DESCRIPTION": "[]", "ITEMS_UNIT_PRICE": "[]", "ITEMS_QUANTITY": "[]"}},
		{"missing columns", RawRow{"CASE_ID": "C1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, e.ExpandRow(tt.row))
		})
	}
}

func TestExpandRowEncodingRoundTrip(t *testing.T) {
	e := NewRowExpander(nil)

	// The same logical items in three encodings expand identically.
	encodings := []RawRow{
		{
			"ITEMS_DESCRIPTION": `["Item A", "Item B"]`,
			"ITEMS_UNIT_PRICE":  "[25.5, 15]",
			"ITEMS_QUANTITY":    "[2, 5]",
		},
		{
			"ITEMS_DESCRIPTION": "Item A, Item B",
			"ITEMS_UNIT_PRICE":  "25.5, 15",
			"ITEMS_QUANTITY":    "2, 5",
		},
		{
			"ITEMS_DESCRIPTION": []interface{}{"Item A", "Item B"},
			"ITEMS_UNIT_PRICE":  []interface{}{25.5, 15.0},
			"ITEMS_QUANTITY":    []interface{}{2.0, 5.0},
		},
	}

	want := e.ExpandRow(encodings[0])
	for i, row := range encodings[1:] {
		assert.Equal(t, want, e.ExpandRow(row), "encoding %d", i+1)
	}
}
