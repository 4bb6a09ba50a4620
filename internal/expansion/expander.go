package expansion

import (
	"strings"

	"github.com/finopsys/invoice-engine/internal/observability"
)

// Packed item-array columns on an invoice row. Matching is case-insensitive
// because upstream sources disagree on casing.
const (
	ColItemsDescription = "ITEMS_DESCRIPTION"
	ColItemsUnitPrice   = "ITEMS_UNIT_PRICE"
	ColItemsQuantity    = "ITEMS_QUANTITY"
)

// Columns appended to an expanded result set, in output order.
const (
	ColItemIndex       = "ITEM_INDEX"
	ColItemDescription = "ITEM_DESCRIPTION"
	ColItemUnitPrice   = "ITEM_UNIT_PRICE"
	ColItemQuantity    = "ITEM_QUANTITY"
	ColItemLineTotal   = "ITEM_LINE_TOTAL"
)

// ExpandedItemColumns lists the per-item columns appended by expansion.
var ExpandedItemColumns = []string{
	ColItemIndex,
	ColItemDescription,
	ColItemUnitPrice,
	ColItemQuantity,
	ColItemLineTotal,
}

// IsItemArrayColumn reports whether a column holds one of the packed
// item-array fields.
func IsItemArrayColumn(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case ColItemsDescription, ColItemsUnitPrice, ColItemsQuantity:
		return true
	}
	return false
}

// RawRow is a single result row keyed by column name.
type RawRow map[string]interface{}

// ItemRecord is one virtual line item produced by expanding an invoice row.
// Invoice holds the parent row's non-item columns and is shared between
// sibling records; it is never mutated after creation.
type ItemRecord struct {
	Index       int
	Description string
	UnitPrice   float64
	Quantity    float64
	LineTotal   float64
	Invoice     RawRow
}

// RowExpander turns one packed invoice row into its line-item records.
type RowExpander struct {
	parser *FieldParser
	logger *observability.Logger
}

// NewRowExpander creates a RowExpander. A nil logger disables logging.
func NewRowExpander(logger *observability.Logger) *RowExpander {
	if logger == nil {
		logger = observability.Nop()
	}
	return &RowExpander{parser: NewFieldParser(logger), logger: logger}
}

// ExpandRow expands a raw invoice row into one record per line item. The
// item count is the longest of the three parsed arrays; shorter arrays are
// padded with "" or 0.0 so a sloppy vendor encoding still yields a record
// per position. ITEM_LINE_TOTAL is always recomputed as price times
// quantity. Rows with no item content return nil.
func (e *RowExpander) ExpandRow(row RawRow) []ItemRecord {
	invoice, descVal, priceVal, qtyVal := splitItemFields(row)

	descs := e.parser.ParseTextField(descVal)
	prices := e.parser.ParseNumericField(priceVal)
	qtys := e.parser.ParseNumericField(qtyVal)

	maxItems := len(descs)
	if len(prices) > maxItems {
		maxItems = len(prices)
	}
	if len(qtys) > maxItems {
		maxItems = len(qtys)
	}
	if maxItems == 0 {
		return nil
	}

	if len(descs) != len(prices) || len(prices) != len(qtys) {
		e.logger.Debug().
			Int("descriptions", len(descs)).
			Int("prices", len(prices)).
			Int("quantities", len(qtys)).
			Msg("item array lengths differ, padding to longest")
	}

	items := make([]ItemRecord, 0, maxItems)
	for i := 0; i < maxItems; i++ {
		rec := ItemRecord{Index: i + 1, Invoice: invoice}
		if i < len(descs) {
			rec.Description = descs[i]
		}
		if i < len(prices) {
			rec.UnitPrice = prices[i]
		}
		if i < len(qtys) {
			rec.Quantity = qtys[i]
		}
		rec.LineTotal = rec.UnitPrice * rec.Quantity
		items = append(items, rec)
	}
	return items
}

// splitItemFields separates a raw row into its invoice-level columns and
// the three packed item-array values.
func splitItemFields(row RawRow) (invoice RawRow, desc, price, qty interface{}) {
	invoice = make(RawRow, len(row))
	for k, v := range row {
		switch strings.ToUpper(strings.TrimSpace(k)) {
		case ColItemsDescription:
			desc = v
		case ColItemsUnitPrice:
			price = v
		case ColItemsQuantity:
			qty = v
		default:
			invoice[k] = v
		}
	}
	return invoice, desc, price, qty
}
