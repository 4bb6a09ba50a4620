package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finopsys/invoice-engine/internal/expansion"
	"github.com/finopsys/invoice-engine/internal/observability"
)

// Fixed responses for empty outcomes. Callers and tests match on these.
const (
	msgNoItemInfo     = "No detailed item information found in the query results."
	msgExpansionError = "Unable to process item details for your query."
	msgQueryFailed    = "Unable to retrieve item details."
)

// ItemCount is a description with its occurrence count.
type ItemCount struct {
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// ItemStats summarizes an expanded result set.
type ItemStats struct {
	TotalLineItems   int         `json:"total_line_items"`
	UniqueInvoices   int         `json:"unique_invoices"`
	TotalValue       float64     `json:"total_value"`
	AverageUnitPrice float64     `json:"average_unit_price"`
	AverageQuantity  float64     `json:"average_quantity"`
	MostCommon       []ItemCount `json:"most_common,omitempty"`
}

// ResponseFormatter turns expanded result sets into human-readable
// summaries. Results that arrive unexpanded are expanded first.
type ResponseFormatter struct {
	expander *expansion.ResultSetExpander
	logger   *observability.Logger
}

// NewResponseFormatter creates a ResponseFormatter. A nil logger disables
// logging.
func NewResponseFormatter(logger *observability.Logger) *ResponseFormatter {
	if logger == nil {
		logger = observability.Nop()
	}
	return &ResponseFormatter{
		expander: expansion.NewResultSetExpander(logger),
		logger:   logger,
	}
}

// ItemStatistics computes summary statistics over a result set. Failed or
// unexpandable results yield zero stats.
func (f *ResponseFormatter) ItemStatistics(result expansion.QueryResult) ItemStats {
	expanded := f.ensureExpanded(result)
	if !expanded.ItemsExpanded {
		return ItemStats{}
	}

	descIdx := columnIndex(expanded.Columns, expansion.ColItemDescription)
	priceIdx := columnIndex(expanded.Columns, expansion.ColItemUnitPrice)
	qtyIdx := columnIndex(expanded.Columns, expansion.ColItemQuantity)
	totalIdx := columnIndex(expanded.Columns, expansion.ColItemLineTotal)
	caseIdx := columnIndex(expanded.Columns, "CASE_ID")

	stats := ItemStats{TotalLineItems: len(expanded.Rows)}
	invoices := make(map[string]struct{})
	counts := make(map[string]int)
	var priceSum, qtySum float64

	for _, row := range expanded.Rows {
		if desc := cellString(row, descIdx); desc != "" {
			counts[desc]++
		}
		priceSum += cellFloat(row, priceIdx)
		qtySum += cellFloat(row, qtyIdx)
		stats.TotalValue += cellFloat(row, totalIdx)
		if id := cellString(row, caseIdx); id != "" {
			invoices[id] = struct{}{}
		}
	}

	stats.UniqueInvoices = len(invoices)
	if stats.TotalLineItems > 0 {
		stats.AverageUnitPrice = priceSum / float64(stats.TotalLineItems)
		stats.AverageQuantity = qtySum / float64(stats.TotalLineItems)
	}
	stats.MostCommon = topCounts(counts, 5)
	return stats
}

// FormatItemResponse summarizes an item-level result set.
func (f *ResponseFormatter) FormatItemResponse(result expansion.QueryResult, question string) string {
	if !result.Success {
		return msgQueryFailed
	}
	expanded := f.ensureExpanded(result)
	if !expanded.ItemsExpanded {
		return msgNoItemInfo
	}

	stats := f.ItemStatistics(expanded)
	lines := []string{
		"Item summary:",
		fmt.Sprintf("- %d line items across %d invoices", stats.TotalLineItems, stats.UniqueInvoices),
	}
	if stats.TotalValue > 0 {
		lines = append(lines, fmt.Sprintf("- Total item value: $%.2f", stats.TotalValue))
	}
	if stats.AverageUnitPrice > 0 {
		lines = append(lines, fmt.Sprintf("- Average unit price: $%.2f", stats.AverageUnitPrice))
	}
	if len(stats.MostCommon) > 0 {
		lines = append(lines, "Most common items:")
		top := stats.MostCommon
		if len(top) > 3 {
			top = top[:3]
		}
		for _, ic := range top {
			lines = append(lines, fmt.Sprintf("- %s (%d)", ic.Description, ic.Count))
		}
	}
	lines = append(lines, "Each row below is one line item from an invoice.")
	return strings.Join(lines, "\n")
}

// FormatProductResponse summarizes the line items matching the extracted
// product terms.
func (f *ResponseFormatter) FormatProductResponse(result expansion.QueryResult, question string, products []string) string {
	noMatch := fmt.Sprintf("No information found for the requested product(s): %s",
		strings.Join(products, ", "))

	if !result.Success || len(result.Rows) == 0 {
		return noMatch
	}
	expanded := f.ensureExpanded(result)
	if !expanded.ItemsExpanded {
		return msgExpansionError
	}

	descIdx := columnIndex(expanded.Columns, expansion.ColItemDescription)
	priceIdx := columnIndex(expanded.Columns, expansion.ColItemUnitPrice)
	qtyIdx := columnIndex(expanded.Columns, expansion.ColItemQuantity)
	totalIdx := columnIndex(expanded.Columns, expansion.ColItemLineTotal)
	caseIdx := columnIndex(expanded.Columns, "CASE_ID")

	type group struct {
		quantity float64
		total    float64
		priceSum float64
		count    int
		invoices map[string]struct{}
	}
	groups := make(map[string]*group)
	var order []string
	var matched, totalValue, totalQty float64

	for _, row := range expanded.Rows {
		desc := cellString(row, descIdx)
		if desc == "" || !matchesAny(desc, products) {
			continue
		}
		g, ok := groups[desc]
		if !ok {
			g = &group{invoices: make(map[string]struct{})}
			groups[desc] = g
			order = append(order, desc)
		}
		g.quantity += cellFloat(row, qtyIdx)
		g.total += cellFloat(row, totalIdx)
		g.priceSum += cellFloat(row, priceIdx)
		g.count++
		if id := cellString(row, caseIdx); id != "" {
			g.invoices[id] = struct{}{}
		}
		matched++
		totalValue += cellFloat(row, totalIdx)
		totalQty += cellFloat(row, qtyIdx)
	}

	if matched == 0 {
		return noMatch
	}

	lines := []string{
		"Product analysis results:",
		fmt.Sprintf("- Found %.0f line items matching your query", matched),
		fmt.Sprintf("- Total value: $%.2f", totalValue),
		fmt.Sprintf("- Total quantity: %.0f", totalQty),
	}
	for _, desc := range order {
		g := groups[desc]
		lines = append(lines, fmt.Sprintf("- %s: quantity %.0f, total $%.2f, average price $%.2f, %d invoice(s)",
			desc, g.quantity, g.total, g.priceSum/float64(g.count), len(g.invoices)))
	}
	return strings.Join(lines, "\n")
}

func (f *ResponseFormatter) ensureExpanded(result expansion.QueryResult) expansion.QueryResult {
	if result.ItemsExpanded {
		return result
	}
	return f.expander.ExpandResultSet(result)
}

// matchesAny reports whether the description mentions any product term,
// case-insensitively.
func matchesAny(description string, products []string) bool {
	d := strings.ToLower(description)
	for _, p := range products {
		if strings.Contains(d, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// columnIndex finds a column by case-insensitive name, -1 when absent.
func columnIndex(columns []string, name string) int {
	for i, col := range columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

func cellString(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(expansion.ValueOf(row[idx]).Text())
}

func cellFloat(row []interface{}, idx int) float64 {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	switch t := row[idx].(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		vals := expansion.NewFieldParser(nil).ParseNumericField(t)
		if len(vals) > 0 {
			return vals[0]
		}
	}
	return 0
}

// topCounts returns the n most frequent descriptions, ties broken
// alphabetically for determinism.
func topCounts(counts map[string]int, n int) []ItemCount {
	out := make([]ItemCount, 0, len(counts))
	for desc, c := range counts {
		out = append(out, ItemCount{Description: desc, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Description < out[j].Description
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
