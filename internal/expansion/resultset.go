package expansion

import (
	"strings"

	"github.com/finopsys/invoice-engine/internal/observability"
)

// QueryResult is the tabular shape exchanged with the database layer and
// returned to callers. Rows are positional and parallel to Columns.
type QueryResult struct {
	Success bool            `json:"success"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
	Error   string          `json:"error,omitempty"`

	ItemsExpanded    bool   `json:"items_expanded"`
	OriginalRowCount int    `json:"original_row_count,omitempty"`
	ExpandedRowCount int    `json:"expanded_row_count,omitempty"`
	TotalLineItems   int    `json:"total_line_items,omitempty"`
	Source           string `json:"source,omitempty"`
}

// ResultSetExpander rewrites a query result so that every row is a single
// line item. The three packed item-array columns are removed and replaced
// by the per-item columns in ExpandedItemColumns.
type ResultSetExpander struct {
	rows   *RowExpander
	logger *observability.Logger
}

// NewResultSetExpander creates a ResultSetExpander. A nil logger disables
// logging.
func NewResultSetExpander(logger *observability.Logger) *ResultSetExpander {
	if logger == nil {
		logger = observability.Nop()
	}
	return &ResultSetExpander{rows: NewRowExpander(logger), logger: logger}
}

// ExpandResultSet expands every multi-item row of a result set into one row
// per line item.
//
// Results that are failed, empty, already expanded, or carry none of the
// item-array columns pass through unchanged. A row whose item fields parse
// to nothing still appears once in the output, as a placeholder line item,
// so its invoice-level columns stay visible. If no row in the set produces
// a single line item the original result is returned untouched.
func (e *ResultSetExpander) ExpandResultSet(result QueryResult) QueryResult {
	if !result.Success || len(result.Rows) == 0 || result.ItemsExpanded {
		return result
	}
	hasItemCols := false
	for _, col := range result.Columns {
		if IsItemArrayColumn(col) {
			hasItemCols = true
			break
		}
	}
	if !hasItemCols {
		return result
	}

	var records []ItemRecord
	lineItems := 0
	for _, row := range result.Rows {
		raw := rowToMap(result.Columns, row)
		items := e.rows.ExpandRow(raw)
		if len(items) > 0 {
			records = append(records, items...)
			lineItems += len(items)
			continue
		}
		invoice, desc, _, _ := splitItemFields(raw)
		records = append(records, ItemRecord{
			Index:       1,
			Description: strings.TrimSpace(ValueOf(desc).Text()),
			Invoice:     invoice,
		})
	}
	if lineItems == 0 {
		e.logger.Debug().
			Int("rows", len(result.Rows)).
			Msg("no line items parsed, returning result unchanged")
		return result
	}

	invoiceCols := make([]string, 0, len(result.Columns))
	for _, col := range result.Columns {
		if !IsItemArrayColumn(col) {
			invoiceCols = append(invoiceCols, col)
		}
	}
	outCols := make([]string, 0, len(invoiceCols)+len(ExpandedItemColumns))
	outCols = append(outCols, invoiceCols...)
	outCols = append(outCols, ExpandedItemColumns...)

	outRows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		out := make([]interface{}, 0, len(outCols))
		for _, col := range invoiceCols {
			out = append(out, rec.Invoice[col])
		}
		out = append(out,
			rec.Index,
			rec.Description,
			rec.UnitPrice,
			rec.Quantity,
			rec.LineTotal,
		)
		outRows = append(outRows, out)
	}

	e.logger.Info().
		Int("original_rows", len(result.Rows)).
		Int("expanded_rows", len(outRows)).
		Msg("expanded multi-item rows")

	// Placeholder rows count as line items too: every output row is one.
	return QueryResult{
		Success:          true,
		Columns:          outCols,
		Rows:             outRows,
		ItemsExpanded:    true,
		OriginalRowCount: len(result.Rows),
		ExpandedRowCount: len(outRows),
		TotalLineItems:   len(outRows),
		Source:           result.Source,
	}
}

// rowToMap zips a positional row with its column names. Extra positions on
// either side are ignored.
func rowToMap(columns []string, row []interface{}) RawRow {
	n := len(columns)
	if len(row) < n {
		n = len(row)
	}
	raw := make(RawRow, n)
	for i := 0; i < n; i++ {
		raw[columns[i]] = row[i]
	}
	return raw
}
