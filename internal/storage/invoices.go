// Package storage provides vendor-scoped access to the ai_invoice table
// over Postgres or SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/finopsys/invoice-engine/internal/expansion"
	"github.com/finopsys/invoice-engine/internal/observability"
)

// ErrNotFound indicates a missing record.
var ErrNotFound = errors.New("record not found")

// DB is the subset of *sql.DB the repository needs.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// InvoiceRepository reads invoice rows. Results come back in the tabular
// QueryResult shape so they can flow straight into row expansion.
type InvoiceRepository struct {
	db     DB
	driver string
	schema string
	logger *observability.Logger
}

// NewInvoiceRepository creates a repository. driver is "postgres" or
// "sqlite"; schema qualifies table names on Postgres and is ignored on
// SQLite. A nil logger disables logging.
func NewInvoiceRepository(db DB, driver, schema string, logger *observability.Logger) *InvoiceRepository {
	if logger == nil {
		logger = observability.Nop()
	}
	return &InvoiceRepository{db: db, driver: driver, schema: schema, logger: logger}
}

// ExecuteVendorQuery runs an already-validated retrieval query. Errors are
// folded into the result rather than returned, so a bad generated query
// degrades to a failed QueryResult the caller can report.
func (r *InvoiceRepository) ExecuteVendorQuery(ctx context.Context, sqlText string) expansion.QueryResult {
	rows, err := r.db.QueryContext(ctx, sqlText)
	if err != nil {
		r.logger.Warn().Err(err).Msg("vendor query failed")
		return expansion.QueryResult{Success: false, Error: err.Error(), Source: "database"}
	}
	defer rows.Close()
	return r.collectRows(rows)
}

// SearchProducts retrieves invoices whose packed descriptions mention any
// of the product terms. Unlike generated SQL this path is parameterized.
func (r *InvoiceRepository) SearchProducts(ctx context.Context, vendorID string, products []string, limit int) expansion.QueryResult {
	if len(products) == 0 {
		return expansion.QueryResult{Success: true, Columns: []string{}, Rows: [][]interface{}{}, Source: "database"}
	}
	if limit < 1 {
		limit = 100
	}

	args := make([]interface{}, 0, len(products)+2)
	args = append(args, vendorID)
	likes := make([]string, 0, len(products))
	for _, p := range products {
		likes = append(likes, fmt.Sprintf(
			"LOWER(CAST(items_description AS TEXT)) LIKE %s", r.placeholder(len(args)+1)))
		args = append(args, "%"+strings.ToLower(p)+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT case_id, bill_date, amount, balance_amount, items_description, items_unit_price, items_quantity, status
FROM %s
WHERE vendor_id = %s
  AND (%s)
ORDER BY bill_date DESC, case_id DESC
LIMIT %s`,
		r.table(), r.placeholder(1), strings.Join(likes, " OR "), r.placeholder(len(args)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Warn().Err(err).Strs("products", products).Msg("product search failed")
		return expansion.QueryResult{Success: false, Error: err.Error(), Source: "database"}
	}
	defer rows.Close()
	return r.collectRows(rows)
}

// InvoiceItems retrieves the packed item fields of a single invoice.
func (r *InvoiceRepository) InvoiceItems(ctx context.Context, vendorID, caseID string) (expansion.QueryResult, error) {
	query := fmt.Sprintf(`SELECT case_id, bill_date, amount, items_description, items_unit_price, items_quantity
FROM %s
WHERE vendor_id = %s AND case_id = %s`,
		r.table(), r.placeholder(1), r.placeholder(2))

	rows, err := r.db.QueryContext(ctx, query, vendorID, caseID)
	if err != nil {
		return expansion.QueryResult{Success: false, Error: err.Error()}, fmt.Errorf("invoice items: %w", err)
	}
	defer rows.Close()

	result := r.collectRows(rows)
	if result.Success && len(result.Rows) == 0 {
		return result, ErrNotFound
	}
	return result, nil
}

// RecentInvoices retrieves a vendor's newest invoices with item fields.
func (r *InvoiceRepository) RecentInvoices(ctx context.Context, vendorID string, limit int) expansion.QueryResult {
	if limit < 1 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT case_id, bill_id, bill_date, due_date, amount, balance_amount, paid, items_description, items_unit_price, items_quantity, status
FROM %s
WHERE vendor_id = %s
ORDER BY bill_date DESC, case_id DESC
LIMIT %s`,
		r.table(), r.placeholder(1), r.placeholder(2))

	rows, err := r.db.QueryContext(ctx, query, vendorID, limit)
	if err != nil {
		r.logger.Warn().Err(err).Msg("recent invoices query failed")
		return expansion.QueryResult{Success: false, Error: err.Error(), Source: "database"}
	}
	defer rows.Close()
	return r.collectRows(rows)
}

// Vendors lists the distinct vendor IDs present in the table.
func (r *InvoiceRepository) Vendors(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT vendor_id FROM %s ORDER BY vendor_id", r.table()))
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return vendors, nil
}

// collectRows drains a cursor into a QueryResult. Byte slices become
// strings so jsonb and text columns parse uniformly downstream.
func (r *InvoiceRepository) collectRows(rows *sql.Rows) expansion.QueryResult {
	cols, err := rows.Columns()
	if err != nil {
		return expansion.QueryResult{Success: false, Error: err.Error(), Source: "database"}
	}

	out := make([][]interface{}, 0, 64)
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return expansion.QueryResult{Success: false, Error: err.Error(), Source: "database"}
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return expansion.QueryResult{Success: false, Error: err.Error(), Source: "database"}
	}

	return expansion.QueryResult{
		Success: true,
		Columns: cols,
		Rows:    out,
		Source:  "database",
	}
}

// table returns the schema-qualified table name on Postgres.
func (r *InvoiceRepository) table() string {
	if r.driver == "postgres" && r.schema != "" && r.schema != "public" {
		return r.schema + ".ai_invoice"
	}
	return "ai_invoice"
}

// placeholder renders the n-th bind placeholder for the active driver.
func (r *InvoiceRepository) placeholder(n int) string {
	if r.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
