package storage

import (
	"context"
	"fmt"
)

// createTableDDL works on both SQLite and Postgres. The packed item
// fields are stored as TEXT holding JSON array literals; the parser
// accepts delimited strings in the same columns for legacy rows.
const createTableDDL = `CREATE TABLE IF NOT EXISTS %s (
	case_id         TEXT PRIMARY KEY,
	bill_id         TEXT,
	customer_id     TEXT,
	vendor_id       TEXT NOT NULL,
	bill_date       DATE,
	due_date        DATE,
	amount          NUMERIC(18,2),
	balance_amount  NUMERIC(18,2),
	paid            NUMERIC(18,2),
	total_tax       NUMERIC(18,2),
	subtotal        NUMERIC(18,2),
	items_description TEXT,
	items_unit_price  TEXT,
	items_quantity    TEXT,
	status          TEXT,
	decline_reason  TEXT,
	department      TEXT
)`

var indexDDL = []string{
	"CREATE INDEX IF NOT EXISTS idx_ai_invoice_vendor ON %s (vendor_id)",
	"CREATE INDEX IF NOT EXISTS idx_ai_invoice_bill_date ON %s (bill_date)",
}

// EnsureSchema creates the ai_invoice table and its indexes if missing.
func (r *InvoiceRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(createTableDDL, r.table())); err != nil {
		return fmt.Errorf("create ai_invoice: %w", err)
	}
	for _, ddl := range indexDDL {
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf(ddl, r.table())); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	r.logger.Debug().Str("table", r.table()).Msg("schema ensured")
	return nil
}

// sampleInvoice is one development seed row.
type sampleInvoice struct {
	caseID, billID, customerID, vendorID string
	billDate, dueDate                    string
	amount, balance, paid                float64
	descriptions, prices, quantities     string
	status, department                   string
}

// sampleInvoices exercise every item encoding the parser handles: JSON
// arrays, comma and semicolon delimited strings, and a single-item row.
var sampleInvoices = []sampleInvoice{
	{
		caseID: "CASE201", billID: "BILL201", customerID: "CUST001", vendorID: "VENDOR123",
		billDate: "2025-05-02", dueDate: "2025-06-01",
		amount: 705.9, balance: 0, paid: 705.9,
		descriptions: `["Cloud Storage Plan", "Email Hosting", "SSL Certificate"]`,
		prices:       "[120.5, 45.2, 89.99]",
		quantities:   "[2, 5, 1]",
		status:       "paid", department: "IT",
	},
	{
		caseID: "CASE202", billID: "BILL202", customerID: "CUST001", vendorID: "VENDOR123",
		billDate: "2025-05-18", dueDate: "2025-06-17",
		amount: 215.9, balance: 215.9, paid: 0,
		descriptions: "Office Chair, Desk Lamp, Notebook Set",
		prices:       "85.00, 32.50, 12.99",
		quantities:   "2, 1, 3",
		status:       "pending", department: "Operations",
	},
	{
		caseID: "CASE203", billID: "BILL203", customerID: "CUST002", vendorID: "VENDOR123",
		billDate: "2025-06-05", dueDate: "2025-07-05",
		amount: 35222.5, balance: 35222.5, paid: 0,
		descriptions: `["Laptop Pro 15-inch", "Wireless Mouse"]`,
		prices:       "[4463.3, 2581.2]",
		quantities:   "[5, 5]",
		status:       "pending", department: "IT",
	},
	{
		caseID: "CASE204", billID: "BILL204", customerID: "CUST002", vendorID: "VENDOR456",
		billDate: "2025-06-12", dueDate: "2025-07-12",
		amount: 1500, balance: 0, paid: 1500,
		descriptions: "Consulting Services; Training Workshop",
		prices:       "900; 600",
		quantities:   "1; 1",
		status:       "paid", department: "HR",
	},
	{
		caseID: "CASE205", billID: "BILL205", customerID: "CUST003", vendorID: "VENDOR456",
		billDate: "2025-07-01", dueDate: "2025-07-31",
		amount: 250, balance: 250, paid: 0,
		descriptions: "Annual Software License",
		prices:       "250",
		quantities:   "1",
		status:       "pending", department: "IT",
	},
}

// SeedSampleData inserts development fixtures, skipping rows that already
// exist.
func (r *InvoiceRepository) SeedSampleData(ctx context.Context) error {
	conflict := "ON CONFLICT (case_id) DO NOTHING"
	insert := "INSERT INTO"
	if r.driver != "postgres" {
		conflict = ""
		insert = "INSERT OR IGNORE INTO"
	}

	stmt := fmt.Sprintf(`%s %s
(case_id, bill_id, customer_id, vendor_id, bill_date, due_date, amount, balance_amount, paid, items_description, items_unit_price, items_quantity, status, department)
VALUES (%s) %s`,
		insert, r.table(), r.placeholders(14), conflict)

	for _, s := range sampleInvoices {
		_, err := r.db.ExecContext(ctx, stmt,
			s.caseID, s.billID, s.customerID, s.vendorID, s.billDate, s.dueDate,
			s.amount, s.balance, s.paid,
			s.descriptions, s.prices, s.quantities,
			s.status, s.department)
		if err != nil {
			return fmt.Errorf("seed invoice %s: %w", s.caseID, err)
		}
	}
	r.logger.Info().Int("rows", len(sampleInvoices)).Msg("sample invoices seeded")
	return nil
}

// placeholders renders a comma-joined list of n bind placeholders.
func (r *InvoiceRepository) placeholders(n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		out += r.placeholder(i)
	}
	return out
}
