package storage

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finopsys/invoice-engine/internal/expansion"
)

func newTestRepo(t *testing.T) *InvoiceRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	repo := NewInvoiceRepository(db, "sqlite", "", nil)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.SeedSampleData(ctx))
	return repo
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.SeedSampleData(context.Background()))

	vendors, err := repo.Vendors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"VENDOR123", "VENDOR456"}, vendors)
}

func TestExecuteVendorQuery(t *testing.T) {
	repo := newTestRepo(t)

	result := repo.ExecuteVendorQuery(context.Background(),
		"SELECT case_id, amount, items_description, items_unit_price, items_quantity FROM ai_invoice WHERE vendor_id = 'VENDOR123' ORDER BY case_id")

	require.True(t, result.Success, result.Error)
	assert.Equal(t, []string{"case_id", "amount", "items_description", "items_unit_price", "items_quantity"}, result.Columns)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, "CASE201", result.Rows[0][0])
	assert.Equal(t, "database", result.Source)

	// Byte slices are normalized to strings so expansion can parse them.
	_, ok := result.Rows[0][2].(string)
	assert.True(t, ok)
}

func TestExecuteVendorQueryError(t *testing.T) {
	repo := newTestRepo(t)

	result := repo.ExecuteVendorQuery(context.Background(), "SELECT nope FROM missing_table")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestExecuteVendorQueryFeedsExpansion(t *testing.T) {
	repo := newTestRepo(t)

	result := repo.ExecuteVendorQuery(context.Background(),
		"SELECT case_id, items_description, items_unit_price, items_quantity FROM ai_invoice WHERE case_id = 'CASE203'")
	require.True(t, result.Success)

	expanded := expansion.NewResultSetExpander(nil).ExpandResultSet(result)
	require.True(t, expanded.ItemsExpanded)
	assert.Equal(t, 2, expanded.TotalLineItems)
}

func TestSearchProducts(t *testing.T) {
	repo := newTestRepo(t)

	result := repo.SearchProducts(context.Background(), "VENDOR123", []string{"cloud storage"}, 10)
	require.True(t, result.Success, result.Error)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "CASE201", result.Rows[0][0])

	none := repo.SearchProducts(context.Background(), "VENDOR123", []string{"tractor"}, 10)
	require.True(t, none.Success)
	assert.Empty(t, none.Rows)

	// Vendor scope: VENDOR456 has no cloud storage rows.
	other := repo.SearchProducts(context.Background(), "VENDOR456", []string{"cloud storage"}, 10)
	require.True(t, other.Success)
	assert.Empty(t, other.Rows)
}

func TestInvoiceItems(t *testing.T) {
	repo := newTestRepo(t)

	result, err := repo.InvoiceItems(context.Background(), "VENDOR123", "CASE203")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	_, err = repo.InvoiceItems(context.Background(), "VENDOR123", "CASE999")
	assert.ErrorIs(t, err, ErrNotFound)

	// Wrong vendor must not see the invoice.
	_, err = repo.InvoiceItems(context.Background(), "VENDOR456", "CASE203")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentInvoices(t *testing.T) {
	repo := newTestRepo(t)

	result := repo.RecentInvoices(context.Background(), "VENDOR123", 2)
	require.True(t, result.Success, result.Error)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "CASE203", result.Rows[0][0])
	assert.Equal(t, "CASE202", result.Rows[1][0])
}
