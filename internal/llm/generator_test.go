package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finopsys/invoice-engine/internal/query"
)

func TestCleanModelSQL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"bare sql",
			"SELECT case_id FROM ai_invoice WHERE vendor_id = 'V'",
			"SELECT case_id FROM ai_invoice WHERE vendor_id = 'V'",
		},
		{
			"fenced sql",
			"```sql\nSELECT case_id FROM ai_invoice WHERE vendor_id = 'V'\n```",
			"SELECT case_id FROM ai_invoice WHERE vendor_id = 'V'",
		},
		{
			"plain fence",
			"```\nSELECT 1\n```",
			"SELECT 1",
		},
		{
			"leading prose",
			"Here is your query: SELECT 1",
			"SELECT 1",
		},
		{
			"trailing semicolon",
			"SELECT 1;",
			"SELECT 1",
		},
		{
			"lowercase select",
			"select case_id from ai_invoice",
			"select case_id from ai_invoice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanModelSQL(tt.raw))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	analysis := query.Analysis{
		Hints: query.SQLHints{
			SelectHint: "items_description, items_unit_price",
			WhereHint:  "LOWER(items_description::text) LIKE LOWER('%cloud storage%')",
			OrderHint:  "ORDER BY bill_date DESC",
		},
	}
	prompt := BuildPrompt("What is the price of cloud storage?", "VENDOR123", analysis)

	assert.Contains(t, prompt, "WHERE vendor_id = 'VENDOR123'")
	assert.Contains(t, prompt, "items_description, items_unit_price")
	assert.Contains(t, prompt, "cloud storage")
	assert.Contains(t, prompt, "ORDER BY bill_date DESC")
	assert.Contains(t, prompt, "Question: What is the price of cloud storage?")
}

func TestRulesGeneratorProductQuestion(t *testing.T) {
	g := NewRulesGenerator(1000)
	analysis := query.Analysis{
		IsItemQuery:       true,
		IsProductQuery:    true,
		ExtractedProducts: []string{"cloud storage"},
	}

	sql, err := g.GenerateSQL(context.Background(), "price of cloud storage", "VENDOR123", analysis)
	require.NoError(t, err)
	assert.Contains(t, sql, "LIKE LOWER('%cloud storage%')")
	assert.NoError(t, query.ValidateVendorQuery(sql, "VENDOR123"))
}

func TestRulesGeneratorItemQuestion(t *testing.T) {
	g := NewRulesGenerator(500)
	analysis := query.Analysis{IsItemQuery: true}

	sql, err := g.GenerateSQL(context.Background(), "what items did I buy", "VENDOR123", analysis)
	require.NoError(t, err)
	assert.Contains(t, sql, "items_description, items_unit_price, items_quantity")
	assert.Contains(t, sql, "LIMIT 500")
	assert.NoError(t, query.ValidateVendorQuery(sql, "VENDOR123"))
}

func TestRulesGeneratorGeneralQuestion(t *testing.T) {
	g := NewRulesGenerator(1000)

	sql, err := g.GenerateSQL(context.Background(), "how many invoices do I have", "VENDOR123", query.Analysis{})
	require.NoError(t, err)
	assert.NotContains(t, sql, "items_description")
	assert.NoError(t, query.ValidateVendorQuery(sql, "VENDOR123"))
}
