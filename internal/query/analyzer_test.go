package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeProductPricingQuestion(t *testing.T) {
	a := NewAnalyzer(nil, 64)

	got := a.Analyze("What is the price of cloud storage?")

	assert.True(t, got.IsItemQuery)
	assert.True(t, got.IsProductQuery)
	assert.Equal(t, []string{"cloud storage"}, got.ExtractedProducts)
	assert.Equal(t, IntentProductPricing, got.Intent)
	assert.Contains(t, got.RequiredColumns, "items_unit_price")
	assert.Contains(t, got.Hints.WhereHint, "cloud storage")
}

func TestAnalyzeNonItemQuestion(t *testing.T) {
	a := NewAnalyzer(nil, 64)

	got := a.Analyze("How many invoices do I have?")

	assert.False(t, got.IsItemQuery)
	assert.False(t, got.IsProductQuery)
	assert.Empty(t, got.ExtractedProducts)
}

func TestAnalyzeListingQuestion(t *testing.T) {
	a := NewAnalyzer(nil, 64)

	got := a.Analyze("What items did I purchase last month?")

	assert.True(t, got.IsItemQuery)
	assert.Equal(t, IntentProductListing, got.Intent)
	assert.Contains(t, got.RequiredColumns, "bill_date")
}
