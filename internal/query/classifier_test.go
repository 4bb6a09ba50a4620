package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClassifier() *Classifier {
	return NewClassifier(NewProductExtractor(16))
}

func TestIsItemQuery(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		question string
		want     bool
	}{
		{"What items did I purchase last month?", true},
		{"Show me the line items on invoice CASE203", true},
		{"Give me a breakdown of my costs", true},
		{"How many different products did we buy?", true},
		{"What was billed in March?", true},
		{"What is the price of cloud storage?", true},
		{"What is the unit price of consulting?", true},

		{"How many invoices do I have?", false},
		{"What is my outstanding balance?", false},
		{"When is the next invoice due?", false},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsItemQuery(tt.question))
		})
	}
}

func TestIsProductQuery(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		question string
		want     bool
	}{
		{"What is the price of cloud storage?", true},
		{"How much does consulting cost?", true},
		{`Did we buy "Laptop Pro 15-inch"?`, true},
		{"How much did we spend on training?", true},

		{"How many invoices do I have?", false},
		{"What is my balance?", false},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsProductQuery(tt.question))
		})
	}
}

func TestClassifyIntent(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		question string
		want     Intent
	}{
		{"What is the price of cloud storage?", IntentProductPricing},
		{"How much does support cost?", IntentProductPricing},
		{"How many items are on invoice CASE203?", IntentQuantityInquiry},
		{"What items did I purchase?", IntentProductListing},
		{"Give me an itemized view of invoice CASE203", IntentCostBreakdown},
		{"Which is the most expensive item?", IntentPriceAnalysis},
		{"Tell me about my invoice items", IntentGeneralItem},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyIntent(tt.question))
		})
	}
}

// "What is the price of X" starts like a listing question; the pricing
// rule must win because it is evaluated first.
func TestClassifyIntentPricingBeforeListing(t *testing.T) {
	c := newTestClassifier()
	assert.Equal(t, IntentProductPricing, c.ClassifyIntent("List the price of cloud storage"))
}

func TestRequiredColumns(t *testing.T) {
	assert.Contains(t, RequiredColumns(IntentProductPricing), "items_unit_price")
	assert.Contains(t, RequiredColumns(IntentPriceAnalysis), "case_id")
	assert.Equal(t, RequiredColumns(IntentGeneralItem), RequiredColumns(Intent("unknown")))
}
