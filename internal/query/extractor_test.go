package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	x := NewProductExtractor(64)

	tests := []struct {
		question string
		want     []string
	}{
		{"What is the price of cloud storage?", []string{"cloud storage"}},
		{"How much did we spend on training?", []string{"training"}},
		{`What does "Laptop Pro 15-inch" cost?`, []string{"laptop pro 15-inch"}},
		{"Did we buy consulting and web hosting?", []string{"web hosting", "consulting"}},
		{"How many invoices do I have?", []string{}},
		{"What is my balance?", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, x.Extract(tt.question))
		})
	}
}

// A compound product name subsumes its parts: "office chair" wins over
// "chair".
func TestExtractSubsumption(t *testing.T) {
	x := NewProductExtractor(64)

	got := x.Extract("Show me Office Chair and Chair details")
	assert.Equal(t, []string{"office chair"}, got)
}

func TestDedupeBySpecificity(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       []string
	}{
		{
			"substring subsumed",
			[]string{"office chair", "chair", "office chair"},
			[]string{"office chair"},
		},
		{
			"distinct terms kept longest first",
			[]string{"mouse", "laptop pro"},
			[]string{"laptop pro", "mouse"},
		},
		{
			"short candidates dropped",
			[]string{"ab", "pen"},
			[]string{"pen"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dedupeBySpecificity(tt.candidates, maxExtractedProducts))
		})
	}
}

func TestExtractCap(t *testing.T) {
	x := NewProductExtractor(64)

	got := x.Extract("Did we buy cloud storage, web hosting, data backup, ssl certificate, consulting, training and licenses?")
	assert.Len(t, got, maxExtractedProducts)
}

func TestExtractMemoization(t *testing.T) {
	x := NewProductExtractor(2)

	q := "What is the price of cloud storage?"
	first := x.Extract(q)
	second := x.Extract(q)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, x.cache.len())

	// Callers get copies; mutating one result must not poison the cache.
	second[0] = "mutated"
	assert.Equal(t, first, x.Extract(q))

	// Bounded: old entries are evicted.
	x.Extract("question two about cloud")
	x.Extract("question three about cloud")
	assert.Equal(t, 2, x.cache.len())
}
