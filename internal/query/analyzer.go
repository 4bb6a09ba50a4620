package query

import (
	"github.com/finopsys/invoice-engine/internal/observability"
)

// Analysis is the full classification of one question.
type Analysis struct {
	Question          string   `json:"question"`
	IsItemQuery       bool     `json:"is_item_query"`
	IsProductQuery    bool     `json:"is_product_query"`
	ExtractedProducts []string `json:"extracted_products"`
	Intent            Intent   `json:"intent"`
	RequiredColumns   []string `json:"required_columns"`
	Hints             SQLHints `json:"sql_hints"`
}

// Analyzer bundles classification and extraction behind one call.
// Construction compiles nothing at runtime; the pattern tables are
// package-level, so an Analyzer is cheap and safe to share.
type Analyzer struct {
	classifier *Classifier
	extractor  *ProductExtractor
	logger     *observability.Logger
}

// NewAnalyzer creates an Analyzer. cacheSize bounds the extractor's
// memoization cache; a nil logger disables logging.
func NewAnalyzer(logger *observability.Logger, cacheSize int) *Analyzer {
	if logger == nil {
		logger = observability.Nop()
	}
	extractor := NewProductExtractor(cacheSize)
	return &Analyzer{
		classifier: NewClassifier(extractor),
		extractor:  extractor,
		logger:     logger,
	}
}

// Analyze classifies a question and extracts its product terms. It never
// fails; a question outside the item domain comes back with both flags
// false and no products.
func (a *Analyzer) Analyze(question string) Analysis {
	products := a.extractor.Extract(question)
	intent := a.classifier.ClassifyIntent(question)

	analysis := Analysis{
		Question:          question,
		IsItemQuery:       a.classifier.IsItemQuery(question),
		IsProductQuery:    a.classifier.IsProductQuery(question),
		ExtractedProducts: products,
		Intent:            intent,
		RequiredColumns:   RequiredColumns(intent),
		Hints:             BuildSQLHints(question, intent, products),
	}

	a.logger.Debug().
		Str("question", question).
		Bool("item_query", analysis.IsItemQuery).
		Bool("product_query", analysis.IsProductQuery).
		Str("intent", string(analysis.Intent)).
		Strs("products", analysis.ExtractedProducts).
		Msg("analyzed question")

	return analysis
}
