// Package query analyzes natural-language invoice questions: intent
// classification, product name extraction, SQL hint and query generation,
// result formatting, and vendor-scoped SQL validation.
package query

import (
	"regexp"
	"strings"
)

// Intent is the coarse category of an item-level question.
type Intent string

const (
	IntentProductPricing  Intent = "product_pricing"
	IntentQuantityInquiry Intent = "quantity_inquiry"
	IntentProductListing  Intent = "product_listing"
	IntentCostBreakdown   Intent = "cost_breakdown"
	IntentPriceAnalysis   Intent = "price_analysis"
	IntentGeneralItem     Intent = "general_item_query"
)

// itemKeywords mark a question as item-level when present as substrings.
var itemKeywords = []string{
	"items", "products", "services",
	"line items", "individual items", "itemized", "item details",
	"what was billed", "what did i buy", "what did we buy",
	"product list", "service list",
	"breakdown", "line by line", "item breakdown", "product breakdown", "service breakdown",
	"what items", "what products", "what services",
	"unit price", "per item", "each item", "item wise", "product wise",
	"individual cost", "line item detail",
	"what's on the invoice", "whats on the invoice",
}

// quantityPatterns catch counting questions phrased without an item keyword
// substring match, e.g. "how many different products".
var quantityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`how many .*(item|product|service)`),
	regexp.MustCompile(`count .*(item|product|service)`),
	regexp.MustCompile(`number of .*(item|product|service)`),
}

// specificProductPatterns catch questions about a particular product even
// when no item keyword appears.
var specificProductPatterns = []*regexp.Regexp{
	regexp.MustCompile(`price of`),
	regexp.MustCompile(`cost of`),
	regexp.MustCompile(`how much.*(is|for|does)`),
	regexp.MustCompile(`(cloud|storage|support|license|training|software|consulting|hosting|backup|security).*(cost|price)`),
	regexp.MustCompile(`(buy|bought|purchased).*(cloud|storage|support|license|training|software|consulting|hosting|backup|security)`),
	regexp.MustCompile(`(item|product|service).*(price|cost)`),
	regexp.MustCompile(`how much.*(item|product|service)`),
	regexp.MustCompile(`["'][^"']+["']`),
}

// intentRule maps trigger phrases to an intent. Rules are evaluated in
// order and the first match wins, so pricing outranks listing: "what is
// the price of X" must classify as pricing even though it starts with
// "what".
type intentRule struct {
	intent  Intent
	phrases []string
}

var intentRules = []intentRule{
	{IntentProductPricing, []string{"price of", "cost of", "how much", "pricing", "price for", "rate of"}},
	{IntentQuantityInquiry, []string{"how many", "quantity", "count of", "number of"}},
	{IntentProductListing, []string{"what items", "what products", "what services", "show me", "list", "display"}},
	{IntentCostBreakdown, []string{"breakdown", "break down", "itemized", "line by line"}},
	{IntentPriceAnalysis, []string{"most expensive", "cheapest", "highest price", "lowest price", "least expensive", "priciest"}},
}

// intentColumns names the invoice columns each intent needs retrieved so
// that row expansion has material to work with.
var intentColumns = map[Intent][]string{
	IntentProductPricing:  {"items_description", "items_unit_price", "items_quantity"},
	IntentQuantityInquiry: {"items_description", "items_quantity"},
	IntentProductListing:  {"items_description", "items_unit_price", "items_quantity", "bill_date"},
	IntentCostBreakdown:   {"items_description", "items_unit_price", "items_quantity", "amount"},
	IntentPriceAnalysis:   {"case_id", "items_description", "items_unit_price", "items_quantity"},
	IntentGeneralItem:     {"items_description", "items_unit_price", "items_quantity"},
}

// Classifier decides whether a question is item-level and what it is
// asking for. Classification is pure pattern matching over the lowercased
// question; it never errs, only defaults.
type Classifier struct {
	extractor *ProductExtractor
}

// NewClassifier creates a Classifier backed by the given extractor.
func NewClassifier(extractor *ProductExtractor) *Classifier {
	return &Classifier{extractor: extractor}
}

// IsItemQuery reports whether the question needs line-item data.
func (c *Classifier) IsItemQuery(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range itemKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	for _, re := range quantityPatterns {
		if re.MatchString(q) {
			return true
		}
	}
	return c.IsProductQuery(question)
}

// IsProductQuery reports whether the question targets specific products.
func (c *Classifier) IsProductQuery(question string) bool {
	q := strings.ToLower(question)
	for _, re := range specificProductPatterns {
		if re.MatchString(q) {
			return true
		}
	}
	return len(c.extractor.Extract(question)) > 0
}

// ClassifyIntent maps a question to its intent. Questions that match no
// rule fall back to general_item_query.
func (c *Classifier) ClassifyIntent(question string) Intent {
	q := strings.ToLower(question)
	for _, rule := range intentRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(q, phrase) {
				return rule.intent
			}
		}
	}
	return IntentGeneralItem
}

// RequiredColumns lists the invoice columns an intent needs retrieved.
func RequiredColumns(intent Intent) []string {
	cols, ok := intentColumns[intent]
	if !ok {
		cols = intentColumns[IntentGeneralItem]
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}
