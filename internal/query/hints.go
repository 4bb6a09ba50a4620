package query

import (
	"fmt"
	"strings"
)

// SQLHints guide a SQL generator toward a query whose results can be
// expanded into line items. Hints are advisory text, not executable SQL
// fragments, except WhereHint which is a valid predicate.
type SQLHints struct {
	SelectHint  string `json:"select_hint,omitempty"`
	WhereHint   string `json:"where_hint,omitempty"`
	OrderHint   string `json:"order_hint,omitempty"`
	SpecialHint string `json:"special_hint,omitempty"`
}

// BuildSQLHints derives retrieval hints from the classified question.
func BuildSQLHints(question string, intent Intent, products []string) SQLHints {
	q := strings.ToLower(question)

	hints := SQLHints{
		SelectHint: strings.Join(RequiredColumns(intent), ", "),
		OrderHint:  "ORDER BY bill_date DESC",
	}

	if len(products) > 0 {
		hints.WhereHint = productWherePredicate(products)
	}

	// The cheap-side check runs before the expensive-side one because
	// "least expensive" contains "expensive".
	switch {
	case strings.Contains(q, "oldest"), strings.Contains(q, "earliest"), strings.Contains(q, "first"):
		hints.OrderHint = "ORDER BY bill_date ASC"
	case intent == IntentPriceAnalysis && containsAny(q, "cheapest", "lowest", "least expensive"):
		hints.OrderHint = "ORDER BY items_unit_price ASC"
	case intent == IntentPriceAnalysis && containsAny(q, "expensive", "highest", "priciest"):
		hints.OrderHint = "ORDER BY items_unit_price DESC"
	}

	if intent == IntentPriceAnalysis {
		hints.SpecialHint = "retrieve all item columns so per-item prices can be compared after expansion; do not aggregate"
	}
	return hints
}

// productWherePredicate builds the OR-joined description filter for a set
// of product terms. Single quotes in terms are doubled.
func productWherePredicate(products []string) string {
	likes := make([]string, 0, len(products))
	for _, p := range products {
		likes = append(likes, fmt.Sprintf(
			"LOWER(items_description::text) LIKE LOWER('%%%s%%')", escapeSQLString(p)))
	}
	return strings.Join(likes, " OR ")
}

// GenerateProductSQL builds the full vendor-scoped retrieval query for a
// product-specific question. Product terms and the vendor ID are escaped
// by doubling single quotes; results are newest-first and capped at 100
// rows so expansion stays bounded.
func GenerateProductSQL(question, vendorID string, products []string) string {
	if len(products) == 0 {
		return ""
	}
	return fmt.Sprintf(`SELECT case_id, bill_date, amount, balance_amount, items_description, items_unit_price, items_quantity, status
FROM ai_invoice
WHERE vendor_id = '%s'
  AND (%s)
ORDER BY bill_date DESC, case_id DESC
LIMIT 100`, escapeSQLString(vendorID), productWherePredicate(products))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
