package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// maxQueryLength bounds generated SQL; anything longer is suspect.
const maxQueryLength = 2000

var (
	// ErrNotSelect rejects anything but a plain SELECT.
	ErrNotSelect = errors.New("only SELECT statements are allowed")
	// ErrMissingVendorFilter rejects queries without the mandatory vendor scope.
	ErrMissingVendorFilter = errors.New("query must filter on vendor_id")
)

var blockedStatementPattern = regexp.MustCompile(
	`(?i)\b(drop|delete|insert|update|alter|create|truncate|grant|revoke)\b`)

var sqlCommentPattern = regexp.MustCompile(`--|/\*`)

// aggregateOnlyPattern detects queries whose SELECT list is purely
// aggregate, which return few rows and need no LIMIT.
var aggregateOnlyPattern = regexp.MustCompile(`(?i)^\s*select\s+(count|sum|avg|min|max)\s*\(`)

var limitClausePattern = regexp.MustCompile(`(?i)\blimit\s+\d+`)

// ValidateVendorQuery checks that generated SQL is a read-only, vendor
// scoped retrieval. Model-generated SQL never reaches the database
// without passing this.
func ValidateVendorQuery(sqlText, vendorID string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return errors.New("empty query")
	}
	if len(trimmed) > maxQueryLength {
		return fmt.Errorf("query exceeds %d characters", maxQueryLength)
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return ErrNotSelect
	}
	if m := blockedStatementPattern.FindString(trimmed); m != "" {
		return fmt.Errorf("blocked keyword %q in query", strings.ToUpper(m))
	}
	if sqlCommentPattern.MatchString(trimmed) {
		return errors.New("sql comments are not allowed")
	}

	wantFilter := fmt.Sprintf("vendor_id = '%s'", escapeSQLString(vendorID))
	if !strings.Contains(strings.ToLower(trimmed), strings.ToLower(wantFilter)) {
		return ErrMissingVendorFilter
	}
	return nil
}

// AppendRowLimit adds a LIMIT clause to a retrieval query that has none.
// Aggregate-only queries are left alone.
func AppendRowLimit(sqlText string, limit int) string {
	trimmed := strings.TrimRight(strings.TrimSpace(sqlText), ";")
	if limit < 1 || limitClausePattern.MatchString(trimmed) || aggregateOnlyPattern.MatchString(trimmed) {
		return trimmed
	}
	return fmt.Sprintf("%s LIMIT %d", trimmed, limit)
}
