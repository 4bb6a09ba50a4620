package query

import (
	"regexp"
	"sort"
	"strings"
)

// extractionPatterns capture the product span of common question shapes.
// They run against the lowercased question; captures are cleaned of filler
// words afterwards, so greedy spans like "the office chair" are fine.
var extractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`price of ([^?,.!]+)`),
	regexp.MustCompile(`cost of ([^?,.!]+)`),
	regexp.MustCompile(`how much.*?(?:is|for|does)\s+([^?,.!]+)`),
	regexp.MustCompile(`([a-z]+(?:\s+[a-z]+)*)\s+(?:cost|price|pricing)`),
	regexp.MustCompile(`spend on ([^?,.!]+)`),
	regexp.MustCompile(`spent on ([^?,.!]+)`),
	regexp.MustCompile(`(?:bought|purchased)\s+([a-z][a-z ]+)`),
	regexp.MustCompile(`(?:show|find|get)\s+(?:me\s+)?(?:the\s+)?([a-z][a-z ]+?)\s+(?:details|info|information)`),
	regexp.MustCompile(`contains?\s+([a-z][a-z ]+?)\s+in`),
}

// quotedPattern pulls explicitly quoted product names from the original
// (non-lowercased) question.
var quotedPattern = regexp.MustCompile(`["']([^"']+)["']`)

// productVocabulary lists known billable terms matched as substrings.
// Multi-word terms come first so compound products are seen before their
// parts; subsumption dedupe drops the parts afterwards.
var productVocabulary = []string{
	"cloud storage", "web hosting", "data backup", "ssl certificate", "mobile app",
	"cloud", "storage", "support", "license", "licenses", "training",
	"software", "consulting", "hosting", "backup", "security",
	"email", "database", "domain", "server",
}

// extractionStopWords are filler tokens removed from captured spans.
var extractionStopWords = map[string]struct{}{
	"is": {}, "the": {}, "of": {}, "for": {}, "did": {}, "i": {}, "me": {},
	"my": {}, "we": {}, "our": {}, "much": {}, "many": {}, "does": {},
	"do": {}, "are": {}, "were": {}, "was": {}, "have": {}, "has": {},
	"had": {}, "this": {}, "that": {}, "these": {}, "those": {}, "what": {},
	"how": {}, "when": {}, "where": {}, "why": {}, "who": {}, "which": {},
	"all": {}, "any": {}, "some": {}, "more": {}, "most": {}, "few": {},
	"several": {}, "show": {}, "find": {}, "get": {}, "give": {}, "take": {},
	"make": {}, "items": {}, "item": {}, "products": {}, "product": {},
	"services": {}, "service": {}, "with": {}, "contain": {}, "contains": {},
	"their": {}, "description": {}, "and": {}, "a": {}, "an": {}, "to": {},
	"on": {}, "in": {}, "it": {}, "you": {}, "your": {}, "please": {},
}

// maxExtractedProducts caps how many product terms one question can yield.
const maxExtractedProducts = 5

// ProductExtractor pulls product names out of a question. Extraction is
// deterministic, so results are memoized in a bounded LRU cache keyed by
// the question text. Safe for concurrent use.
type ProductExtractor struct {
	cache *lruCache
}

// NewProductExtractor creates a ProductExtractor whose memoization cache
// holds at most cacheSize questions.
func NewProductExtractor(cacheSize int) *ProductExtractor {
	return &ProductExtractor{cache: newLRUCache(cacheSize)}
}

// Extract returns up to maxExtractedProducts product terms found in the
// question, most specific first. Questions with no product mention return
// an empty slice.
func (x *ProductExtractor) Extract(question string) []string {
	if cached, ok := x.cache.get(question); ok {
		return append([]string(nil), cached...)
	}
	products := x.extract(question)
	x.cache.put(question, products)
	return append([]string(nil), products...)
}

func (x *ProductExtractor) extract(question string) []string {
	var candidates []string

	for _, m := range quotedPattern.FindAllStringSubmatch(question, -1) {
		if s := strings.TrimSpace(m[1]); len(s) > 2 {
			candidates = append(candidates, strings.ToLower(s))
		}
	}

	lower := strings.ToLower(question)
	for _, re := range extractionPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			// "X and Y" spans carry two candidates
			for _, part := range strings.Split(m[1], " and ") {
				if cleaned := cleanCandidate(part); len(cleaned) > 2 {
					candidates = append(candidates, cleaned)
				}
			}
		}
	}

	for _, term := range productVocabulary {
		if strings.Contains(lower, term) {
			candidates = append(candidates, term)
		}
	}

	return dedupeBySpecificity(candidates, maxExtractedProducts)
}

// cleanCandidate strips stop words and short tokens from a captured span.
func cleanCandidate(span string) string {
	fields := strings.Fields(span)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `"'`)
		if len(f) <= 1 {
			continue
		}
		if _, stop := extractionStopWords[f]; stop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// dedupeBySpecificity keeps the most specific candidates: longest first,
// dropping any candidate already contained in a kept one, so "office
// chair" subsumes "chair".
func dedupeBySpecificity(candidates []string, limit int) []string {
	sorted := append([]string(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	kept := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(sorted))
	for _, c := range sorted {
		c = strings.TrimSpace(c)
		if len(c) < 3 {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		subsumed := false
		for _, k := range kept {
			if strings.Contains(k, c) {
				subsumed = true
				break
			}
		}
		if subsumed {
			continue
		}
		kept = append(kept, c)
		seen[c] = struct{}{}
		if len(kept) >= limit {
			break
		}
	}
	return kept
}
