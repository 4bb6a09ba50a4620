package expansion

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/finopsys/invoice-engine/internal/observability"
)

// delimiterCandidates is checked in order; the first delimiter with the
// strictly highest occurrence count wins, comma when nothing matches.
var delimiterCandidates = []string{",", ";", "|", "\n", "\t", "||", ";;"}

// nonNumericPattern strips currency symbols, spaces, and other noise before
// a numeric element is parsed. Digits, dots, and minus signs survive.
var nonNumericPattern = regexp.MustCompile(`[^0-9.\-]`)

// FieldParser decodes a packed item-array field into its elements. Fields
// arrive either as JSON array literals, delimited strings, or native lists,
// and vendors are not consistent about which. Parsing never fails: malformed
// input degrades to delimiter splitting, and unparseable numbers become 0.0
// so the three parallel fields keep their element counts aligned.
type FieldParser struct {
	logger *observability.Logger
}

// NewFieldParser creates a FieldParser. A nil logger disables logging.
func NewFieldParser(logger *observability.Logger) *FieldParser {
	if logger == nil {
		logger = observability.Nop()
	}
	return &FieldParser{logger: logger}
}

// DetectDelimiter picks the most likely delimiter for a raw field string.
func (p *FieldParser) DetectDelimiter(text string) string {
	best := ","
	bestCount := 0
	for _, d := range delimiterCandidates {
		if c := strings.Count(text, d); c > bestCount {
			best = d
			bestCount = c
		}
	}
	return best
}

// ParseTextField extracts the string elements of a description field.
// JSON array literals are tried first; anything else falls back to
// delimiter splitting. Empty elements are dropped.
func (p *FieldParser) ParseTextField(v interface{}) []string {
	fv := ValueOf(v)
	if fv.kind == fieldList {
		return p.textElements(fv.list)
	}
	text := strings.TrimSpace(fv.Text())
	if text == "" {
		return []string{}
	}

	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		var arr []interface{}
		if err := json.Unmarshal([]byte(text), &arr); err == nil {
			return p.textElements(arr)
		}
		p.logger.Debug().
			Str("value", truncateForLog(text)).
			Msg("json array parse failed, falling back to delimiter split")
	}

	delim := p.DetectDelimiter(text)
	parts := strings.Split(text, delim)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

// ParseNumericField extracts the numeric elements of a price or quantity
// field. Elements that cannot be parsed become 0.0 rather than being
// dropped, so positions stay aligned with the description field.
func (p *FieldParser) ParseNumericField(v interface{}) []float64 {
	fv := ValueOf(v)
	if fv.kind == fieldList {
		return p.numericElements(fv.list)
	}
	text := strings.TrimSpace(fv.Text())
	if text == "" {
		return []float64{}
	}

	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		var arr []interface{}
		if err := json.Unmarshal([]byte(text), &arr); err == nil {
			return p.numericElements(arr)
		}
		p.logger.Debug().
			Str("value", truncateForLog(text)).
			Msg("json array parse failed, falling back to delimiter split")
	}

	items := p.ParseTextField(text)
	out := make([]float64, 0, len(items))
	for _, item := range items {
		out = append(out, parseAmount(item))
	}
	return out
}

// textElements renders decoded list elements as trimmed strings,
// dropping nulls and empties.
func (p *FieldParser) textElements(list []interface{}) []string {
	items := make([]string, 0, len(list))
	for _, el := range list {
		if el == nil {
			continue
		}
		s := strings.TrimSpace(stringify(el))
		if s != "" {
			items = append(items, s)
		}
	}
	return items
}

// numericElements converts decoded list elements to floats. Nulls and
// anything non-numeric count as 0.0 to preserve positional alignment.
func (p *FieldParser) numericElements(list []interface{}) []float64 {
	out := make([]float64, 0, len(list))
	for _, el := range list {
		switch t := el.(type) {
		case float64:
			out = append(out, t)
		case float32:
			out = append(out, float64(t))
		case int:
			out = append(out, float64(t))
		case int64:
			out = append(out, float64(t))
		case string:
			out = append(out, parseAmount(t))
		case json.Number:
			f, err := t.Float64()
			if err != nil {
				f = 0
			}
			out = append(out, f)
		default:
			out = append(out, 0)
		}
	}
	return out
}

// parseAmount parses a single numeric element, tolerating currency symbols
// and surrounding noise. "$25.50" becomes 25.5; garbage becomes 0.
func parseAmount(s string) float64 {
	cleaned := nonNumericPattern.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

func truncateForLog(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
