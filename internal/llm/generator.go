// Package llm turns analyzed questions into vendor-scoped SQL, either via
// Gemini or a deterministic rules fallback.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/finopsys/invoice-engine/internal/observability"
	"github.com/finopsys/invoice-engine/internal/query"
)

// SQLGenerator produces a retrieval query for an analyzed question. The
// returned SQL has already passed vendor-scope validation.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, question, vendorID string, analysis query.Analysis) (string, error)
}

// ErrEmptyModelResponse is returned when the model produces no text.
var ErrEmptyModelResponse = errors.New("model returned empty response")

// GeminiConfig holds Gemini generator settings.
type GeminiConfig struct {
	Model    string
	APIKey   string
	RowLimit int
}

// GeminiGenerator generates SQL with Gemini. Every generated statement is
// validated before it is returned; a model that emits anything but a
// vendor-scoped SELECT produces an error, never a query.
type GeminiGenerator struct {
	model    string
	apiKey   string
	rowLimit int
	logger   *observability.Logger
}

// NewGeminiGenerator creates a GeminiGenerator. A nil logger disables
// logging.
func NewGeminiGenerator(cfg GeminiConfig, logger *observability.Logger) *GeminiGenerator {
	if logger == nil {
		logger = observability.Nop()
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	rowLimit := cfg.RowLimit
	if rowLimit < 1 {
		rowLimit = 1000
	}
	return &GeminiGenerator{model: model, apiKey: cfg.APIKey, rowLimit: rowLimit, logger: logger}
}

// GenerateSQL asks the model for a retrieval query and validates it.
func (g *GeminiGenerator) GenerateSQL(ctx context.Context, question, vendorID string, analysis query.Analysis) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.apiKey})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	prompt := BuildPrompt(question, vendorID, analysis)
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}

	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyModelResponse
	}

	sqlText := CleanModelSQL(raw)
	if err := query.ValidateVendorQuery(sqlText, vendorID); err != nil {
		g.logger.Warn().Err(err).Str("sql", sqlText).Msg("model sql rejected")
		return "", fmt.Errorf("generated sql rejected: %w", err)
	}
	sqlText = query.AppendRowLimit(sqlText, g.rowLimit)

	g.logger.Debug().Str("model", g.model).Str("sql", sqlText).Msg("generated sql")
	return sqlText, nil
}

// BuildPrompt assembles the generation prompt: table schema, vendor scope,
// and the hints derived from question analysis.
func BuildPrompt(question, vendorID string, analysis query.Analysis) string {
	var b strings.Builder
	b.WriteString("You translate invoice questions into a single PostgreSQL SELECT statement.\n\n")
	b.WriteString("Table ai_invoice columns:\n")
	b.WriteString("  case_id, bill_id, customer_id, vendor_id, bill_date, due_date,\n")
	b.WriteString("  amount, balance_amount, paid, total_tax, subtotal,\n")
	b.WriteString("  items_description, items_unit_price, items_quantity,\n")
	b.WriteString("  status, decline_reason, department\n\n")
	b.WriteString("items_description, items_unit_price, and items_quantity hold JSON arrays; ")
	b.WriteString("select them whole, never unnest them.\n\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Every query MUST include: WHERE vendor_id = '%s'\n", strings.ReplaceAll(vendorID, "'", "''"))
	b.WriteString("- SELECT statements only, no comments, no DDL or DML\n")
	b.WriteString("- Return bare SQL, no markdown fences, no explanation\n")
	if analysis.Hints.SelectHint != "" {
		fmt.Fprintf(&b, "- Include these columns: %s\n", analysis.Hints.SelectHint)
	}
	if analysis.Hints.WhereHint != "" {
		fmt.Fprintf(&b, "- Filter items with: %s\n", analysis.Hints.WhereHint)
	}
	if analysis.Hints.OrderHint != "" {
		fmt.Fprintf(&b, "- Sort with: %s\n", analysis.Hints.OrderHint)
	}
	if analysis.Hints.SpecialHint != "" {
		fmt.Fprintf(&b, "- Note: %s\n", analysis.Hints.SpecialHint)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String()
}

// CleanModelSQL strips markdown fences and leading prose from model
// output, leaving the statement itself.
func CleanModelSQL(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```sql")
		s = strings.TrimPrefix(s, "```SQL")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	// Models sometimes preface the statement with a sentence.
	if i := strings.Index(strings.ToUpper(s), "SELECT"); i > 0 {
		s = s[i:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), ";")
}

// RulesGenerator is the offline fallback: deterministic SQL templates
// driven entirely by question analysis.
type RulesGenerator struct {
	rowLimit int
}

// NewRulesGenerator creates a RulesGenerator.
func NewRulesGenerator(rowLimit int) *RulesGenerator {
	if rowLimit < 1 {
		rowLimit = 1000
	}
	return &RulesGenerator{rowLimit: rowLimit}
}

// GenerateSQL builds a template query for the analyzed question.
func (r *RulesGenerator) GenerateSQL(_ context.Context, question, vendorID string, analysis query.Analysis) (string, error) {
	if analysis.IsProductQuery && len(analysis.ExtractedProducts) > 0 {
		return query.GenerateProductSQL(question, vendorID, analysis.ExtractedProducts), nil
	}

	escaped := strings.ReplaceAll(vendorID, "'", "''")
	order := analysis.Hints.OrderHint
	if order == "" {
		order = "ORDER BY bill_date DESC"
	}

	if analysis.IsItemQuery {
		return fmt.Sprintf(`SELECT case_id, bill_date, amount, balance_amount, items_description, items_unit_price, items_quantity, status
FROM ai_invoice
WHERE vendor_id = '%s'
%s
LIMIT %d`, escaped, order, r.rowLimit), nil
	}

	return fmt.Sprintf(`SELECT case_id, bill_id, customer_id, bill_date, due_date, amount, balance_amount, paid, status
FROM ai_invoice
WHERE vendor_id = '%s'
%s
LIMIT %d`, escaped, order, r.rowLimit), nil
}
