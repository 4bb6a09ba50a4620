// Package engine orchestrates the full question flow: analyze, generate
// SQL, validate, execute, expand, summarize, cache.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finopsys/invoice-engine/internal/cache"
	"github.com/finopsys/invoice-engine/internal/expansion"
	"github.com/finopsys/invoice-engine/internal/llm"
	"github.com/finopsys/invoice-engine/internal/observability"
	"github.com/finopsys/invoice-engine/internal/query"
)

// Executor runs validated retrieval SQL. *storage.InvoiceRepository
// satisfies it.
type Executor interface {
	ExecuteVendorQuery(ctx context.Context, sqlText string) expansion.QueryResult
}

// Config holds engine tunables.
type Config struct {
	RowLimit     int
	CacheAnswers bool
	CacheTTL     time.Duration
}

// Answer is the complete response to one question.
type Answer struct {
	ID       uuid.UUID             `json:"id"`
	VendorID string                `json:"vendor_id"`
	Question string                `json:"question"`
	Analysis query.Analysis        `json:"analysis"`
	SQL      string                `json:"sql"`
	Result   expansion.QueryResult `json:"result"`
	Summary  string                `json:"summary,omitempty"`
	Cached   bool                  `json:"cached"`
	TookMs   int64                 `json:"took_ms"`
}

// Service answers vendor questions about invoice line items.
type Service struct {
	logger    *observability.Logger
	analyzer  *query.Analyzer
	generator llm.SQLGenerator
	fallback  llm.SQLGenerator
	executor  Executor
	expander  *expansion.ResultSetExpander
	formatter *query.ResponseFormatter
	cache     cache.Client
	cfg       Config
}

// NewService wires a Service. generator may be nil, in which case the
// rules generator serves every question; cacheClient may be nil to
// disable answer caching.
func NewService(logger *observability.Logger, analyzer *query.Analyzer, generator llm.SQLGenerator, executor Executor, cacheClient cache.Client, cfg Config) *Service {
	if logger == nil {
		logger = observability.Nop()
	}
	if cfg.RowLimit < 1 {
		cfg.RowLimit = 1000
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	fallback := llm.NewRulesGenerator(cfg.RowLimit)
	if generator == nil {
		generator = fallback
	}
	return &Service{
		logger:    logger,
		analyzer:  analyzer,
		generator: generator,
		fallback:  fallback,
		executor:  executor,
		expander:  expansion.NewResultSetExpander(logger),
		formatter: query.NewResponseFormatter(logger),
		cache:     cacheClient,
		cfg:       cfg,
	}
}

// Ask answers one vendor-scoped question end to end. Database failures are
// reported inside the Answer's Result; Ask itself errs only when no valid
// SQL can be produced.
func (s *Service) Ask(ctx context.Context, vendorID, question string) (*Answer, error) {
	start := time.Now()
	log := s.logger.WithVendor(vendorID)

	analysis := s.analyzer.Analyze(question)

	cacheKey := cache.VendorKey(vendorID, "answer", question)
	if cached, ok := s.cachedAnswer(ctx, cacheKey); ok {
		cached.Cached = true
		cached.TookMs = time.Since(start).Milliseconds()
		log.Debug().Str("question", question).Msg("answer served from cache")
		return cached, nil
	}

	sqlText, err := s.generateSQL(ctx, question, vendorID, analysis, log)
	if err != nil {
		return nil, err
	}
	if err := query.ValidateVendorQuery(sqlText, vendorID); err != nil {
		return nil, fmt.Errorf("vendor query validation: %w", err)
	}

	result := s.executor.ExecuteVendorQuery(ctx, sqlText)

	answer := &Answer{
		ID:       uuid.New(),
		VendorID: vendorID,
		Question: question,
		Analysis: analysis,
		SQL:      sqlText,
		Result:   result,
	}

	if result.Success && (analysis.IsItemQuery || analysis.IsProductQuery) {
		expanded := s.expander.ExpandResultSet(result)
		answer.Result = expanded
		if analysis.IsProductQuery && len(analysis.ExtractedProducts) > 0 {
			answer.Summary = s.formatter.FormatProductResponse(expanded, question, analysis.ExtractedProducts)
		} else {
			answer.Summary = s.formatter.FormatItemResponse(expanded, question)
		}
	}

	answer.TookMs = time.Since(start).Milliseconds()

	if result.Success {
		s.storeAnswer(ctx, cacheKey, answer)
	}

	log.Info().
		Str("question", question).
		Str("intent", string(analysis.Intent)).
		Bool("expanded", answer.Result.ItemsExpanded).
		Int("rows", len(answer.Result.Rows)).
		Int64("took_ms", answer.TookMs).
		Msg("question answered")

	return answer, nil
}

// Analyze classifies a question without executing anything.
func (s *Service) Analyze(question string) query.Analysis {
	return s.analyzer.Analyze(question)
}

// Expand expands an externally produced result set.
func (s *Service) Expand(result expansion.QueryResult) expansion.QueryResult {
	return s.expander.ExpandResultSet(result)
}

// Statistics summarizes a result set's line items.
func (s *Service) Statistics(result expansion.QueryResult) query.ItemStats {
	return s.formatter.ItemStatistics(result)
}

// generateSQL produces SQL for the question, falling back to the rules
// generator when the configured one fails.
func (s *Service) generateSQL(ctx context.Context, question, vendorID string, analysis query.Analysis, log *observability.Logger) (string, error) {
	if analysis.IsProductQuery && len(analysis.ExtractedProducts) > 0 {
		return query.GenerateProductSQL(question, vendorID, analysis.ExtractedProducts), nil
	}

	sqlText, err := s.generator.GenerateSQL(ctx, question, vendorID, analysis)
	if err == nil {
		return sqlText, nil
	}
	if s.generator == s.fallback {
		return "", fmt.Errorf("generate sql: %w", err)
	}
	log.Warn().Err(err).Msg("sql generation failed, using rules fallback")
	sqlText, ferr := s.fallback.GenerateSQL(ctx, question, vendorID, analysis)
	if ferr != nil {
		return "", fmt.Errorf("generate sql: %w", ferr)
	}
	return sqlText, nil
}

func (s *Service) cachedAnswer(ctx context.Context, key string) (*Answer, bool) {
	if !s.cfg.CacheAnswers || s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var answer Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, false
	}
	return &answer, true
}

func (s *Service) storeAnswer(ctx context.Context, key string, answer *Answer) {
	if !s.cfg.CacheAnswers || s.cache == nil {
		return
	}
	data, err := json.Marshal(answer)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		s.logger.Debug().Err(err).Msg("answer cache write failed")
	}
}
