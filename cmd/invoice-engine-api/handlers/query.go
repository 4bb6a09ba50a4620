// Package handlers implements the Invoice Engine API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finopsys/invoice-engine/cmd/invoice-engine-api/middleware"
	"github.com/finopsys/invoice-engine/internal/engine"
	"github.com/finopsys/invoice-engine/internal/expansion"
	"github.com/finopsys/invoice-engine/internal/observability"
	"github.com/finopsys/invoice-engine/internal/query"
)

// QueryHandler serves question answering, analysis, and expansion.
type QueryHandler struct {
	svc    *engine.Service
	logger *observability.Logger
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(svc *engine.Service, logger *observability.Logger) *QueryHandler {
	if logger == nil {
		logger = observability.Nop()
	}
	return &QueryHandler{svc: svc, logger: logger}
}

type askRequest struct {
	Question string `json:"question"`
}

type analyzeResponse struct {
	Analysis query.Analysis `json:"analysis"`
}

type expandRequest struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

type expandResponse struct {
	Result expansion.QueryResult `json:"result"`
	Stats  query.ItemStats       `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Ask answers a vendor question end to end.
// POST /v1/ask
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"question\": \"...\"}"})
		return
	}

	vendorID := middleware.VendorID(r.Context())
	answer, err := h.svc.Ask(r.Context(), vendorID, req.Question)
	if err != nil {
		h.logger.Error().Err(err).Str("question", req.Question).Msg("ask failed")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// Analyze classifies a question without touching the database.
// POST /v1/query/analyze
func (h *QueryHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"question\": \"...\"}"})
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Analysis: h.svc.Analyze(req.Question)})
}

// Expand expands a caller-supplied result set into line-item rows.
// POST /v1/results/expand
func (h *QueryHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid expand request"})
		return
	}

	result := h.svc.Expand(expansion.QueryResult{
		Success: true,
		Columns: req.Columns,
		Rows:    req.Rows,
		Source:  "caller",
	})
	writeJSON(w, http.StatusOK, expandResponse{
		Result: result,
		Stats:  h.svc.Statistics(result),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
