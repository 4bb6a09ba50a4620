package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finopsys/invoice-engine/cmd/invoice-engine-api/middleware"
	"github.com/finopsys/invoice-engine/internal/engine"
	"github.com/finopsys/invoice-engine/internal/observability"
	"github.com/finopsys/invoice-engine/internal/storage"
)

// InvoiceHandler serves direct invoice retrieval: recent invoices, the
// line items of one invoice, product search, and the vendor list.
type InvoiceHandler struct {
	repo      *storage.InvoiceRepository
	svc       *engine.Service
	searchCap int
	logger    *observability.Logger
}

// NewInvoiceHandler creates an InvoiceHandler. searchCap bounds product
// search result rows.
func NewInvoiceHandler(repo *storage.InvoiceRepository, svc *engine.Service, searchCap int, logger *observability.Logger) *InvoiceHandler {
	if logger == nil {
		logger = observability.Nop()
	}
	if searchCap < 1 {
		searchCap = 100
	}
	return &InvoiceHandler{repo: repo, svc: svc, searchCap: searchCap, logger: logger}
}

// Recent lists a vendor's newest invoices, unexpanded.
// GET /v1/invoices/recent?limit=N
func (h *InvoiceHandler) Recent(w http.ResponseWriter, r *http.Request) {
	vendorID := middleware.VendorID(r.Context())
	limit := queryInt(r, "limit", 25)

	result := h.repo.RecentInvoices(r.Context(), vendorID, limit)
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: result.Error})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Items returns one invoice expanded into its line items.
// GET /v1/invoices/{caseID}/items
func (h *InvoiceHandler) Items(w http.ResponseWriter, r *http.Request) {
	vendorID := middleware.VendorID(r.Context())
	caseID := chi.URLParam(r, "caseID")

	result, err := h.repo.InvoiceItems(r.Context(), vendorID, caseID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "invoice not found"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("case_id", caseID).Msg("invoice items lookup failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: result.Error})
		return
	}

	expanded := h.svc.Expand(result)
	writeJSON(w, http.StatusOK, expandResponse{
		Result: expanded,
		Stats:  h.svc.Statistics(expanded),
	})
}

// Search finds a vendor's line items mentioning the given product terms.
// GET /v1/products/search?q=term&q=term
func (h *InvoiceHandler) Search(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query()["q"]
	if len(terms) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "at least one q parameter is required"})
		return
	}
	vendorID := middleware.VendorID(r.Context())

	result := h.repo.SearchProducts(r.Context(), vendorID, terms, h.searchCap)
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: result.Error})
		return
	}

	expanded := h.svc.Expand(result)
	writeJSON(w, http.StatusOK, expandResponse{
		Result: expanded,
		Stats:  h.svc.Statistics(expanded),
	})
}

// Vendors lists the known vendor IDs.
// GET /v1/vendors
func (h *InvoiceHandler) Vendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.repo.Vendors(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("vendor listing failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	if vendors == nil {
		vendors = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"vendors": vendors})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
