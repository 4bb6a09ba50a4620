package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/finopsys/invoice-engine/cmd/invoice-engine-api/handlers"
	"github.com/finopsys/invoice-engine/cmd/invoice-engine-api/middleware"
	"github.com/finopsys/invoice-engine/internal/config"
	"github.com/finopsys/invoice-engine/internal/engine"
	"github.com/finopsys/invoice-engine/internal/observability"
	"github.com/finopsys/invoice-engine/internal/storage"
)

func newRouter(cfg *config.Config, logger *observability.Logger, svc *engine.Service, repo *storage.InvoiceRepository) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	qh := handlers.NewQueryHandler(svc, logger)
	ih := handlers.NewInvoiceHandler(repo, svc, cfg.Engine.ProductSearchCap, logger)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/vendors", ih.Vendors)

		r.Group(func(r chi.Router) {
			r.Use(middleware.VendorScope)
			r.Post("/ask", qh.Ask)
			r.Post("/query/analyze", qh.Analyze)
			r.Post("/results/expand", qh.Expand)
			r.Get("/invoices/recent", ih.Recent)
			r.Get("/invoices/{caseID}/items", ih.Items)
			r.Get("/products/search", ih.Search)
		})
	})

	return r
}
