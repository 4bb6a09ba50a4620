package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/spf13/cobra"

	"github.com/finopsys/invoice-engine/internal/cache"
	"github.com/finopsys/invoice-engine/internal/engine"
	"github.com/finopsys/invoice-engine/internal/query"
	"github.com/finopsys/invoice-engine/internal/storage"
)

// demoQuestions walk through the main question shapes against seed data.
var demoQuestions = []string{
	"What items did I purchase?",
	"What is the price of cloud storage?",
	"Show me a breakdown of my invoices",
	"How many invoices do I have?",
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a walkthrough against an in-memory sample database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := sql.Open("sqlite3", ":memory:")
			if err != nil {
				return err
			}
			defer db.Close()
			db.SetMaxOpenConns(1)

			ctx := context.Background()
			repo := storage.NewInvoiceRepository(db, "sqlite", "", logger)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := repo.SeedSampleData(ctx); err != nil {
				return err
			}
			printSuccess("seeded sample invoices for VENDOR123 and VENDOR456")

			analyzer := query.NewAnalyzer(logger, cfg.Engine.ExtractorCacheMax)
			svc := engine.NewService(logger, analyzer, nil, repo, cache.NewMemoryClient(100), engine.Config{
				RowLimit:     cfg.Engine.RowLimit,
				CacheAnswers: true,
				CacheTTL:     time.Minute,
			})

			for _, question := range demoQuestions {
				printInfo("")
				headerColor.Printf("Q: %s\n", question)

				answer, err := svc.Ask(ctx, "VENDOR123", question)
				if err != nil {
					printError("%v", err)
					continue
				}
				if !answer.Result.Success {
					printError("query failed: %s", answer.Result.Error)
					continue
				}
				if answer.Summary != "" {
					printInfo("%s", answer.Summary)
				}
				printResultTable(answer.Result, 10)
			}
			return nil
		},
	}
}
