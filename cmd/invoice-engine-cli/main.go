// Invoice Engine CLI: ask, analyze, and expand invoice line-item data from
// the terminal.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/finopsys/invoice-engine/internal/cache"
	"github.com/finopsys/invoice-engine/internal/config"
	"github.com/finopsys/invoice-engine/internal/engine"
	"github.com/finopsys/invoice-engine/internal/llm"
	"github.com/finopsys/invoice-engine/internal/observability"
	"github.com/finopsys/invoice-engine/internal/query"
	"github.com/finopsys/invoice-engine/internal/storage"
)

var (
	flagConfig  string
	flagVendor  string
	flagJSON    bool
	flagNoColor bool
	flagVerbose bool

	cfg    *config.Config
	logger *observability.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "invoice-engine",
		Short: "Query invoice line items with natural language",
		Long: `Invoice Engine expands invoices that pack multiple line items into
array-encoded fields, and answers natural-language questions about them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load(flagConfig)
			if err != nil {
				return err
			}

			level := "warn"
			if flagVerbose {
				level = "debug"
			}
			logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      "console",
				Output:      cmd.ErrOrStderr(),
				ServiceName: "invoice-engine-cli",
			})

			setColorMode(!flagNoColor)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&flagVendor, "vendor", "", "vendor ID scope")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON instead of formatted text")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(newAskCmd(), newAnalyzeCmd(), newExpandCmd(), newInvoicesCmd(), newSearchCmd(), newDemoCmd())

	if err := root.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// newRepository opens the configured database. The returned cleanup
// closes the connection.
func newRepository() (*storage.InvoiceRepository, func(), error) {
	driverName := "sqlite3"
	if cfg.Database.Driver == "postgres" {
		driverName = "postgres"
	}
	db, err := sql.Open(driverName, cfg.DatabaseDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	repo := storage.NewInvoiceRepository(db, cfg.Database.Driver, cfg.Database.Schema, logger)
	return repo, func() { db.Close() }, nil
}

// newEngineService wires a full service over the configured database.
func newEngineService() (*engine.Service, func(), error) {
	repo, cleanup, err := newRepository()
	if err != nil {
		return nil, nil, err
	}

	var generator llm.SQLGenerator
	if cfg.LLM.Provider == "gemini" {
		generator = llm.NewGeminiGenerator(llm.GeminiConfig{
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			RowLimit: cfg.Engine.RowLimit,
		}, logger)
	}

	analyzer := query.NewAnalyzer(logger, cfg.Engine.ExtractorCacheMax)
	svc := engine.NewService(logger, analyzer, generator, repo, cache.NewMemoryClient(cfg.Cache.MaxEntries), engine.Config{
		RowLimit:     cfg.Engine.RowLimit,
		CacheAnswers: cfg.Engine.CacheAnswers,
		CacheTTL:     cfg.Cache.TTL,
	})
	return svc, cleanup, nil
}

// requireVendor resolves the vendor scope from --vendor or VENDOR_ID.
func requireVendor() (string, error) {
	if flagVendor != "" {
		return flagVendor, nil
	}
	if v := os.Getenv("VENDOR_ID"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("vendor scope required: pass --vendor or set VENDOR_ID")
}
