package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/finopsys/invoice-engine/internal/expansion"
	"github.com/finopsys/invoice-engine/internal/query"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <product>...",
		Short: "Find a vendor's line items mentioning the given products",
		Example: `  invoice-engine search --vendor VENDOR123 "cloud storage"
  invoice-engine search --vendor VENDOR123 consulting training`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vendorID, err := requireVendor()
			if err != nil {
				return err
			}

			repo, cleanup, err := newRepository()
			if err != nil {
				return err
			}
			defer cleanup()

			result := repo.SearchProducts(context.Background(), vendorID, args, cfg.Engine.ProductSearchCap)
			if !result.Success {
				printError("search failed: %s", result.Error)
				return nil
			}

			expanded := expansion.NewResultSetExpander(logger).ExpandResultSet(result)
			if flagJSON {
				return printJSON(expanded)
			}

			if len(expanded.Rows) == 0 {
				printInfo("no invoices mention: %s", joinOrNone(args))
				return nil
			}

			stats := query.NewResponseFormatter(logger).ItemStatistics(expanded)
			printSuccess("%d line items across %d invoices", stats.TotalLineItems, stats.UniqueInvoices)
			if stats.TotalValue > 0 {
				printInfo("total value: $%.2f", stats.TotalValue)
			}
			printInfo("")
			printResultTable(expanded, 50)
			return nil
		},
	}
}
