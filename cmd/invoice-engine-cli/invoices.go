package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newInvoicesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "invoices",
		Short:   "List a vendor's most recent invoices",
		Example: `  invoice-engine invoices --vendor VENDOR123 --limit 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vendorID, err := requireVendor()
			if err != nil {
				return err
			}

			repo, cleanup, err := newRepository()
			if err != nil {
				return err
			}
			defer cleanup()

			result := repo.RecentInvoices(context.Background(), vendorID, limit)
			if !result.Success {
				printError("query failed: %s", result.Error)
				return nil
			}

			if flagJSON {
				return printJSON(result)
			}
			printResultTable(result, limit)
			printInfo("")
			printInfo("%d invoice(s) for %s", len(result.Rows), vendorID)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "maximum invoices to list")
	return cmd
}
