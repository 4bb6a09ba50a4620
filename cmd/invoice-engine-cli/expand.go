package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/finopsys/invoice-engine/internal/expansion"
	"github.com/finopsys/invoice-engine/internal/query"
)

func newExpandCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand a JSON result set into line-item rows",
		Long: `Reads {"columns": [...], "rows": [[...], ...]} from a file or stdin and
expands packed item-array fields into one row per line item.`,
		Example: `  invoice-engine expand --file results.json
  cat results.json | invoice-engine expand`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in io.Reader = os.Stdin
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			var payload struct {
				Columns []string        `json:"columns"`
				Rows    [][]interface{} `json:"rows"`
			}
			if err := json.NewDecoder(in).Decode(&payload); err != nil {
				return fmt.Errorf("decode input: %w", err)
			}

			expander := expansion.NewResultSetExpander(logger)
			result := expander.ExpandResultSet(expansion.QueryResult{
				Success: true,
				Columns: payload.Columns,
				Rows:    payload.Rows,
				Source:  "file",
			})

			if flagJSON {
				return printJSON(result)
			}

			if !result.ItemsExpanded {
				printInfo("nothing to expand: no item-array columns or no parseable items")
				printResultTable(result, 50)
				return nil
			}

			stats := query.NewResponseFormatter(logger).ItemStatistics(result)
			printSuccess("%d rows expanded to %d line items", result.OriginalRowCount, result.ExpandedRowCount)
			printInfo("total value: $%.2f | unique invoices: %d", stats.TotalValue, stats.UniqueInvoices)
			printInfo("")
			printResultTable(result, 50)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "input file (defaults to stdin)")
	return cmd
}
