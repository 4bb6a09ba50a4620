package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/finopsys/invoice-engine/internal/query"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <question>",
		Short: "Classify a question without executing it",
		Example: `  invoice-engine analyze "What is the price of cloud storage?"
  invoice-engine analyze "How many invoices do I have?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			analyzer := query.NewAnalyzer(logger, cfg.Engine.ExtractorCacheMax)
			analysis := analyzer.Analyze(question)

			if flagJSON {
				return printJSON(analysis)
			}

			printInfo("question:   %s", analysis.Question)
			printInfo("item query: %t", analysis.IsItemQuery)
			printInfo("products:   %s", joinOrNone(analysis.ExtractedProducts))
			printInfo("intent:     %s", analysis.Intent)
			printInfo("columns:    %s", strings.Join(analysis.RequiredColumns, ", "))
			if analysis.Hints.WhereHint != "" {
				printInfo("filter:     %s", analysis.Hints.WhereHint)
			}
			printInfo("ordering:   %s", analysis.Hints.OrderHint)
			return nil
		},
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
