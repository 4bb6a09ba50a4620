package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a natural-language question about invoice line items",
		Example: `  invoice-engine ask --vendor VENDOR123 "What is the price of cloud storage?"
  invoice-engine ask --vendor VENDOR123 "What items did I purchase last month?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vendorID, err := requireVendor()
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")

			svc, cleanup, err := newEngineService()
			if err != nil {
				return err
			}
			defer cleanup()

			sp := newSpinner("answering...")
			answer, err := svc.Ask(context.Background(), vendorID, question)
			sp.Stop()
			if err != nil {
				return err
			}

			if flagJSON {
				return printJSON(answer)
			}

			if !answer.Result.Success {
				printError("query failed: %s", answer.Result.Error)
				return nil
			}

			if answer.Summary != "" {
				printSuccess("%s", answer.Summary)
				printInfo("")
			}
			printResultTable(answer.Result, 25)
			printInfo("")
			printInfo("intent: %s | rows: %d | took: %dms | cached: %t",
				answer.Analysis.Intent, len(answer.Result.Rows), answer.TookMs, answer.Cached)
			return nil
		},
	}
}
