package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/finopsys/invoice-engine/internal/expansion"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

func setColorMode(enabled bool) {
	color.NoColor = !enabled
}

func printSuccess(format string, args ...interface{}) {
	successColor.Printf("✓ "+format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	infoColor.Printf(format+"\n", args...)
}

// newSpinner starts a terminal spinner with the given message.
func newSpinner(message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	return s
}

// printJSON emits v as indented JSON on stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResultTable renders a query result as an aligned text table,
// truncating wide cells.
func printResultTable(result expansion.QueryResult, maxRows int) {
	if len(result.Columns) == 0 || len(result.Rows) == 0 {
		printInfo("(no rows)")
		return
	}

	widths := make([]int, len(result.Columns))
	for i, col := range result.Columns {
		widths[i] = len(col)
	}
	rows := result.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	cells := make([][]string, len(rows))
	for ri, row := range rows {
		cells[ri] = make([]string, len(result.Columns))
		for ci := range result.Columns {
			var s string
			if ci < len(row) {
				s = cellText(row[ci])
			}
			if len(s) > 32 {
				s = s[:29] + "..."
			}
			cells[ri][ci] = s
			if len(s) > widths[ci] {
				widths[ci] = len(s)
			}
		}
	}

	var header strings.Builder
	for i, col := range result.Columns {
		fmt.Fprintf(&header, "%-*s  ", widths[i], col)
	}
	headerColor.Println(strings.TrimRight(header.String(), " "))

	for _, row := range cells {
		var line strings.Builder
		for i, cell := range row {
			fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
		}
		fmt.Println(strings.TrimRight(line.String(), " "))
	}

	if maxRows > 0 && len(result.Rows) > maxRows {
		printInfo("... %d more rows", len(result.Rows)-maxRows)
	}
}

func cellText(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
