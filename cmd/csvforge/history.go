package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hirio/csvforge/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `List recent runs from the history database, most recent first.

Examples:
  csvforge history
  csvforge history --kind normalize --failed --limit 50`,
	RunE: runHistoryCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("kind", "", "Filter by kind (inspect|normalize|export|bulk)")
	historyCmd.Flags().Bool("failed", false, "Only failed runs")
	historyCmd.Flags().Int("limit", 20, "Maximum entries")
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.history == nil {
		return fmt.Errorf("history is disabled in the config")
	}

	kind, _ := cmd.Flags().GetString("kind")
	failedOnly, _ := cmd.Flags().GetBool("failed")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := history.Filter{Kind: kind, Limit: limit}
	if failedOnly {
		ok := false
		filter.OK = &ok
	}

	entries, err := a.history.List(filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(entries)
		return nil
	}
	for _, e := range entries {
		status := "ok"
		if !e.OK {
			status = "FAIL"
		}
		fmt.Printf("%s  %-9s %-4s %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, status, e.Input)
		if e.Output != "" {
			fmt.Printf(" -> %s", e.Output)
		}
		if e.Kind == history.KindNormalize {
			fmt.Printf(" (%d/%d rows, %d issues)", e.RowsOut, e.RowsIn, e.Issues)
		}
		if e.Error != "" {
			fmt.Printf(": %s", e.Error)
		}
		fmt.Println()
	}
	return nil
}
