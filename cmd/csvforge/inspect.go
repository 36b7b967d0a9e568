package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hirio/csvforge/internal/normalize"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <relpath>",
	Short: "Probe a delimited file without writing anything",
	Long: `Detect encoding, newline convention, and dialect of a file, and show
its normalized headers plus a sample of records.

Examples:
  csvforge inspect incoming/products.csv
  csvforge inspect incoming/products.csv --rows 20 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspectCmd,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Int("rows", 10, "Sample rows to show")
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	rows, _ := cmd.Flags().GetInt("rows")
	insp, err := a.engine.Inspect(normalize.InspectRequest{Path: args[0], SampleRows: rows})
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(insp)
		return nil
	}

	fmt.Printf("%s (%d bytes)\n", insp.Path, insp.Size)
	fmt.Printf("  encoding:  %s\n", insp.Encoding)
	fmt.Printf("  newline:   %s\n", insp.Newline)
	fmt.Printf("  delimiter: %q\n", insp.Delimiter)
	fmt.Printf("  header:    %v\n", insp.HasHeader)
	if len(insp.Headers) > 0 {
		fmt.Printf("  columns:   %s\n", strings.Join(insp.Headers, ", "))
	}
	for _, w := range insp.Warnings {
		fmt.Printf("  warning:   %s\n", w)
	}
	fmt.Printf("  sample:    %d rows\n", len(insp.Sample))
	return nil
}
