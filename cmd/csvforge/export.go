package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hirio/csvforge/internal/normalize"
)

var exportCmd = &cobra.Command{
	Use:   "export <relpath-out>",
	Short: "Write structured rows straight to a delimited file",
	Long: `Export rows read as JSON from stdin (an array of objects) to a file,
using the same atomic-write and path-confinement discipline as
normalize but skipping detection and validation.

Examples:
  echo '[{"jan":"490123","title":"Widget"}]' | csvforge export out/listing.csv --columns jan,title
  cat rows.json | csvforge export out/listing.csv --force-quote --formula-columns jan --encoding-out cp932`,
	Args: cobra.ExactArgs(1),
	RunE: runExportCmd,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	f := exportCmd.Flags()
	f.StringSlice("columns", nil, "Output columns (default: first row's keys, sorted)")
	f.String("encoding-out", "", "Output encoding (default: config)")
	f.String("newline", "", "Output newline (CRLF|LF)")
	f.Bool("backup", true, "Keep a timestamped backup of an overwritten output")
	f.Bool("force-quote", false, "Quote every field")
	f.StringSlice("formula-columns", nil, "Columns to wrap as =\"...\" for spreadsheets")
	f.String("hint-row", "", "Single-cell line emitted above the header")
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	var rows []map[string]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parse rows: %w", err)
	}

	f := cmd.Flags()
	columns, _ := f.GetStringSlice("columns")
	encodingOut, _ := f.GetString("encoding-out")
	newline, _ := f.GetString("newline")
	backup, _ := f.GetBool("backup")
	forceQuote, _ := f.GetBool("force-quote")
	formulaCols, _ := f.GetStringSlice("formula-columns")
	hintRow, _ := f.GetString("hint-row")

	res, err := a.engine.Export(normalize.ExportRequest{
		Output:              args[0],
		Rows:                rows,
		Columns:             columns,
		Encoding:            encodingOut,
		Newline:             newline,
		Backup:              backup,
		ForceQuote:          forceQuote,
		ExcelFormulaColumns: formulaCols,
		HintRow:             hintRow,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}
	fmt.Printf("%s (%d rows, %d bytes)\n", res.Path, res.Rows, res.Size)
	return nil
}
