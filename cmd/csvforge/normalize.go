package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hirio/csvforge/internal/normalize"
	"github.com/hirio/csvforge/internal/preset"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <relpath-in> <relpath-out>",
	Short: "Rewrite one file into the canonical schema",
	Long: `Normalize a delimited file: detect its encoding and dialect, map its
headers, validate every row, and atomically write the result.

Validation issues never block the output; they are counted in the
report and, with --report, written to a report file.

Examples:
  csvforge normalize in/products.csv out/products_norm.csv --preset listing
  csvforge normalize in/a.csv out/a.csv --map "JAN=jan" --require jan --report out/a__report.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runNormalizeCmd,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	f := normalizeCmd.Flags()
	f.String("preset", "", "Preset name")
	f.String("report", "", "Issue report destination (relative path)")
	f.Bool("backup", true, "Keep a timestamped backup of an overwritten output")
	f.String("encoding-in", "auto", "Input encoding (auto|utf-8|utf-8-sig|cp932|latin-1)")
	f.String("encoding-out", "", "Output encoding (default: preset, then config)")
	f.String("newline", "", "Output newline (CRLF|LF)")
	f.StringSlice("map", nil, "Header rename SOURCE=TARGET (repeatable)")
	f.StringSlice("require", nil, "Required canonical headers")
	f.StringSlice("order", nil, "Output column order")
	f.Bool("trim", true, "Trim cell whitespace")
	f.Bool("drop-empty", true, "Drop rows whose cells are all empty")
	f.Bool("strict-order", false, "Fail when --order names a column the input lacks")
}

func runNormalizeCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	f := cmd.Flags()
	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return err
	}

	presetName, _ := f.GetString("preset")
	reportPath, _ := f.GetString("report")
	backup, _ := f.GetBool("backup")
	encodingIn, _ := f.GetString("encoding-in")

	rep, err := a.engine.Normalize(normalize.Request{
		Input:      args[0],
		Output:     args[1],
		Preset:     presetName,
		EncodingIn: encodingIn,
		ReportPath: reportPath,
		Backup:     backup,
		Options:    opts,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(rep)
		return nil
	}
	fmt.Printf("%s -> %s\n", rep.Input, rep.Output)
	fmt.Printf("  encoding: %s -> %s (%s)\n", rep.EncodingIn, rep.EncodingOut, rep.Newline)
	fmt.Printf("  rows:     %d in, %d out\n", rep.RowsIn, rep.RowsOut)
	fmt.Printf("  issues:   %d\n", rep.Issues)
	for _, w := range rep.Warnings {
		fmt.Printf("  warning:  %s\n", w)
	}
	if rep.ReportFile != nil {
		fmt.Printf("  report:   %s\n", rep.ReportFile.Path)
	}
	return nil
}

// optionsFromFlags builds preset overrides, only setting fields whose
// flags the user actually passed so preset values survive the merge.
func optionsFromFlags(cmd *cobra.Command) (preset.Options, error) {
	f := cmd.Flags()
	var opts preset.Options

	pairs, _ := f.GetStringSlice("map")
	if len(pairs) > 0 {
		opts.HeaderMap = map[string]string{}
		for _, pair := range pairs {
			src, dst, ok := strings.Cut(pair, "=")
			if !ok {
				return opts, fmt.Errorf("bad --map entry %q (want SOURCE=TARGET)", pair)
			}
			opts.HeaderMap[src] = dst
		}
	}
	opts.RequiredHeaders, _ = f.GetStringSlice("require")
	opts.Order, _ = f.GetStringSlice("order")

	if f.Changed("trim") {
		v, _ := f.GetBool("trim")
		opts.TrimWhitespace = &v
	}
	if f.Changed("drop-empty") {
		v, _ := f.GetBool("drop-empty")
		opts.DropEmptyRows = &v
	}
	if f.Changed("strict-order") {
		v, _ := f.GetBool("strict-order")
		opts.StrictOrder = &v
	}
	if f.Changed("encoding-out") {
		v, _ := f.GetString("encoding-out")
		opts.EncodingOut = &v
	}
	if f.Changed("newline") {
		v, _ := f.GetString("newline")
		opts.NewlineOut = &v
	}
	return opts, nil
}
