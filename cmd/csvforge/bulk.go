package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hirio/csvforge/internal/bulk"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <subpath>",
	Short: "Normalize every matching file under a directory",
	Long: `Discover files matching a pattern under a subdirectory of the allowed
roots and normalize each one. Per-file failures are recorded and do
not abort the batch unless --fail-fast is set.

Examples:
  csvforge bulk incoming --pattern "*.csv" --preset listing
  csvforge bulk incoming --recursive --dry-run
  csvforge bulk incoming --fail-fast --workers 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBulkCmd,
}

func init() {
	rootCmd.AddCommand(bulkCmd)
	f := bulkCmd.Flags()
	f.String("pattern", "*.csv", "Filename glob")
	f.Bool("recursive", false, "Recurse into subdirectories")
	f.String("output-dir", "", "Output subdirectory (default: config output.dir)")
	f.String("suffix", "", "Output name suffix (default: config output.suffix)")
	f.String("report-dir", "", "Report subdirectory; empty disables reports")
	f.String("preset", "", "Preset name")
	f.String("encoding-in", "auto", "Input encoding")
	f.Bool("backup", true, "Back up overwritten outputs")
	f.Bool("dry-run", false, "List matches without touching any file")
	f.Bool("fail-fast", false, "Stop on the first per-file failure")
	f.Bool("require-match", false, "Fail when the pattern matches no files")
	f.Int("workers", 1, "Parallel file workers")

	// Per-file override flags shared with normalize.
	f.StringSlice("map", nil, "Header rename SOURCE=TARGET (repeatable)")
	f.StringSlice("require", nil, "Required canonical headers")
	f.StringSlice("order", nil, "Output column order")
	f.Bool("trim", true, "Trim cell whitespace")
	f.Bool("drop-empty", true, "Drop rows whose cells are all empty")
	f.Bool("strict-order", false, "Fail when --order names a column the input lacks")
	f.String("encoding-out", "", "Output encoding")
	f.String("newline", "", "Output newline (CRLF|LF)")
}

func runBulkCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	subpath := ""
	if len(args) > 0 {
		subpath = args[0]
	}
	pattern, _ := f.GetString("pattern")
	recursive, _ := f.GetBool("recursive")
	outputDir, _ := f.GetString("output-dir")
	suffix, _ := f.GetString("suffix")
	reportDir, _ := f.GetString("report-dir")
	presetName, _ := f.GetString("preset")
	encodingIn, _ := f.GetString("encoding-in")
	backup, _ := f.GetBool("backup")
	dryRun, _ := f.GetBool("dry-run")
	failFast, _ := f.GetBool("fail-fast")
	requireMatch, _ := f.GetBool("require-match")
	workers, _ := f.GetInt("workers")

	if outputDir == "" {
		outputDir = a.cfg.Output.Dir
	}
	if suffix == "" {
		suffix = a.cfg.Output.Suffix
	}

	rep, err := a.bulk.Run(cmd.Context(), bulk.Request{
		Subpath:      subpath,
		Pattern:      pattern,
		Recursive:    recursive,
		OutputDir:    outputDir,
		OutSuffix:    suffix,
		ReportDir:    reportDir,
		Preset:       presetName,
		EncodingIn:   encodingIn,
		Backup:       backup,
		Options:      opts,
		DryRun:       dryRun,
		FailFast:     failFast,
		RequireMatch: requireMatch,
		Workers:      workers,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(rep)
		return nil
	}
	if dryRun {
		fmt.Printf("matched %d files\n", rep.Matched)
		for _, p := range rep.Preview {
			fmt.Printf("  %s\n", p)
		}
		return nil
	}
	fmt.Printf("matched %d, succeeded %d, failed %d", rep.Matched, rep.Succeeded, rep.Failed)
	if rep.Skipped > 0 {
		fmt.Printf(", skipped %d", rep.Skipped)
	}
	fmt.Printf(" (%d issues)\n", rep.TotalIssues)
	for _, item := range rep.Items {
		if item.OK {
			fmt.Printf("  ok   %s -> %s (%d issues)\n", item.Input, item.Output, item.Issues)
		} else {
			fmt.Printf("  FAIL %s: %s\n", item.Input, item.Error)
		}
	}
	return nil
}
