// internal/normalize/report.go
package normalize

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/hirio/csvforge/internal/fileio"
	"github.com/hirio/csvforge/internal/textenc"
	"github.com/hirio/csvforge/internal/validate"
)

// reportColumns is the persisted report layout. Downstream tooling
// parses these files; the column order and names are a stability
// contract and must not change without a version bump.
var reportColumns = []string{"row", "column", "rule", "value", "message"}

// writeIssueReport renders the issue list as a delimited file and
// writes it atomically. Reports are always UTF-8 with a BOM so
// spreadsheet tools open them correctly.
func writeIssueReport(path string, issues []validate.Issue, nl textenc.Newline) (fileio.Meta, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.UseCRLF = nl == textenc.CRLF
	if err := w.Write(reportColumns); err != nil {
		return fileio.Meta{}, fmt.Errorf("render report: %w", err)
	}
	for _, is := range issues {
		rec := []string{strconv.Itoa(is.Row), is.Column, string(is.Rule), is.Value, is.Message}
		if err := w.Write(rec); err != nil {
			return fileio.Meta{}, fmt.Errorf("render report: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fileio.Meta{}, fmt.Errorf("render report: %w", err)
	}

	data, err := textenc.Encode(b.String(), textenc.UTF8WithBOM)
	if err != nil {
		return fileio.Meta{}, err
	}
	return fileio.Write(path, data, true)
}
