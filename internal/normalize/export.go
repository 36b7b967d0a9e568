// internal/normalize/export.go
package normalize

import (
	"encoding/csv"
	"sort"
	"strings"

	"github.com/hirio/csvforge/internal/fileio"
	"github.com/hirio/csvforge/internal/history"
	"github.com/hirio/csvforge/internal/textenc"
)

// ExportRequest writes an in-memory row set straight to a file under
// the same atomic-write and path-confinement discipline as normalize,
// skipping detection and validation. Used when the caller already
// holds clean structured data.
type ExportRequest struct {
	Output   string
	Rows     []map[string]string
	Columns  []string // defaults to the first row's keys, sorted
	Encoding string   // defaults to the engine default
	Newline  string   // defaults to the engine default
	Backup   bool

	// ForceQuote quotes every field, matching what listing-import
	// tooling expects.
	ForceQuote bool
	// ExcelFormulaColumns wraps values as ="..." so spreadsheets keep
	// leading zeros in code columns.
	ExcelFormulaColumns []string
	// HintRow, when set, is emitted as a single-cell line above the
	// header.
	HintRow string
}

// ExportResult describes the written file.
type ExportResult struct {
	Path    string   `json:"path"`
	Size    int64    `json:"size"`
	ModTime string   `json:"mtime"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// Export writes the rows to the output path.
func (e *Engine) Export(req ExportRequest) (*ExportResult, error) {
	res, err := e.export(req)

	entry := &history.Entry{Kind: history.KindExport, Output: req.Output, OK: err == nil, Error: errText(err)}
	if res != nil {
		entry.Output = res.Path
		entry.RowsOut = res.Rows
	}
	e.record(entry)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) export(req ExportRequest) (*ExportResult, error) {
	pout, err := e.guard.Resolve(req.Output)
	if err != nil {
		return nil, err
	}

	cols := req.Columns
	if len(cols) == 0 {
		if len(req.Rows) == 0 {
			return nil, ErrNoRows
		}
		for k := range req.Rows[0] {
			cols = append(cols, k)
		}
		sort.Strings(cols)
	}

	enc := e.defs.EncodingOut
	if req.Encoding != "" {
		enc = textenc.Encoding(req.Encoding)
	}
	nl := e.defs.NewlineOut
	if req.Newline != "" {
		nl = textenc.Newline(req.Newline)
	}

	formula := make(map[string]bool, len(req.ExcelFormulaColumns))
	for _, c := range req.ExcelFormulaColumns {
		formula[c] = true
	}

	var b strings.Builder
	if req.ForceQuote {
		renderQuoted(&b, req, cols, formula, nl)
	} else {
		w := csv.NewWriter(&b)
		w.UseCRLF = nl == textenc.CRLF
		if req.HintRow != "" {
			if err := w.Write([]string{req.HintRow}); err != nil {
				return nil, err
			}
		}
		if err := w.Write(cols); err != nil {
			return nil, err
		}
		for _, row := range req.Rows {
			rec := make([]string, len(cols))
			for i, c := range cols {
				rec[i] = cellValue(row[c], formula[c])
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
	}

	data, err := textenc.Encode(b.String(), enc)
	if err != nil {
		return nil, err
	}
	meta, err := fileio.Write(pout, data, req.Backup)
	if err != nil {
		return nil, err
	}

	e.log.Info("exported rows", "output", pout, "rows", len(req.Rows), "columns", len(cols))
	return &ExportResult{
		Path:    meta.Path,
		Size:    meta.Size,
		ModTime: meta.ModTime.Format("2006-01-02T15:04:05"),
		Columns: cols,
		Rows:    len(req.Rows),
	}, nil
}

// renderQuoted writes every field wrapped in double quotes, the layout
// the listing-import tools require.
func renderQuoted(b *strings.Builder, req ExportRequest, cols []string, formula map[string]bool, nl textenc.Newline) {
	term := nl.Terminator()
	writeRow := func(rec []string) {
		for i, v := range rec {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteString(term)
	}
	if req.HintRow != "" {
		writeRow([]string{req.HintRow})
	}
	writeRow(cols)
	for _, row := range req.Rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = cellValue(row[c], formula[c])
		}
		writeRow(rec)
	}
}

// cellValue flattens control characters and optionally applies the
// Excel formula wrapper.
func cellValue(v string, asFormula bool) string {
	v = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(v)
	if asFormula && v != "" {
		return `="` + v + `"`
	}
	return v
}
