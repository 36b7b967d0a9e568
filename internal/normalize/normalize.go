// internal/normalize/normalize.go
package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hirio/csvforge/internal/dialect"
	"github.com/hirio/csvforge/internal/fileio"
	"github.com/hirio/csvforge/internal/header"
	"github.com/hirio/csvforge/internal/history"
	"github.com/hirio/csvforge/internal/preset"
	"github.com/hirio/csvforge/internal/textenc"
	"github.com/hirio/csvforge/internal/validate"
)

// Request describes one normalization run. Paths are relative to the
// allowed roots. Options override preset values field by field;
// anything unset falls through to the preset, then to the defaults.
type Request struct {
	Input      string
	Output     string
	Preset     string
	EncodingIn string // "" or "auto" detects from the bytes
	ReportPath string // optional; issue report destination
	Backup     bool   // keep a timestamped backup of an overwritten output
	Options    preset.Options
}

// Report is the machine-readable outcome of one normalization.
type Report struct {
	Input       string                `json:"input"`
	Output      string                `json:"output"`
	EncodingIn  textenc.Encoding      `json:"encoding_in"`
	EncodingOut textenc.Encoding      `json:"encoding_out"`
	Newline     textenc.Newline       `json:"newline"`
	RowsIn      int                   `json:"rows_in"`
	RowsOut     int                   `json:"rows_out"`
	OutSize     int64                 `json:"out_size"`
	OutModTime  time.Time             `json:"out_mtime"`
	HeadersIn   []string              `json:"headers_in"`
	HeadersOut  []string              `json:"headers_out"`
	Warnings    []string              `json:"warnings,omitempty"`
	Issues      int                   `json:"issues"`
	ByRule      map[validate.Kind]int `json:"by_rule,omitempty"`
	ReportFile  *fileio.Meta          `json:"report_file,omitempty"`
}

// Normalize rewrites one delimited file into the canonical schema and
// validates every row. Validation issues are observations: they are
// reported, never fatal. Missing required headers are fatal and leave
// the output untouched.
func (e *Engine) Normalize(req Request) (*Report, error) {
	rep, err := e.normalize(req)

	entry := &history.Entry{Kind: history.KindNormalize, Input: req.Input, Output: req.Output, OK: err == nil, Error: errText(err)}
	if rep != nil {
		entry.Input = rep.Input
		entry.Output = rep.Output
		entry.RowsIn = rep.RowsIn
		entry.RowsOut = rep.RowsOut
		entry.Issues = rep.Issues
	}
	e.record(entry)

	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (e *Engine) normalize(req Request) (*Report, error) {
	eff, err := preset.Resolve(e.presets, req.Preset, req.Options, e.defs)
	if err != nil {
		return nil, err
	}

	pin, err := e.guard.Resolve(req.Input)
	if err != nil {
		return nil, err
	}
	pout, err := e.guard.Resolve(req.Output)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(pin)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, req.Input)
		}
		return nil, fmt.Errorf("read input: %w", err)
	}

	// Detect
	encIn := textenc.Encoding(req.EncodingIn)
	if req.EncodingIn == "" || req.EncodingIn == "auto" {
		encIn = textenc.Detect(data)
	}
	var warnings []string
	text, lossy := textenc.Decode(data, encIn)
	if lossy {
		warnings = append(warnings, "undecodable bytes were replaced during decoding")
	}

	// Sniff
	d := dialect.Sniff(text)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = d.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	// Header row (or positional names for headerless input)
	first, err := r.Read()
	if err == io.EOF {
		first = nil
	} else if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	var mapped []string
	headerConsumed := d.HasHeader
	if d.HasHeader {
		var warns []string
		mapped, warns = header.Apply(first, eff.HeaderMap)
		warnings = append(warnings, warns...)
	} else {
		mapped = header.Positional(len(first))
	}

	// Required headers, after mapping
	if missing := missingHeaders(eff.RequiredHeaders, mapped); len(missing) > 0 {
		return nil, &MissingHeadersError{Missing: missing, Suggestions: suggestHeaders(missing, mapped)}
	}

	// Output column order
	outCols := eff.Order
	if len(outCols) == 0 {
		outCols = mapped
	} else if eff.StrictOrder {
		if unknown := missingHeaders(outCols, mapped); len(unknown) > 0 {
			return nil, &UnknownColumnsError{Columns: unknown}
		}
	}

	validator, err := validate.NewRowValidator(outCols, eff.Validate)
	if err != nil {
		return nil, fmt.Errorf("validation rules: %w", err)
	}

	var out strings.Builder
	w := csv.NewWriter(&out)
	w.UseCRLF = eff.NewlineOut == textenc.CRLF
	if err := w.Write(outCols); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	rowsIn, rowsOut := 0, 0
	feed := func(rec []string, rowNum int) error {
		row := make(map[string]string, len(mapped))
		for i := 0; i < len(mapped) || i < len(rec); i++ {
			key := fmt.Sprintf("c%d", i)
			if i < len(mapped) {
				key = mapped[i]
			}
			val := ""
			if i < len(rec) {
				val = rec[i]
			}
			if eff.TrimWhitespace {
				val = strings.TrimSpace(val)
			}
			row[key] = val
		}

		outRow := make([]string, len(outCols))
		allEmpty := true
		rowDict := make(map[string]string, len(outCols))
		for i, col := range outCols {
			outRow[i] = row[col] // absent columns fill with ""
			rowDict[col] = outRow[i]
			if outRow[i] != "" {
				allEmpty = false
			}
		}
		validator.Feed(rowDict, rowNum)

		if eff.DropEmptyRows && allEmpty {
			return nil
		}
		if err := w.Write(outRow); err != nil {
			return err
		}
		rowsOut++
		return nil
	}

	// A headerless first row is data too.
	if !headerConsumed && first != nil {
		rowsIn++
		if err := feed(first, rowsIn); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse row %d: %w", rowsIn+2, err)
		}
		rowsIn++
		// Header counts as row 1, so data row N is file row N+1.
		rowNum := rowsIn
		if headerConsumed {
			rowNum = rowsIn + 1
		}
		if err := feed(rec, rowNum); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render output: %w", err)
	}

	encoded, err := textenc.Encode(out.String(), eff.EncodingOut)
	if err != nil {
		return nil, err
	}
	meta, err := fileio.Write(pout, encoded, req.Backup)
	if err != nil {
		return nil, err
	}

	issues := validator.Finalize()
	rep := &Report{
		Input:       pin,
		Output:      pout,
		EncodingIn:  encIn,
		EncodingOut: eff.EncodingOut,
		Newline:     eff.NewlineOut,
		RowsIn:      rowsIn,
		RowsOut:     rowsOut,
		OutSize:     meta.Size,
		OutModTime:  meta.ModTime,
		HeadersIn:   mapped,
		HeadersOut:  outCols,
		Warnings:    warnings,
		Issues:      len(issues),
		ByRule:      validate.Summary(issues),
	}

	if req.ReportPath != "" {
		prep, err := e.guard.Resolve(req.ReportPath)
		if err != nil {
			return nil, err
		}
		rmeta, err := writeIssueReport(prep, issues, eff.NewlineOut)
		if err != nil {
			return nil, err
		}
		rep.ReportFile = &rmeta
	}

	e.log.Info("normalized file",
		"input", pin,
		"output", pout,
		"rows_in", rowsIn,
		"rows_out", rowsOut,
		"issues", len(issues),
	)
	return rep, nil
}

// missingHeaders returns the entries of want absent from have,
// preserving want's order.
func missingHeaders(want, have []string) []string {
	present := make(map[string]bool, len(have))
	for _, h := range have {
		present[h] = true
	}
	var missing []string
	for _, h := range want {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

func suggestHeaders(missing, available []string) map[string]string {
	out := map[string]string{}
	for _, m := range missing {
		if s := header.Suggest(m, available); s != "" {
			out[m] = s
		}
	}
	return out
}
