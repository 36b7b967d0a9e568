// internal/normalize/inspect.go
package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hirio/csvforge/internal/dialect"
	"github.com/hirio/csvforge/internal/header"
	"github.com/hirio/csvforge/internal/history"
	"github.com/hirio/csvforge/internal/textenc"
)

// InspectRequest asks for a read-only look at a delimited file.
type InspectRequest struct {
	Path       string // relative to an allowed root
	SampleRows int    // data rows to return; minimum 10
}

// Inspection is the result of a read-only probe: detected encoding and
// dialect plus normalized headers and a bounded sample of records.
type Inspection struct {
	Path      string              `json:"path"`
	Size      int64               `json:"size"`
	ModTime   time.Time           `json:"mtime"`
	Encoding  textenc.Encoding    `json:"encoding"`
	Newline   textenc.Newline     `json:"newline"`
	Delimiter string              `json:"delimiter"`
	Quote     string              `json:"quote"`
	HasHeader bool                `json:"has_header"`
	Headers   []string            `json:"headers"`
	Sample    []map[string]string `json:"sample"`
	Warnings  []string            `json:"warnings"`
}

// Inspect reads a bounded prefix of the file and reports how the
// engine would interpret it. No output file is touched.
func (e *Engine) Inspect(req InspectRequest) (*Inspection, error) {
	abs, err := e.guard.Resolve(req.Path)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, req.Path)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	enc := textenc.Detect(data)
	nl := textenc.DetectNewline(data)
	text, lossy := textenc.Decode(data, enc)
	d := dialect.Sniff(text)

	insp := &Inspection{
		Path:      abs,
		Size:      st.Size(),
		ModTime:   st.ModTime(),
		Encoding:  enc,
		Newline:   nl,
		Delimiter: string(d.Delimiter),
		Quote:     string(d.Quote),
		HasHeader: d.HasHeader,
	}
	if lossy {
		insp.Warnings = append(insp.Warnings, "undecodable bytes were replaced during decoding")
	}

	sampleRows := req.SampleRows
	if sampleRows < 10 {
		sampleRows = 10
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = d.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for len(rows) < sampleRows+1 {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			insp.Warnings = append(insp.Warnings, fmt.Sprintf("parse: %v", err))
			break
		}
		rows = append(rows, rec)
	}

	if d.HasHeader && len(rows) > 0 {
		headers, warns := header.Apply(rows[0], nil)
		insp.Headers = headers
		insp.Warnings = append(insp.Warnings, warns...)
		for _, rec := range rows[1:] {
			insp.Sample = append(insp.Sample, recordMap(headers, rec))
		}
	} else {
		for _, rec := range rows {
			insp.Sample = append(insp.Sample, recordMap(nil, rec))
		}
	}

	e.record(&history.Entry{Kind: history.KindInspect, Input: abs, RowsIn: len(insp.Sample), OK: true})
	e.log.Debug("inspected file",
		"path", abs,
		"encoding", enc,
		"newline", nl,
		"delimiter", dialect.DelimiterName(d.Delimiter),
		"has_header", d.HasHeader,
	)
	return insp, nil
}

// recordMap builds a column→value map, synthesizing positional names
// for cells beyond the header width.
func recordMap(headers []string, rec []string) map[string]string {
	n := len(rec)
	if len(headers) > n {
		n = len(headers)
	}
	out := make(map[string]string, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("c%d", i)
		if i < len(headers) && headers[i] != "" {
			key = headers[i]
		}
		val := ""
		if i < len(rec) {
			val = rec[i]
		}
		out[key] = val
	}
	return out
}
