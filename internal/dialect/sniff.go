// Package dialect infers how a delimited text file is structured.
package dialect

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// Dialect describes the field delimiter, quote character, and header
// presence of a delimited file.
type Dialect struct {
	Delimiter rune
	Quote     rune
	HasHeader bool
}

// Default is what Sniff falls back to when the sample is too thin to
// infer anything.
var Default = Dialect{Delimiter: ',', Quote: '"', HasHeader: true}

// sampleLimit bounds how much text Sniff inspects.
const sampleLimit = 4096

// candidate delimiters, tried in preference order.
var candidates = []rune{',', '\t', ';'}

// Sniff infers the dialect from a bounded prefix of decoded text.
// The delimiter producing the most consistent multi-field row shape
// across sample lines wins; header presence is decided by comparing
// the numeric shape of the first row against the rows after it.
func Sniff(text string) Dialect {
	sample := text
	if len(sample) > sampleLimit {
		sample = sample[:sampleLimit]
		// Drop the trailing partial line so it cannot skew field counts.
		if i := strings.LastIndexByte(sample, '\n'); i > 0 {
			sample = sample[:i]
		}
	}

	d := Default
	best := -1
	for _, delim := range candidates {
		rows := parseSample(sample, delim)
		score := consistency(rows)
		if score > best {
			best = score
			d.Delimiter = delim
			d.HasHeader = looksLikeHeader(rows)
		}
	}
	return d
}

// parseSample reads the sample leniently with the given delimiter.
func parseSample(sample string, delim rune) [][]string {
	r := csv.NewReader(strings.NewReader(sample))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		rows = append(rows, rec)
		if len(rows) >= 20 {
			break
		}
	}
	return rows
}

// consistency scores a delimiter: rows must split into more than one
// field, and the more rows sharing the modal field count the better.
func consistency(rows [][]string) int {
	if len(rows) == 0 {
		return -1
	}
	counts := map[int]int{}
	for _, row := range rows {
		counts[len(row)]++
	}
	bestWidth, bestRows := 0, 0
	for width, n := range counts {
		if n > bestRows || (n == bestRows && width > bestWidth) {
			bestWidth, bestRows = width, n
		}
	}
	if bestWidth < 2 {
		return -1
	}
	// Weight agreement over raw width so a ragged wide split loses to
	// a clean narrow one.
	return bestRows*10 + bestWidth
}

// looksLikeHeader reports whether row 1 is a header: no cell of the
// first row parses as a number while later rows contain numeric cells
// in the same columns.
func looksLikeHeader(rows [][]string) bool {
	if len(rows) < 2 {
		return true
	}
	first := rows[0]
	for i, cell := range first {
		if isNumeric(cell) {
			return false
		}
		// A column that is text in row 1 but numeric below suggests a header.
		for _, row := range rows[1:] {
			if i < len(row) && isNumeric(row[i]) {
				return true
			}
		}
	}
	// All-text file: assume the first row names the columns.
	return true
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// DelimiterName returns a human-readable name for the delimiter rune.
func DelimiterName(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case ',':
		return "comma"
	}
	return string(r)
}
