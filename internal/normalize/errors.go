// internal/normalize/errors.go
package normalize

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputNotFound indicates the input file does not exist.
	ErrInputNotFound = errors.New("input file not found")

	// ErrNoRows indicates an export was requested with no rows and no columns.
	ErrNoRows = errors.New("no rows and no columns to export")
)

// MissingHeadersError reports required headers absent from the input
// after mapping. Normalization fails before any output is written.
type MissingHeadersError struct {
	Missing []string
	// Suggestions maps a missing header to the closest header actually
	// present, when one is close enough to be worth naming.
	Suggestions map[string]string
}

func (e *MissingHeadersError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing required headers: %s", strings.Join(e.Missing, ", "))
	for _, m := range e.Missing {
		if s, ok := e.Suggestions[m]; ok {
			fmt.Fprintf(&b, " (did you mean %q for %q?)", s, m)
		}
	}
	return b.String()
}

// UnknownColumnsError reports output-order columns that exist in
// neither the mapped input headers nor the header map. Only raised
// when strict_order is set; the default fills such columns with
// empty strings.
type UnknownColumnsError struct {
	Columns []string
}

func (e *UnknownColumnsError) Error() string {
	return fmt.Sprintf("output order names unknown columns: %s", strings.Join(e.Columns, ", "))
}
