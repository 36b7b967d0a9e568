// Package validate applies declarative per-column rules to streamed rows.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies a rule variant.
type Kind string

const (
	KindEmpty       Kind = "empty"
	KindNumeric     Kind = "numeric"
	KindInteger     Kind = "integer"
	KindNonnegative Kind = "nonnegative"
	KindPattern     Kind = "pattern"
	KindUnique      Kind = "unique"
)

// Rule is one validation rule bound to a column. Adding a rule kind
// means adding a case to RowValidator's dispatch, nothing else.
type Rule struct {
	Kind    Kind
	Pattern *regexp.Regexp // set for KindPattern only
}

// RuleSet is the declarative, serializable form of the rules: column
// lists per rule kind plus a column→regex map.
type RuleSet struct {
	NumericColumns        []string          `toml:"numeric_columns" json:"numeric_columns"`
	IntegerColumns        []string          `toml:"integer_columns" json:"integer_columns"`
	NonnegativeColumns    []string          `toml:"nonnegative_columns" json:"nonnegative_columns"`
	UniqueColumns         []string          `toml:"unique_columns" json:"unique_columns"`
	Patterns              map[string]string `toml:"patterns" json:"patterns"`
	EmptyForbiddenColumns []string          `toml:"empty_forbidden_columns" json:"empty_forbidden_columns"`
}

// IsZero reports whether no rules are configured.
func (rs RuleSet) IsZero() bool {
	return len(rs.NumericColumns) == 0 &&
		len(rs.IntegerColumns) == 0 &&
		len(rs.NonnegativeColumns) == 0 &&
		len(rs.UniqueColumns) == 0 &&
		len(rs.Patterns) == 0 &&
		len(rs.EmptyForbiddenColumns) == 0
}

// Compile turns the declarative set into per-column rule lists.
// Invalid regex patterns are reported as errors, not skipped, so a
// typo in a preset cannot silently disable a rule.
func (rs RuleSet) Compile() (map[string][]Rule, error) {
	rules := map[string][]Rule{}
	add := func(cols []string, kind Kind) {
		for _, c := range cols {
			rules[c] = append(rules[c], Rule{Kind: kind})
		}
	}
	add(rs.EmptyForbiddenColumns, KindEmpty)
	add(rs.NumericColumns, KindNumeric)
	add(rs.IntegerColumns, KindInteger)
	add(rs.NonnegativeColumns, KindNonnegative)
	add(rs.UniqueColumns, KindUnique)

	// Deterministic compile order for patterns.
	cols := make([]string, 0, len(rs.Patterns))
	for c := range rs.Patterns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		// Anchor so the value must match in its entirety.
		re, err := regexp.Compile(`\A(?:` + rs.Patterns[c] + `)\z`)
		if err != nil {
			return nil, fmt.Errorf("pattern for column %q: %w", c, err)
		}
		rules[c] = append(rules[c], Rule{Kind: KindPattern, Pattern: re})
	}
	return rules, nil
}

// isEmpty reports whether a value is missing or blank after trimming.
func isEmpty(v string) bool {
	return strings.TrimSpace(v) == ""
}

// parseNum parses a value as a real number with thousands separators
// removed. Returns false for empty or non-numeric values.
func parseNum(v string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
