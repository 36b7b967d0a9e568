// Package header canonicalizes column headers and applies rename maps.
package header

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/unicode/norm"
)

// Canonical normalizes one header string: strips embedded BOM markers,
// applies NFKC compatibility normalization (folding full-width and
// half-width variants together), trims, and collapses internal
// whitespace runs to a single space.
func Canonical(s string) string {
	s = strings.ReplaceAll(s, "\uFEFF", "")
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Apply canonicalizes raw header cells and applies the rename map.
// A map entry keyed by the canonical name wins; failing that, an entry
// keyed by the raw pre-normalization name is honored (presets are
// often authored against raw vendor headers). Unmapped headers pass
// through. Mapped names are themselves canonicalized.
//
// Returns the mapped headers plus warnings for any duplicates in the
// result; duplicates are reported, never fatal.
func Apply(raw []string, renames map[string]string) ([]string, []string) {
	mapped := make([]string, len(raw))
	for i, r := range raw {
		c := Canonical(r)
		target, ok := renames[c]
		if !ok {
			target, ok = renames[r]
		}
		if !ok {
			mapped[i] = c
			continue
		}
		mapped[i] = Canonical(target)
	}

	var warnings []string
	seen := map[string][]int{}
	for i, h := range mapped {
		seen[h] = append(seen[h], i)
	}
	for h, idx := range seen {
		if len(idx) > 1 {
			warnings = append(warnings, fmt.Sprintf("duplicate header %q after normalization (%d columns)", h, len(idx)))
		}
	}
	return mapped, warnings
}

// Positional synthesizes column names c0..cN-1 for headerless files.
func Positional(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("c%d", i)
	}
	return out
}

// suggestThreshold is the minimum Jaro-Winkler similarity for a
// missing-header suggestion to be worth surfacing.
const suggestThreshold = 0.75

// Suggest returns the available header most similar to the missing
// one, or "" when nothing comes close. Used to make
// missing-required-header failures actionable.
func Suggest(missing string, available []string) string {
	best := ""
	bestScore := float32(0)
	for _, h := range available {
		if h == "" {
			continue
		}
		score := edlib.JaroWinklerSimilarity(strings.ToLower(missing), strings.ToLower(h))
		if score > bestScore {
			bestScore = score
			best = h
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}
