// Package pathguard confines filesystem access to an allow-list of root directories.
//
// Every path the engine touches goes through a Guard first: relative
// paths are resolved against the configured roots in order, and any
// candidate that escapes all of them is rejected. No other package
// performs raw path concatenation.
package pathguard

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrNoRoots indicates the guard was built with zero allowed roots.
	ErrNoRoots = errors.New("no allowed roots configured")

	// ErrOutsideRoots indicates a path resolved outside every allowed root.
	ErrOutsideRoots = errors.New("path is outside allowed roots")
)

// Guard validates paths against a fixed set of allowed roots.
// The root set is established once at startup and never mutated.
type Guard struct {
	roots []string
}

// New creates a guard from the configured root directories.
// Roots are cleaned and made absolute; relative roots are resolved
// against the current working directory.
func New(roots []string) (*Guard, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		a, err := filepath.Abs(filepath.Clean(r))
		if err != nil {
			return nil, fmt.Errorf("resolve root %q: %w", r, err)
		}
		abs = append(abs, a)
	}
	return &Guard{roots: abs}, nil
}

// Roots returns the allowed roots in configuration order.
func (g *Guard) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Resolve maps a root-relative path to an absolute path inside one of
// the allowed roots. Leading separators and drive-style prefixes are
// stripped so "/foo" and "foo" resolve identically. The first root
// whose joined, cleaned candidate is still contained in that root
// wins. Returns ErrOutsideRoots if every candidate escapes.
func (g *Guard) Resolve(rel string) (string, error) {
	if len(g.roots) == 0 {
		return "", ErrNoRoots
	}
	rel = strings.TrimLeft(rel, ":/\\")
	for _, root := range g.roots {
		cand := filepath.Clean(filepath.Join(root, filepath.FromSlash(rel)))
		if contained(root, cand) {
			return cand, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrOutsideRoots, rel)
}

// Contains reports whether an absolute path lies inside any allowed root.
func (g *Guard) Contains(abs string) bool {
	cand := filepath.Clean(abs)
	for _, root := range g.roots {
		if contained(root, cand) {
			return true
		}
	}
	return false
}

// Rel returns the path of abs relative to the root containing it.
// Fails with ErrOutsideRoots if no root contains abs.
func (g *Guard) Rel(abs string) (string, error) {
	cand := filepath.Clean(abs)
	for _, root := range g.roots {
		if contained(root, cand) {
			rel, err := filepath.Rel(root, cand)
			if err != nil {
				return "", fmt.Errorf("relativize %q: %w", abs, err)
			}
			return rel, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrOutsideRoots, abs)
}

// contained reports whether path equals root or sits beneath it.
func contained(root, path string) bool {
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
