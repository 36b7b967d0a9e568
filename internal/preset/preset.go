// Package preset loads named normalization presets and merges them with
// caller overrides.
//
// Merge precedence is always caller override > preset value > built-in
// default. Override fields are pointer-typed so "not set" is
// distinguishable from a legitimate zero value.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hirio/csvforge/internal/validate"
)

// ErrNotFound indicates no preset file exists under the requested name.
var ErrNotFound = errors.New("preset not found")

// Preset is a named, persisted normalization configuration. Scalar
// fields are pointers so an absent key in the TOML file falls through
// to the built-in default instead of forcing a zero value.
type Preset struct {
	HeaderMap       map[string]string `toml:"header_map"`
	RequiredHeaders []string          `toml:"required_headers"`
	Order           []string          `toml:"order"`
	TrimWhitespace  *bool             `toml:"trim_whitespace"`
	DropEmptyRows   *bool             `toml:"drop_empty_rows"`
	EncodingOut     *string           `toml:"encoding_out"`
	NewlineOut      *string           `toml:"newline_out"`
	StrictOrder     *bool             `toml:"strict_order"`
	Validate        *validate.RuleSet `toml:"validate"`
}

// Store reads and writes preset files (<name>.toml) in one directory.
// Presets are read-only at normalize time; Save exists for operator
// tooling.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file path a preset name maps to.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".toml")
}

// Load reads the named preset. Returns ErrNotFound when the file is
// absent.
func (s *Store) Load(name string) (*Preset, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading preset %s: %w", name, err)
	}
	var p Preset
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", name, err)
	}
	return &p, nil
}

// Save writes the preset under name, creating the directory if needed.
func (s *Store) Save(name string, p *Preset) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create preset dir: %w", err)
	}
	f, err := os.Create(s.Path(name))
	if err != nil {
		return fmt.Errorf("create preset %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()
	if err := toml.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("encode preset %s: %w", name, err)
	}
	return nil
}

// List returns the names of all presets in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list presets: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names, nil
}
