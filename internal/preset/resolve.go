package preset

import (
	"github.com/hirio/csvforge/internal/textenc"
	"github.com/hirio/csvforge/internal/validate"
)

// Options carries caller-supplied overrides of every preset field.
// Nil / empty fields are "not set" and fall through to the preset,
// then to the defaults.
type Options struct {
	HeaderMap       map[string]string
	RequiredHeaders []string
	Order           []string
	TrimWhitespace  *bool
	DropEmptyRows   *bool
	EncodingOut     *string
	NewlineOut      *string
	StrictOrder     *bool
	Validate        *validate.RuleSet
}

// Defaults are the engine-level fallbacks, typically sourced from the
// output section of the config file.
type Defaults struct {
	EncodingOut textenc.Encoding
	NewlineOut  textenc.Newline
}

// Effective is the fully resolved configuration a normalization run
// operates under.
type Effective struct {
	HeaderMap       map[string]string
	RequiredHeaders []string
	Order           []string
	TrimWhitespace  bool
	DropEmptyRows   bool
	EncodingOut     textenc.Encoding
	NewlineOut      textenc.Newline
	StrictOrder     bool
	Validate        validate.RuleSet
}

// Resolve merges preset and overrides into an effective config.
// The header map is a union with override entries winning on key
// collision; every other field is override, else preset, else default.
// Resolution is pure: identical inputs always yield identical output.
// An empty name means no preset; opts alone are merged with defaults.
func Resolve(store *Store, name string, opts Options, defs Defaults) (Effective, error) {
	p := &Preset{}
	if name != "" {
		loaded, err := store.Load(name)
		if err != nil {
			return Effective{}, err
		}
		p = loaded
	}

	eff := Effective{
		HeaderMap:       mergeMaps(p.HeaderMap, opts.HeaderMap),
		RequiredHeaders: pickList(opts.RequiredHeaders, p.RequiredHeaders),
		Order:           pickList(opts.Order, p.Order),
		TrimWhitespace:  pickBool(opts.TrimWhitespace, p.TrimWhitespace, true),
		DropEmptyRows:   pickBool(opts.DropEmptyRows, p.DropEmptyRows, true),
		StrictOrder:     pickBool(opts.StrictOrder, p.StrictOrder, false),
		EncodingOut:     textenc.Encoding(pickString(opts.EncodingOut, p.EncodingOut, string(defs.EncodingOut))),
		NewlineOut:      textenc.Newline(pickString(opts.NewlineOut, p.NewlineOut, string(defs.NewlineOut))),
	}

	switch {
	case opts.Validate != nil:
		eff.Validate = *opts.Validate
	case p.Validate != nil:
		eff.Validate = *p.Validate
	}
	// Required headers double as the empty-forbidden set unless the
	// caller configured one explicitly.
	if len(eff.Validate.EmptyForbiddenColumns) == 0 {
		eff.Validate.EmptyForbiddenColumns = append([]string(nil), eff.RequiredHeaders...)
	}

	return eff, nil
}

func mergeMaps(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func pickList(override, preset []string) []string {
	if len(override) > 0 {
		return append([]string(nil), override...)
	}
	return append([]string(nil), preset...)
}

func pickBool(override, preset *bool, def bool) bool {
	if override != nil {
		return *override
	}
	if preset != nil {
		return *preset
	}
	return def
}

func pickString(override, preset *string, def string) string {
	if override != nil && *override != "" {
		return *override
	}
	if preset != nil && *preset != "" {
		return *preset
	}
	return def
}
