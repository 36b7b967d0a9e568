// internal/config/validate.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validEncodings = map[string]bool{
	"utf-8": true, "utf-8-sig": true, "cp932": true, "latin-1": true,
}

var validNewlines = map[string]bool{
	"CRLF": true, "LF": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if len(c.Engine.Roots) == 0 {
		errs = append(errs, "engine.roots: at least one allowed root must be configured")
	}
	for i, root := range c.Engine.Roots {
		if root == "" {
			errs = append(errs, fmt.Sprintf("engine.roots[%d]: must not be empty", i))
			continue
		}
		if !filepath.IsAbs(root) {
			errs = append(errs, fmt.Sprintf("engine.roots[%d]: %q must be an absolute path", i, root))
		}
		if info, err := os.Stat(root); err == nil && !info.IsDir() {
			errs = append(errs, fmt.Sprintf("engine.roots[%d]: %q is not a directory", i, root))
		}
	}

	if !validLogLevels[c.Engine.LogLevel] {
		errs = append(errs, fmt.Sprintf("engine.log_level: must be one of debug, info, warn, error; got %q", c.Engine.LogLevel))
	}

	if !validEncodings[c.Output.Encoding] {
		errs = append(errs, fmt.Sprintf("output.encoding: must be one of utf-8, utf-8-sig, cp932, latin-1; got %q", c.Output.Encoding))
	}
	if !validNewlines[c.Output.Newline] {
		errs = append(errs, fmt.Sprintf("output.newline: must be CRLF or LF; got %q", c.Output.Newline))
	}

	return errs
}
