// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Presets PresetsConfig `toml:"presets"`
	History HistoryConfig `toml:"history"`
	Output  OutputConfig  `toml:"output"`
}

// EngineConfig holds the allowed filesystem roots and logging settings.
type EngineConfig struct {
	// Roots is the allow-list of directories the engine may touch.
	// Every path in a request is resolved relative to one of these.
	Roots    []string `toml:"roots"`
	LogLevel string   `toml:"log_level"`
}

// PresetsConfig locates the preset directory.
type PresetsConfig struct {
	Dir string `toml:"dir"`
}

// HistoryConfig locates the run-history database.
type HistoryConfig struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// OutputConfig holds defaults applied when neither the caller nor a
// preset specifies an output setting.
type OutputConfig struct {
	Encoding  string `toml:"encoding"`
	Newline   string `toml:"newline"`
	Dir       string `toml:"dir"`
	Suffix    string `toml:"suffix"`
	ReportDir string `toml:"report_dir"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine.LogLevel == "" {
		c.Engine.LogLevel = "info"
	}
	if c.Presets.Dir == "" {
		c.Presets.Dir = "./presets"
	}
	if c.History.Path == "" {
		c.History.Path = "./data/csvforge.db"
	}
	if c.Output.Encoding == "" {
		c.Output.Encoding = "utf-8-sig"
	}
	if c.Output.Newline == "" {
		c.Output.Newline = "CRLF"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "out"
	}
	if c.Output.Suffix == "" {
		c.Output.Suffix = "_norm.csv"
	}
	if c.Output.ReportDir == "" {
		c.Output.ReportDir = c.Output.Dir
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}
