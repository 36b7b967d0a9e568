package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[engine]
roots = ["/data/csv"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/csv"}, cfg.Engine.Roots)
	assert.Equal(t, "info", cfg.Engine.LogLevel)
	assert.Equal(t, "./presets", cfg.Presets.Dir)
	assert.Equal(t, "utf-8-sig", cfg.Output.Encoding)
	assert.Equal(t, "CRLF", cfg.Output.Newline)
	assert.Equal(t, "_norm.csv", cfg.Output.Suffix)
	assert.Equal(t, cfg.Output.Dir, cfg.Output.ReportDir, "report dir follows output dir unless set")
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
[engine]
roots = ["/data/csv"]
log_level = "debug"

[output]
encoding = "cp932"
newline = "LF"
report_dir = "reports"

[history]
path = "/var/lib/csvforge/runs.db"
enabled = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Engine.LogLevel)
	assert.Equal(t, "cp932", cfg.Output.Encoding)
	assert.Equal(t, "LF", cfg.Output.Newline)
	assert.Equal(t, "reports", cfg.Output.ReportDir)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/var/lib/csvforge/runs.db", cfg.History.Path)
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("CSVFORGE_TEST_ROOT", "/srv/exchange")
	path := writeConfig(t, `
[engine]
roots = ["${CSVFORGE_TEST_ROOT}/inbox"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/exchange/inbox"}, cfg.Engine.Roots)
}

func TestLoadLeavesUnknownEnvVars(t *testing.T) {
	path := writeConfig(t, `
[engine]
roots = ["${CSVFORGE_NO_SUCH_VAR}/inbox"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"${CSVFORGE_NO_SUCH_VAR}/inbox"}, cfg.Engine.Roots)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadBadTOML(t *testing.T) {
	path := writeConfig(t, `[engine`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "no roots",
			mutate:  func(c *Config) { c.Engine.Roots = nil },
			wantErr: "engine.roots",
		},
		{
			name:    "relative root",
			mutate:  func(c *Config) { c.Engine.Roots = []string{"data/csv"} },
			wantErr: "absolute",
		},
		{
			name:    "empty root",
			mutate:  func(c *Config) { c.Engine.Roots = []string{""} },
			wantErr: "must not be empty",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Engine.LogLevel = "verbose" },
			wantErr: "log_level",
		},
		{
			name:    "bad encoding",
			mutate:  func(c *Config) { c.Output.Encoding = "euc-jp" },
			wantErr: "output.encoding",
		},
		{
			name:    "bad newline",
			mutate:  func(c *Config) { c.Output.Newline = "CR" },
			wantErr: "output.newline",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Engine: EngineConfig{Roots: []string{t.TempDir()}}}
			cfg.applyDefaults()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			assert.True(t, found, "expected an error mentioning %q, got %v", tt.wantErr, errs)
		})
	}
}

func TestDiscoverPrefersEnvVar(t *testing.T) {
	path := writeConfig(t, "[engine]\nroots = [\"/data\"]\n")
	t.Setenv("CSVFORGE_CONFIG", path)

	found, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestDiscoverEnvVarMustExist(t *testing.T) {
	t.Setenv("CSVFORGE_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	_, err := Discover()
	assert.Error(t, err)
}

func TestWriteDefaultIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Output.Encoding)
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := &Config{
		Engine: EngineConfig{Roots: []string{"/data/csv"}, LogLevel: "warn"},
		Output: OutputConfig{Encoding: "utf-8", Newline: "LF"},
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Engine.Roots, loaded.Engine.Roots)
	assert.Equal(t, "warn", loaded.Engine.LogLevel)
	assert.Equal(t, "utf-8", loaded.Output.Encoding)
}
