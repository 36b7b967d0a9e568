package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hirio/csvforge/internal/bulk"
	"github.com/hirio/csvforge/internal/config"
	"github.com/hirio/csvforge/internal/history"
	"github.com/hirio/csvforge/internal/normalize"
	"github.com/hirio/csvforge/internal/pathguard"
	"github.com/hirio/csvforge/internal/preset"
	"github.com/hirio/csvforge/internal/textenc"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "csvforge",
	Short: "Tabular file normalization and validation",
	Long: `csvforge - tabular file normalization and validation

Ingests delimited text files of unknown encoding, rewrites them into a
canonical schema under a named preset, and validates every row against
declarative rules. All file access is confined to the allowed roots in
the config file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: discover)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("csvforge {{.Version}}\n")
}

// app bundles the wired engine components for command handlers.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	guard   *pathguard.Guard
	presets *preset.Store
	history *history.Store
	engine  *normalize.Engine
	bulk    *bulk.Runner
}

func (a *app) close() {
	if a.history != nil {
		_ = a.history.Close()
	}
}

// newApp loads config and builds the engine stack.
func newApp() (*app, error) {
	path := configPath
	if path == "" {
		discovered, err := config.Discover()
		if err != nil {
			return nil, fmt.Errorf("config: %w (run 'csvforge init' to create one)", err)
		}
		path = discovered
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &config.ConfigError{Path: path, Errors: errs}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Engine.LogLevel),
	}))

	guard, err := pathguard.New(cfg.Engine.Roots)
	if err != nil {
		return nil, fmt.Errorf("roots: %w", err)
	}

	presets := preset.NewStore(cfg.Presets.Dir)

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			// History is observability; a broken DB should not block runs.
			logger.Warn("history disabled", "path", cfg.History.Path, "error", err)
			hist = nil
		}
	}

	defs := preset.Defaults{
		EncodingOut: textenc.Encoding(cfg.Output.Encoding),
		NewlineOut:  textenc.Newline(cfg.Output.Newline),
	}
	engine := normalize.New(guard, presets, defs, hist, logger.With("component", "engine"))
	runner := bulk.NewRunner(engine, hist, logger.With("component", "bulk"))

	return &app{
		cfg:     cfg,
		logger:  logger,
		guard:   guard,
		presets: presets,
		history: hist,
		engine:  engine,
		bulk:    runner,
	}, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
