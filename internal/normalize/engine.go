// Package normalize orchestrates the single-file pipeline: encoding
// detection, dialect sniffing, header mapping, streamed validation,
// and atomic output writing.
package normalize

import (
	"log/slog"

	"github.com/hirio/csvforge/internal/history"
	"github.com/hirio/csvforge/internal/pathguard"
	"github.com/hirio/csvforge/internal/preset"
)

// Engine runs inspect, normalize, and export operations inside the
// allowed roots. It is safe for sequential reuse; callers must not
// run two operations against the same output path concurrently.
type Engine struct {
	guard   *pathguard.Guard
	presets *preset.Store
	defs    preset.Defaults
	history *history.Store
	log     *slog.Logger
}

// New creates an engine. history may be nil to disable run recording.
func New(guard *pathguard.Guard, presets *preset.Store, defs preset.Defaults, hist *history.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		guard:   guard,
		presets: presets,
		defs:    defs,
		history: hist,
		log:     logger,
	}
}

// Guard exposes the engine's path guard for collaborators (the bulk
// runner discovers files through the same confinement).
func (e *Engine) Guard() *pathguard.Guard {
	return e.guard
}

// record persists a history entry when a store is attached. History is
// observability, never control flow: failures are logged and dropped.
func (e *Engine) record(entry *history.Entry) {
	if e.history == nil {
		return
	}
	if err := e.history.Record(entry); err != nil {
		e.log.Warn("history record failed", "kind", entry.Kind, "error", err)
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
