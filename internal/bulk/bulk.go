// Package bulk fans the single-file normalizer out over a discovered file set.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hirio/csvforge/internal/history"
	"github.com/hirio/csvforge/internal/normalize"
	"github.com/hirio/csvforge/internal/pathguard"
	"github.com/hirio/csvforge/internal/preset"
)

// ErrNoMatches indicates discovery found zero files while the caller
// required at least one.
var ErrNoMatches = errors.New("no files matched")

// errFailFast cancels remaining work after the first per-file failure.
var errFailFast = errors.New("fail fast")

// Request describes one bulk run.
type Request struct {
	Subpath   string // directory under an allowed root to search
	Pattern   string // glob pattern, default *.csv
	Recursive bool

	OutputDir string // output subdirectory, relative to the roots
	OutSuffix string // appended to each file's stem
	ReportDir string // optional; "" disables per-file reports

	Preset     string
	EncodingIn string
	Backup     bool
	Options    preset.Options

	DryRun       bool
	FailFast     bool
	RequireMatch bool
	// Workers bounds parallel file processing; 0 or 1 is sequential.
	// Aggregation stays discovery-ordered either way.
	Workers int
}

// Item is the outcome for one discovered file.
type Item struct {
	OK     bool              `json:"ok"`
	Input  string            `json:"input"`
	Output string            `json:"output,omitempty"`
	Issues int               `json:"issues,omitempty"`
	Error  string            `json:"error,omitempty"`
	Report *normalize.Report `json:"report,omitempty"`
}

// Report aggregates per-file outcomes. Items appear in discovery
// order; Skipped counts files never attempted because of fail-fast.
type Report struct {
	Matched     int      `json:"matched"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Skipped     int      `json:"skipped,omitempty"`
	TotalIssues int      `json:"total_issues"`
	Items       []Item   `json:"items"`
	Preview     []string `json:"preview,omitempty"`
}

// Runner discovers files and applies the engine to each.
type Runner struct {
	engine  *normalize.Engine
	history *history.Store
	log     *slog.Logger
}

// NewRunner creates a bulk runner. history may be nil.
func NewRunner(engine *normalize.Engine, hist *history.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{engine: engine, history: hist, log: logger}
}

// Run discovers matching files and normalizes each one, aggregating
// outcomes under the requested failure policy.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	matches, err := r.discover(req)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 && req.RequireMatch {
		return nil, fmt.Errorf("%w: pattern %q under %q", ErrNoMatches, req.Pattern, req.Subpath)
	}

	if req.DryRun {
		return &Report{Matched: len(matches), Preview: matches}, nil
	}

	rep := &Report{Matched: len(matches), Items: make([]Item, 0, len(matches))}
	slots := make([]*Item, len(matches))

	workers := req.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range matches {
		i, rel := i, rel
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil // skipped after fail-fast
			}
			item := r.runOne(rel, req)
			slots[i] = &item
			if !item.OK && req.FailFast {
				return errFailFast
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errFailFast) {
		return nil, err
	}

	for _, item := range slots {
		if item == nil {
			rep.Skipped++
			continue
		}
		rep.Items = append(rep.Items, *item)
		if item.OK {
			rep.Succeeded++
			rep.TotalIssues += item.Issues
		} else {
			rep.Failed++
		}
	}

	if r.history != nil {
		entry := &history.Entry{
			Kind:   history.KindBulk,
			Input:  filepath.Join(req.Subpath, req.Pattern),
			Output: req.OutputDir,
			RowsIn: rep.Matched,
			Issues: rep.TotalIssues,
			OK:     rep.Failed == 0,
		}
		if err := r.history.Record(entry); err != nil {
			r.log.Warn("history record failed", "kind", entry.Kind, "error", err)
		}
	}

	r.log.Info("bulk run finished",
		"matched", rep.Matched,
		"succeeded", rep.Succeeded,
		"failed", rep.Failed,
		"issues", rep.TotalIssues,
	)
	return rep, nil
}

// runOne derives the output and report paths for one input and invokes
// the single-file pipeline. Per-file failures are converted to items,
// never propagated, so one bad file cannot poison the batch.
func (r *Runner) runOne(rel string, req Request) Item {
	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	suffix := req.OutSuffix
	if suffix == "" {
		suffix = "_norm.csv"
	}
	outRel := filepath.Join(req.OutputDir, stem+suffix)

	nreq := normalize.Request{
		Input:      rel,
		Output:     outRel,
		Preset:     req.Preset,
		EncodingIn: req.EncodingIn,
		Backup:     req.Backup,
		Options:    req.Options,
	}
	if req.ReportDir != "" {
		nreq.ReportPath = filepath.Join(req.ReportDir, stem+"__report.csv")
	}

	rep, err := r.engine.Normalize(nreq)
	if err != nil {
		r.log.Warn("bulk item failed", "input", rel, "error", err)
		return Item{OK: false, Input: rel, Error: err.Error()}
	}
	return Item{OK: true, Input: rel, Output: rep.Output, Issues: rep.Issues, Report: rep}
}

// discover enumerates files matching the pattern under the subpath,
// confined to the allowed roots. Results are root-relative paths in
// sorted order so runs are deterministic.
func (r *Runner) discover(req Request) ([]string, error) {
	pattern := req.Pattern
	if pattern == "" {
		pattern = "*.csv"
	}
	guard := r.engine.Guard()

	var rels []string
	seen := map[string]bool{}
	for _, root := range guard.Roots() {
		base := filepath.Join(root, filepath.FromSlash(strings.TrimLeft(req.Subpath, "/\\")))
		if !guard.Contains(base) {
			return nil, fmt.Errorf("subpath %q: %w", req.Subpath, pathguard.ErrOutsideRoots)
		}
		if st, err := os.Stat(base); err != nil || !st.IsDir() {
			continue
		}

		collect := func(path string) error {
			ok, err := filepath.Match(pattern, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if !ok || !guard.Contains(path) {
				return nil
			}
			rel, err := guard.Rel(path)
			if err != nil {
				return err
			}
			if !seen[rel] {
				seen[rel] = true
				rels = append(rels, rel)
			}
			return nil
		}

		if req.Recursive {
			err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				return collect(path)
			})
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", base, err)
			}
		} else {
			entries, err := os.ReadDir(base)
			if err != nil {
				return nil, fmt.Errorf("read dir %s: %w", base, err)
			}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				if err := collect(filepath.Join(base, e.Name())); err != nil {
					return nil, err
				}
			}
		}
	}
	sort.Strings(rels)
	return rels, nil
}
