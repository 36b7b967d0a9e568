package bulk

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirio/csvforge/internal/normalize"
	"github.com/hirio/csvforge/internal/pathguard"
	"github.com/hirio/csvforge/internal/preset"
	"github.com/hirio/csvforge/internal/textenc"
	"github.com/hirio/csvforge/internal/validate"
)

func newTestRunner(t *testing.T) (*Runner, string) {
	t.Helper()
	root := t.TempDir()
	guard, err := pathguard.New([]string{root})
	require.NoError(t, err)
	store := preset.NewStore(filepath.Join(root, "presets"))
	defs := preset.Defaults{EncodingOut: textenc.UTF8, NewlineOut: textenc.LF}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := normalize.New(guard, store, defs, nil, logger)
	return NewRunner(engine, nil, logger), root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// Three inputs, one with a bad header set. Without fail-fast the batch
// keeps going: two succeed, one fails, nothing is skipped.
func TestRun_MixedOutcomes(t *testing.T) {
	r, root := newTestRunner(t)
	writeFile(t, root, "in/a.csv", "jan,title\n1,A\n")
	writeFile(t, root, "in/b.csv", "code,name\n2,B\n")
	writeFile(t, root, "in/c.csv", "jan,title\n3,C\n")

	rep, err := r.Run(context.Background(), Request{
		Subpath:   "in",
		OutputDir: "out",
		Options:   preset.Options{RequiredHeaders: []string{"jan"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Matched)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 1, rep.Failed)
	assert.Zero(t, rep.Skipped)

	require.Len(t, rep.Items, 3)
	assert.True(t, rep.Items[0].OK)
	assert.False(t, rep.Items[1].OK)
	assert.Contains(t, rep.Items[1].Error, "missing required headers")
	assert.True(t, rep.Items[2].OK)

	assert.FileExists(t, filepath.Join(root, "out", "a_norm.csv"))
	assert.NoFileExists(t, filepath.Join(root, "out", "b_norm.csv"))
	assert.FileExists(t, filepath.Join(root, "out", "c_norm.csv"))
}

func TestRun_FailFastSkipsRemainder(t *testing.T) {
	r, root := newTestRunner(t)
	writeFile(t, root, "in/a.csv", "code\n1\n")
	writeFile(t, root, "in/b.csv", "jan\n2\n")
	writeFile(t, root, "in/c.csv", "jan\n3\n")

	rep, err := r.Run(context.Background(), Request{
		Subpath:   "in",
		OutputDir: "out",
		FailFast:  true,
		Options:   preset.Options{RequiredHeaders: []string{"jan"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Matched)
	assert.Equal(t, 1, rep.Failed)
	assert.Zero(t, rep.Succeeded)
	assert.Equal(t, 2, rep.Skipped)
	require.Len(t, rep.Items, 1)
	assert.Equal(t, filepath.Join("in", "a.csv"), rep.Items[0].Input)
}

func TestRun_DryRunListsWithoutWriting(t *testing.T) {
	r, root := newTestRunner(t)
	writeFile(t, root, "in/a.csv", "jan\n1\n")
	writeFile(t, root, "in/b.csv", "jan\n2\n")

	rep, err := r.Run(context.Background(), Request{Subpath: "in", OutputDir: "out", DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Matched)
	assert.Equal(t, []string{
		filepath.Join("in", "a.csv"),
		filepath.Join("in", "b.csv"),
	}, rep.Preview)
	assert.Empty(t, rep.Items)
	assert.NoDirExists(t, filepath.Join(root, "out"))
}

func TestRun_RequireMatch(t *testing.T) {
	r, root := newTestRunner(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "in"), 0755))

	_, err := r.Run(context.Background(), Request{Subpath: "in", RequireMatch: true})
	assert.ErrorIs(t, err, ErrNoMatches)

	rep, err := r.Run(context.Background(), Request{Subpath: "in"})
	require.NoError(t, err)
	assert.Zero(t, rep.Matched)
}

func TestRun_PatternAndRecursion(t *testing.T) {
	r, root := newTestRunner(t)
	writeFile(t, root, "in/a.csv", "jan\n1\n")
	writeFile(t, root, "in/deep/b.csv", "jan\n2\n")
	writeFile(t, root, "in/skip.txt", "not delimited")

	flat, err := r.Run(context.Background(), Request{Subpath: "in", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("in", "a.csv")}, flat.Preview)

	deep, err := r.Run(context.Background(), Request{Subpath: "in", Recursive: true, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("in", "a.csv"),
		filepath.Join("in", "deep", "b.csv"),
	}, deep.Preview)
}

func TestRun_SubpathOutsideRoots(t *testing.T) {
	r, _ := newTestRunner(t)
	_, err := r.Run(context.Background(), Request{Subpath: "../elsewhere"})
	assert.ErrorIs(t, err, pathguard.ErrOutsideRoots)
}

func TestRun_ParallelKeepsDiscoveryOrder(t *testing.T) {
	r, root := newTestRunner(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		writeFile(t, root, "in/"+name+".csv", "jan\n1\n")
	}

	rep, err := r.Run(context.Background(), Request{Subpath: "in", OutputDir: "out", Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, 5, rep.Succeeded)
	require.Len(t, rep.Items, 5)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, filepath.Join("in", name+".csv"), rep.Items[i].Input)
	}
}

func TestRun_WritesPerFileReports(t *testing.T) {
	r, root := newTestRunner(t)
	writeFile(t, root, "in/a.csv", "price\nabc\n")

	rep, err := r.Run(context.Background(), Request{
		Subpath:   "in",
		OutputDir: "out",
		ReportDir: "reports",
		Options: preset.Options{
			Validate: &validate.RuleSet{NumericColumns: []string{"price"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, rep.TotalIssues)
	assert.FileExists(t, filepath.Join(root, "reports", "a__report.csv"))
}
