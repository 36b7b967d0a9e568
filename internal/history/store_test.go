package history

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	s := newMemStore(t)

	e := &Entry{Kind: KindNormalize, Input: "in.csv", Output: "out.csv", RowsIn: 10, RowsOut: 9, OK: true}
	require.NoError(t, s.Record(e))

	assert.NotZero(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestListMostRecentFirst(t *testing.T) {
	s := newMemStore(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(&Entry{Kind: KindNormalize, Input: "in.csv", OK: true}))
	}

	entries, err := s.List(Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Greater(t, entries[0].ID, entries[1].ID)
	assert.Greater(t, entries[1].ID, entries[2].ID)
}

func TestListFilters(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, s.Record(&Entry{Kind: KindNormalize, OK: true}))
	require.NoError(t, s.Record(&Entry{Kind: KindNormalize, OK: false, Error: "missing required headers: jan"}))
	require.NoError(t, s.Record(&Entry{Kind: KindBulk, OK: true}))

	byKind, err := s.List(Filter{Kind: KindBulk})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, KindBulk, byKind[0].Kind)

	failed := false
	byOK, err := s.List(Filter{OK: &failed})
	require.NoError(t, err)
	require.Len(t, byOK, 1)
	assert.Equal(t, "missing required headers: jan", byOK[0].Error)

	limited, err := s.List(Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestOpenCreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist", "runs.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(&Entry{Kind: KindExport, Output: "out.csv", RowsOut: 4, OK: true}))
	require.NoError(t, s.Close())

	// Schema application is idempotent on an existing database.
	s2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	entries, err := s2.List(Filter{Kind: KindExport})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].RowsOut)
}
