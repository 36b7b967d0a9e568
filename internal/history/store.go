// Package history persists per-run outcome records to SQLite.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Run kinds.
const (
	KindInspect   = "inspect"
	KindNormalize = "normalize"
	KindExport    = "export"
	KindBulk      = "bulk"
)

//go:embed schema.sql
var schemaSQL string

// Entry represents one recorded run.
type Entry struct {
	ID        int64
	Kind      string
	Input     string
	Output    string
	RowsIn    int
	RowsOut   int
	Issues    int
	OK        bool
	Error     string
	CreatedAt time.Time
}

// Filter specifies criteria for listing runs.
type Filter struct {
	Kind  string
	OK    *bool
	Limit int
}

// Store persists run records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle (used by tests with
// :memory: databases).
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a new run entry.
func (s *Store) Record(e *Entry) error {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO runs (kind, input, output, rows_in, rows_out, issues, ok, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Kind, e.Input, e.Output, e.RowsIn, e.RowsOut, e.Issues, e.OK, e.Error, now,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now
	return nil
}

// List returns run entries matching the filter, most recent first.
func (s *Store) List(f Filter) ([]*Entry, error) {
	var conditions []string
	var args []any

	if f.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.OK != nil {
		conditions = append(conditions, "ok = ?")
		args = append(args, *f.OK)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT id, kind, input, output, rows_in, rows_out, issues, ok, error, created_at
		FROM runs ` + whereClause + ` ORDER BY created_at DESC, id DESC`

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Input, &e.Output, &e.RowsIn, &e.RowsOut, &e.Issues, &e.OK, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return results, nil
}
