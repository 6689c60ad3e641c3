package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // sqlite driver
)

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned by Get when no entry matches.
var ErrNotFound = errors.New("history entry not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	maxEntries int
}

// NewSQLiteStore creates a store that keeps at most maxEntries entries.
// Zero or less keeps everything.
func NewSQLiteStore(maxEntries int) *SQLiteStore {
	return &SQLiteStore{maxEntries: maxEntries}
}

// Open opens (creating when needed) the database at path and migrates it.
// Use ":memory:" for an in-memory database.
func Open(ctx context.Context, path string, maxEntries int) (*SQLiteStore, error) {
	s := NewSQLiteStore(maxEntries)
	if err := s.Open(ctx, path); err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens a connection to the SQLite database.
func (s *SQLiteStore) Open(ctx context.Context, path string) error {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping history database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Path returns the database path given to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// Record saves an entry and trims the oldest ones beyond the size limit.
func (s *SQLiteStore) Record(ctx context.Context, e *Entry) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if e.ID == "" {
		e.ID = generateID()
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now()
	}
	if e.Source == "" {
		e.Source = SourceRun
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, query, query_type, source, target_type, target_database,
			rows_affected, duration_us, error, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Query, e.Type, e.Source, e.TargetType, e.TargetDatabase,
		e.RowsAffected, e.Duration.Microseconds(), e.Error, formatTime(e.ExecutedAt))
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}

	if s.maxEntries > 0 {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM history WHERE id NOT IN (
				SELECT id FROM history ORDER BY executed_at DESC, rowid DESC LIMIT ?
			)`, s.maxEntries)
		if err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}
	}
	return nil
}

const selectColumns = `SELECT id, query, query_type, source, target_type, target_database,
	rows_affected, duration_us, error, executed_at FROM history`

// Get returns the entry whose ID equals or starts with id. A prefix that
// matches more than one entry is an error.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE id LIKE ? ESCAPE '\' LIMIT 2`,
		escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return entries[0], nil
	default:
		return nil, fmt.Errorf("history id %q is ambiguous", id)
	}
}

// List returns entries matching opts, newest first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	var (
		where []string
		args  []any
	)
	if opts.Search != "" {
		where = append(where, `query LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Search)+"%")
	}
	if opts.FailedOnly {
		where = append(where, "error != ''")
	}
	if !opts.Since.IsZero() {
		where = append(where, "executed_at >= ?")
		args = append(args, formatTime(opts.Since))
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY executed_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Clear deletes all entries.
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM history")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	entries := []*Entry{}
	for rows.Next() {
		var (
			e          Entry
			durationUS int64
			executedAt string
		)
		if err := rows.Scan(&e.ID, &e.Query, &e.Type, &e.Source, &e.TargetType, &e.TargetDatabase,
			&e.RowsAffected, &durationUS, &e.Error, &executedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Duration = time.Duration(durationUS) * time.Microsecond
		t, err := time.Parse(timeLayout, executedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q in history: %w", executedAt, err)
		}
		e.ExecutedAt = t
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
