// Package history records the queries sqlkit runs against a target.
//
// Entries live in a small SQLite database whose schema is managed with
// goose migrations embedded in the binary.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotOpen is returned when the store is used before Open.
var ErrNotOpen = errors.New("history database not opened")

// Sources of recorded queries.
const (
	SourceRun  = "run"
	SourceRepl = "repl"
)

// Entry is one executed query.
type Entry struct {
	ID             string        `json:"id"`
	Query          string        `json:"query"`
	Type           string        `json:"type"`
	Source         string        `json:"source"`
	TargetType     string        `json:"target_type"`
	TargetDatabase string        `json:"target_database,omitempty"`
	RowsAffected   int64         `json:"rows_affected"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
	ExecutedAt     time.Time     `json:"executed_at"`
}

// Failed reports whether the query returned an error.
func (e *Entry) Failed() bool {
	return e.Error != ""
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of entries; 0 means no limit.
	Limit int
	// Search keeps entries whose query contains the text (case-insensitive).
	Search string
	// FailedOnly keeps entries that returned an error.
	FailedOnly bool
	// Since keeps entries executed at or after the time.
	Since time.Time
}

// Store persists query history.
type Store interface {
	// Record saves an entry, assigning ID and ExecutedAt when unset.
	Record(ctx context.Context, e *Entry) error
	// Get returns the entry with the given ID or ID prefix.
	Get(ctx context.Context, id string) (*Entry, error)
	// List returns entries, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Entry, error)
	// Clear deletes every entry and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
	Close() error
}
