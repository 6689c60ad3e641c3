// Package runner executes queries against a configured database target.
//
// Queries pass through the same pipeline the CLI exposes: variables are
// bound, the text is validated and destructive statements are refused
// unless explicitly allowed.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlkit/internal/history"
	"github.com/leapstack-labs/sqlkit/pkg/lexer"
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/lint/rules"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// Sentinel errors.
var (
	ErrDestructive      = errors.New("destructive statement refused")
	ErrInvalidQuery     = errors.New("invalid query")
	ErrMissingVariables = errors.New("missing variables")
	ErrNotConnected     = errors.New("database connection not established")
)

// Recorder saves executed queries.
type Recorder interface {
	Record(ctx context.Context, e *history.Entry) error
}

// Config holds runner settings.
type Config struct {
	Target           Target
	Lint             *lint.Config
	AllowDestructive bool
	Logger           *slog.Logger
	// History, when set, receives every query that reaches the database.
	History Recorder
	// Source labels recorded entries (history.SourceRun by default).
	Source string
}

// Runner runs queries on one database connection.
type Runner struct {
	db               *sql.DB
	target           Target
	lint             *lint.Config
	allowDestructive bool
	logger           *slog.Logger
	destructive      *lint.Analyzer
	history          Recorder
	source           string
}

// Result is the outcome of one query.
type Result struct {
	Query        string            `json:"query"`
	Type         sqltext.QueryType `json:"type"`
	Columns      []string          `json:"columns,omitempty"`
	Rows         [][]any           `json:"rows,omitempty"`
	RowsAffected int64             `json:"rows_affected"`
	Duration     time.Duration     `json:"duration"`
}

// Open connects to the configured target.
func Open(ctx context.Context, cfg Config) (*Runner, error) {
	name, err := DriverName(cfg.Target.Type)
	if err != nil {
		return nil, err
	}
	dsn, err := DSN(cfg.Target)
	if err != nil {
		return nil, err
	}

	r := New(nil, cfg)
	r.logger.Debug("connecting to target",
		slog.String("type", cfg.Target.Type),
		slog.String("database", cfg.Target.Database))

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Target.Type, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Target.Type, err)
	}
	if cfg.Target.Database == "" || cfg.Target.Database == ":memory:" {
		// Every connection to an in-memory database gets a fresh one.
		db.SetMaxOpenConns(1)
	}
	r.db = db
	return r, nil
}

// New wraps an existing connection. cfg.Target only labels history entries.
func New(db *sql.DB, cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	source := cfg.Source
	if source == "" {
		source = history.SourceRun
	}
	r := &Runner{
		db:               db,
		target:           cfg.Target,
		lint:             cfg.Lint,
		allowDestructive: cfg.AllowDestructive,
		logger:           logger,
		history:          cfg.History,
		source:           source,
	}
	// Destructive statements are refused even when the lint config
	// disables their warning.
	if rule, ok := lint.GetByID(rules.DestructiveRuleID); ok {
		r.destructive = lint.NewAnalyzerWithRules(nil, []lint.RuleDef{rule})
	}
	return r
}

// DB returns the underlying connection.
func (r *Runner) DB() *sql.DB {
	return r.db
}

// Close closes the database connection.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	r.logger.Debug("closing database connection")
	return r.db.Close()
}

// Prepare binds variables and checks the query. It returns the text that
// would be executed.
func (r *Runner) Prepare(query string, b sqltext.Bindings) (string, error) {
	if missing := sqltext.MissingVariables(query, b); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingVariables, strings.Join(missing, ", "))
	}
	query = sqltext.ReplaceVariables(query, b)

	res := sqltext.ValidateWithConfig(query, r.lint)
	if !res.Valid {
		return "", fmt.Errorf("%w: %s", ErrInvalidQuery, res.Error)
	}
	for _, w := range res.Warnings {
		r.logger.Warn("query warning", "warning", w)
	}

	if !r.allowDestructive && r.destructive != nil {
		if diags := r.destructive.Analyze(query); len(diags) > 0 {
			return "", fmt.Errorf("%w: %s (use --allow-destructive to run it)", ErrDestructive, diags[0].Message)
		}
	}
	return query, nil
}

// Query prepares and executes a query. Statements that return rows are
// queried; everything else is executed and reports rows affected.
func (r *Runner) Query(ctx context.Context, query string, b sqltext.Bindings) (*Result, error) {
	if r.db == nil {
		return nil, ErrNotConnected
	}

	prepared, err := r.Prepare(query, b)
	if err != nil {
		return nil, err
	}

	res := &Result{Query: prepared, Type: sqltext.GetQueryType(prepared)}
	start := time.Now()
	err = r.execute(ctx, res)
	res.Duration = time.Since(start)
	r.record(ctx, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) execute(ctx context.Context, res *Result) error {
	if !returnsRows(res.Type) && !hasReturning(res.Query) {
		out, err := r.db.ExecContext(ctx, res.Query)
		if err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		if n, err := out.RowsAffected(); err == nil {
			res.RowsAffected = n
		}
		r.logger.Debug("executed statement", "type", res.Type, "rows_affected", res.RowsAffected)
		return nil
	}

	rows, err := r.db.QueryContext(ctx, res.Query)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if err := scanRows(rows, res); err != nil {
		return err
	}
	r.logger.Debug("query returned rows", "rows", len(res.Rows))
	return nil
}

// record saves the query to history. Failures are logged, not returned.
func (r *Runner) record(ctx context.Context, res *Result, execErr error) {
	if r.history == nil {
		return
	}
	e := &history.Entry{
		Query:          res.Query,
		Type:           string(res.Type),
		Source:         r.source,
		TargetType:     r.target.Type,
		TargetDatabase: r.target.Database,
		RowsAffected:   res.RowsAffected,
		Duration:       res.Duration,
	}
	if execErr != nil {
		e.Error = execErr.Error()
	}
	if err := r.history.Record(ctx, e); err != nil {
		r.logger.Warn("failed to record query history", "error", err)
	}
}

// returnsRows reports whether a statement of type t is run with QueryContext.
// OTHER covers SHOW, EXPLAIN, PRAGMA and similar, which usually return rows.
func returnsRows(t sqltext.QueryType) bool {
	return t == sqltext.QuerySelect || t == sqltext.QueryOther
}

// hasReturning reports whether query has a RETURNING clause outside
// parentheses, as in INSERT ... RETURNING id.
func hasReturning(query string) bool {
	depth := 0
	for _, t := range lexer.Significant(lexer.Tokenize(query)) {
		switch t.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		case token.Word:
			if depth == 0 && strings.EqualFold(t.Literal, "RETURNING") {
				return true
			}
		}
	}
	return false
}

func scanRows(rows *sql.Rows, res *Result) error {
	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to get columns: %w", err)
	}
	res.Columns = cols
	res.Rows = [][]any{}

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	res.RowsAffected = int64(len(res.Rows))
	return nil
}
