package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/internal/history"
	"github.com/spf13/cobra"
)

// Errors returned by the history command.
var (
	ErrHistoryDisabled = errors.New("query history is disabled (history.enabled: false)")
	ErrNoHistory       = errors.New("no query history yet")
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int
	Failed bool
	Search string
	Since  time.Duration
	Format string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List queries run against the target",
		Long: `List the queries that run and repl --connect executed, newest first.

History is stored in a SQLite database (history.path in sqlkit.yaml,
.sqlkit/history.db next to the config file by default) and keeps the
latest history.max_entries queries.`,
		Example: `  # Recent queries
  sqlkit history

  # Failed queries from the last day
  sqlkit history --failed --since 24h

  # Queries mentioning orders, as JSON
  sqlkit history --search orders --format json

  # Re-run a query
  sqlkit history show 3f2a --sql | sqlkit run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "Only show queries that failed")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Only show queries containing text")
	cmd.Flags().DurationVar(&opts.Since, "since", 0, "Only show queries newer than a duration (e.g. 1h)")
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "", "Result format (table|json|csv|md)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return output.TableFormats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newHistoryShowCommand(opts))
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

// openHistory opens the history store for recording. It returns nil when
// history is disabled or unavailable; running queries never fails on it.
func openHistory(cmd *cobra.Command, cmdCtx *CommandContext) *history.SQLiteStore {
	h := cmdCtx.Cfg.History
	if !h.Enabled || h.Path == "" {
		return nil
	}
	store, err := history.Open(cmd.Context(), h.Path, h.MaxEntries)
	if err != nil {
		cmdCtx.Logger.Warn("query history unavailable", "path", h.Path, "error", err)
		return nil
	}
	return store
}

// openHistoryForRead opens an existing history store.
func openHistoryForRead(cmd *cobra.Command, cmdCtx *CommandContext) (*history.SQLiteStore, error) {
	h := cmdCtx.Cfg.History
	if !h.Enabled || h.Path == "" {
		return nil, ErrHistoryDisabled
	}
	if h.Path != ":memory:" {
		if _, err := os.Stat(h.Path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (run 'sqlkit run' first)", ErrNoHistory, h.Path)
		}
	}
	return history.Open(cmd.Context(), h.Path, h.MaxEntries)
}

func runHistoryList(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	store, err := openHistoryForRead(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	list := history.ListOptions{
		Limit:      opts.Limit,
		Search:     opts.Search,
		FailedOnly: opts.Failed,
	}
	if opts.Since > 0 {
		list.Since = time.Now().Add(-opts.Since)
	}

	entries, err := store.List(cmd.Context(), list)
	if err != nil {
		return err
	}
	return renderHistory(cmdCtx.Renderer, entries, opts.Format)
}

var historyColumns = []string{"id", "executed_at", "source", "type", "rows", "duration", "status", "query"}

// renderHistory prints entries as a table in the requested format.
func renderHistory(r *output.Renderer, entries []*history.Entry, format string) error {
	if format == "" {
		switch r.EffectiveMode() {
		case output.ModeJSON:
			return r.JSON(entries)
		case output.ModeMarkdown:
			format = output.TableFormatMarkdown
		default:
			format = output.TableFormatTable
		}
	}
	if format == output.TableFormatJSON {
		return r.JSON(entries)
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{
			shortID(e.ID),
			e.ExecutedAt.Local().Format(time.DateTime),
			e.Source,
			e.Type,
			e.RowsAffected,
			e.Duration.Round(time.Microsecond).String(),
			entryStatus(e),
			truncateOneLine(strings.TrimSpace(e.Query), 60),
		}
	}
	return output.RenderTable(r.Writer(), historyColumns, rows, format)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func entryStatus(e *history.Entry) string {
	if e.Failed() {
		return "error"
	}
	return "ok"
}

func newHistoryShowCommand(parent *HistoryOptions) *cobra.Command {
	var sqlOnly bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded query",
		Long: `Show a recorded query with its details. The id may be abbreviated to
any unique prefix.`,
		Example: `  sqlkit history show 3f2a
  sqlkit history show 3f2a --sql > query.sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := openHistoryForRead(cmd, cmdCtx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			e, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if sqlOnly {
				cmdCtx.Renderer.Println(e.Query)
				return nil
			}
			return renderHistoryEntry(cmdCtx.Renderer, e, parent.Format)
		},
	}

	cmd.Flags().BoolVar(&sqlOnly, "sql", false, "Print only the query text")
	return cmd
}

func renderHistoryEntry(r *output.Renderer, e *history.Entry, format string) error {
	if format == output.TableFormatJSON || (format == "" && r.EffectiveMode() == output.ModeJSON) {
		return r.JSON(e)
	}

	target := e.TargetType
	if e.TargetDatabase != "" {
		target += " (" + e.TargetDatabase + ")"
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Query "+shortID(e.ID)))
		r.Println("")
		r.Println(output.FormatKeyValue("ID", e.ID))
		r.Println(output.FormatKeyValue("Executed", e.ExecutedAt.Local().Format(time.DateTime)))
		r.Println(output.FormatKeyValue("Source", e.Source))
		r.Println(output.FormatKeyValue("Target", target))
		r.Println(output.FormatKeyValue("Type", e.Type))
		r.Println(output.FormatKeyValue("Rows", e.RowsAffected))
		r.Println(output.FormatKeyValue("Duration", e.Duration.String()))
		if e.Failed() {
			r.Println(output.FormatKeyValue("Error", e.Error))
		}
		r.Println("")
		return r.SQL(e.Query)
	}

	s := r.Styles()
	r.Printf("%s %s\n", s.Muted.Render("ID:      "), e.ID)
	r.Printf("%s %s\n", s.Muted.Render("Executed:"), e.ExecutedAt.Local().Format(time.DateTime))
	r.Printf("%s %s\n", s.Muted.Render("Source:  "), e.Source)
	r.Printf("%s %s\n", s.Muted.Render("Target:  "), target)
	r.Printf("%s %s\n", s.Muted.Render("Type:    "), e.Type)
	r.Printf("%s %d\n", s.Muted.Render("Rows:    "), e.RowsAffected)
	r.Printf("%s %s\n", s.Muted.Render("Duration:"), e.Duration)
	if e.Failed() {
		r.Printf("%s %s\n", s.Muted.Render("Error:   "), s.Error.Render(e.Error))
	}
	r.Println("")
	return r.SQL(e.Query)
}

func newHistoryClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Short:   "Delete all recorded queries",
		Example: `  sqlkit history clear`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := openHistoryForRead(cmd, cmdCtx)
			if errors.Is(err, ErrNoHistory) {
				cmdCtx.Renderer.Success("History is already empty")
				return nil
			}
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Deleted %d history entries", n))
			return nil
		},
	}
}
