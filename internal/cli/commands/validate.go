package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/internal/watch"
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

// ErrInvalidSQL is returned by validate when the query fails a check, so
// the process exits non-zero.
var ErrInvalidSQL = errors.New("invalid SQL")

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	InputOptions
	Disable     []string // Rule IDs to disable
	Severity    []string // RULE=severity overrides
	MinSeverity string   // Hide diagnostics below this level
	Watch       bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [SQL | PATH...]",
		Short: "Check a query for structural problems",
		Long: `Check a query for empty input, unbalanced parentheses, unclosed strings,
comments and quoted identifiers, and warn about destructive statements
(DROP, TRUNCATE) and DELETE/UPDATE without WHERE.

A destructive statement is a warning: the query stays valid. The command
exits non-zero only when an error-level check fails.

With --watch the arguments are files or directories (default: the current
directory). Every .sql file is validated, then re-validated each time it
changes, until interrupted.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Validate a query
  sqlkit validate "SELECT * FROM users WHERE (id = 1"

  # Ignore destructive statements
  sqlkit validate --disable SQ04 -i cleanup.sql

  # Treat DELETE without WHERE as an error
  sqlkit validate --severity SQ07=error -i purge.sql

  # Re-validate .sql files as they change
  sqlkit validate --watch ./queries`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Watch {
				return runValidateWatch(cmd, args, opts)
			}
			return runValidate(cmd, args, opts)
		},
	}

	addInputFlag(cmd, &opts.InputOptions)
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringSliceVar(&opts.Severity, "severity", nil, "Severity overrides RULE=error|warning|info|hint")
	cmd.Flags().StringVar(&opts.MinSeverity, "min-severity", "", "Only show diagnostics at or above this level")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Watch .sql files and re-validate on change")

	return cmd
}

// buildLintConfig layers CLI flags over the configured lint settings.
func buildLintConfig(cmdCtx *CommandContext, opts *ValidateOptions) (*lint.Config, error) {
	lintCfg := cmdCtx.Cfg.LintSettings()

	for _, id := range opts.Disable {
		if id = strings.TrimSpace(id); id != "" {
			lintCfg.Disable(id)
		}
	}
	for _, kv := range opts.Severity {
		id, sev, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --severity %q: want RULE=severity", kv)
		}
		s, ok := lint.ParseSeverity(sev)
		if !ok {
			return nil, fmt.Errorf("invalid severity %q for %s", sev, id)
		}
		lintCfg.SetSeverity(strings.TrimSpace(id), s)
	}
	return lintCfg, nil
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cmdCtx := NewCommandContext(cmd)
	lintCfg, err := buildLintConfig(cmdCtx, opts)
	if err != nil {
		return err
	}
	sql, err := readSQL(cmd, args, &opts.InputOptions)
	if err != nil {
		return err
	}

	res := sqltext.ValidateWithConfig(sql, lintCfg)
	if opts.MinSeverity != "" {
		threshold, ok := lint.ParseSeverity(opts.MinSeverity)
		if !ok {
			return fmt.Errorf("invalid --min-severity %q", opts.MinSeverity)
		}
		res.Diagnostics = lint.FilterBySeverity(res.Diagnostics, threshold)
	}
	if err := renderValidation(cmdCtx.Renderer, "", res); err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidSQL, res.Error)
	}
	return nil
}

func runValidateWatch(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cmdCtx := NewCommandContext(cmd)
	lintCfg, err := buildLintConfig(cmdCtx, opts)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	w, err := watch.New(watch.Config{Paths: args, Lint: lintCfg, Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return watchAndRender(cmd.Context(), w, cmdCtx.Renderer)
}

// watchAndRender validates every file once, then renders each change until
// ctx is cancelled.
func watchAndRender(ctx context.Context, w *watch.Watcher, r *output.Renderer) error {
	events, err := w.CheckAll()
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := renderValidation(r, ev.Path, ev.Result); err != nil {
			return err
		}
	}
	r.Println(r.Styles().Muted.Render(fmt.Sprintf("Watching %d files for changes (Ctrl+C to stop)", len(events))))

	ch := w.Notifier().Subscribe()
	defer w.Notifier().Unsubscribe(ch)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return <-done
		case err := <-done:
			return err
		case ev := <-ch:
			if err := renderValidation(r, ev.Path, ev.Result); err != nil {
				return err
			}
		}
	}
}

// validationJSON is the JSON shape of one validation.
type validationJSON struct {
	Path string `json:"path,omitempty"`
	sqltext.Result
}

func renderValidation(r *output.Renderer, path string, res sqltext.Result) error {
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		return r.JSON(validationJSON{Path: path, Result: res})
	}

	styles := r.Styles()
	label := "Query"
	if path != "" {
		label = path
	}

	if mode == output.ModeMarkdown {
		status := "valid"
		if !res.Valid {
			status = "invalid"
		}
		r.Println(output.FormatHeader(2, fmt.Sprintf("%s: %s", label, status)))
		r.Println("")
		for _, d := range res.Diagnostics {
			r.Printf("- `%s` **%s** %s (line %d, column %d)\n", d.RuleID, d.Severity, d.Message, d.Pos.Line, d.Pos.Column)
		}
		if len(res.Diagnostics) > 0 {
			r.Println("")
		}
		return nil
	}

	if res.Valid {
		r.Println(styles.Success.Render("✓ "+label+" is valid"))
	} else {
		r.Println(styles.Error.Render("✗ "+label+" is invalid"))
	}
	for _, d := range res.Diagnostics {
		loc := fmt.Sprintf("%d:%d", d.Pos.Line, d.Pos.Column)
		if d.Pos.Line == 0 {
			loc = "-"
		}
		r.Printf("  %s  %s  %s  %s\n",
			styles.Muted.Render(fmt.Sprintf("%-5s", loc)),
			severityLabel(styles, d.Severity),
			styles.Bold.Render(d.RuleID),
			d.Message,
		)
	}
	return nil
}

func severityLabel(styles *output.Styles, sev lint.Severity) string {
	return getSeverityStyle(styles, sev).Render(fmt.Sprintf("%-7s", sev.String()))
}
