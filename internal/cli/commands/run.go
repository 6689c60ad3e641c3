package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/sqlkit/internal/cli/config"
	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/internal/history"
	"github.com/leapstack-labs/sqlkit/internal/runner"
	"github.com/spf13/cobra"
)

// ErrNoTarget is returned when a command needs a database and none is configured.
var ErrNoTarget = errors.New("no target configured")

// RunOptions holds options for the run command.
type RunOptions struct {
	InputOptions
	BindingOptions
	AllowDestructive bool
	Format           string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [SQL]",
		Short: "Run a query against the configured target",
		Long: `Substitute variables, validate and run a query against the target database
from sqlkit.yaml (sqlite, duckdb or postgres). Use --target to pick an
environment.

The query is refused when a variable has no binding, when it is invalid,
or when it is destructive (DROP, TRUNCATE) unless --allow-destructive is
given.`,
		Example: `  # Query the default target
  sqlkit run "SELECT * FROM users WHERE id = :id" --var id=1

  # Run a file against production, as CSV
  sqlkit run -i report.sql --target prod --format csv

  # Run a cleanup
  sqlkit run "DELETE FROM sessions" --allow-destructive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	addInputFlag(cmd, &opts.InputOptions)
	addBindingFlags(cmd, &opts.BindingOptions)
	cmd.Flags().BoolVar(&opts.AllowDestructive, "allow-destructive", false, "Run destructive statements")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Result format (table|json|csv|md)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return output.TableFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runnerTarget converts the configured target for the runner.
func runnerTarget(cfg *config.Config) (runner.Target, error) {
	if cfg == nil || cfg.Target == nil || cfg.Target.Type == "" {
		return runner.Target{}, fmt.Errorf("%w\nHint: add a target section to sqlkit.yaml", ErrNoTarget)
	}
	t := cfg.Target
	return runner.Target{
		Type:     t.Type,
		Database: t.Database,
		Host:     t.Host,
		Port:     t.Port,
		User:     t.User,
		Password: t.Password,
		Options:  t.Options,
	}, nil
}

// openRunner connects to the configured target. Executed queries are
// recorded to history when it is enabled. The returned func closes both.
func openRunner(cmd *cobra.Command, cmdCtx *CommandContext, allowDestructive bool, source string) (*runner.Runner, func(), error) {
	target, err := runnerTarget(cmdCtx.Cfg)
	if err != nil {
		return nil, nil, err
	}

	store := openHistory(cmd, cmdCtx)
	cfg := runner.Config{
		Target:           target,
		Lint:             cmdCtx.Cfg.LintSettings(),
		AllowDestructive: allowDestructive,
		Logger:           cmdCtx.Logger,
		Source:           source,
	}
	if store != nil {
		cfg.History = store
	}

	run, err := runner.Open(cmd.Context(), cfg)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}
	return run, func() {
		_ = run.Close()
		if store != nil {
			_ = store.Close()
		}
	}, nil
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	sql, err := readSQL(cmd, args, &opts.InputOptions)
	if err != nil {
		return err
	}
	cmdCtx := NewCommandContext(cmd)
	bindings, err := opts.resolve(cmdCtx.Cfg)
	if err != nil {
		return err
	}

	run, closeRunner, err := openRunner(cmd, cmdCtx, opts.AllowDestructive, history.SourceRun)
	if err != nil {
		return err
	}
	defer closeRunner()

	res, err := run.Query(cmd.Context(), sql, bindings)
	if err != nil {
		return err
	}
	return renderRunResult(cmdCtx.Renderer, res, opts.Format)
}

// renderRunResult prints rows for queries that return them and the affected
// row count otherwise.
func renderRunResult(r *output.Renderer, res *runner.Result, format string) error {
	if format == "" {
		switch r.EffectiveMode() {
		case output.ModeJSON:
			return r.JSON(res)
		case output.ModeMarkdown:
			format = output.TableFormatMarkdown
		default:
			format = output.TableFormatTable
		}
	}

	if len(res.Columns) == 0 {
		if format == output.TableFormatJSON {
			return r.JSON(map[string]int64{"rows_affected": res.RowsAffected})
		}
		r.Success(fmt.Sprintf("%s: %d rows affected (%s)", res.Type, res.RowsAffected, res.Duration.Round(time.Microsecond)))
		return nil
	}

	return output.RenderTable(r.Writer(), res.Columns, res.Rows, format)
}
