package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	InputOptions
	BindingOptions
	Strict bool
}

// renderJSON is the JSON shape of the render command.
type renderJSON struct {
	SQL     string   `json:"sql"`
	Missing []string `json:"missing,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render [SQL]",
		Short: "Substitute variables into a query",
		Long: `Replace {{name}} and :name placeholders with SQL literals.

Strings are quoted with embedded quotes doubled, numbers and booleans are
written bare and null becomes NULL. Placeholders inside string literals and
comments are left alone, as are placeholders with no binding (use --strict
to fail instead).

Output adapts to environment:
  - Terminal: Highlighted SQL
  - Piped/Scripted: Markdown with code block`,
		Example: `  # Render with inline bindings
  sqlkit render "SELECT * FROM t WHERE id = :id AND name = {{name}}" --var id=7 --var name=O\'Brien

  # Render from a file with a bindings file
  sqlkit render -i report.sql --vars-file vars.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	addInputFlag(cmd, &opts.InputOptions)
	addBindingFlags(cmd, &opts.BindingOptions)
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Fail when a variable has no binding")
	return cmd
}

func runRender(cmd *cobra.Command, args []string, opts *RenderOptions) error {
	sql, err := readSQL(cmd, args, &opts.InputOptions)
	if err != nil {
		return err
	}
	cmdCtx := NewCommandContext(cmd)
	bindings, err := opts.resolve(cmdCtx.Cfg)
	if err != nil {
		return err
	}

	missing := sqltext.MissingVariables(sql, bindings)
	if len(missing) > 0 && opts.Strict {
		return fmt.Errorf("missing variables: %s", strings.Join(missing, ", "))
	}
	rendered := sqltext.ReplaceVariables(sql, bindings)
	cmdCtx.Logger.Debug("rendered query", "bound", len(bindings), "missing", len(missing))

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(renderJSON{SQL: rendered, Missing: missing})
	}
	if len(missing) > 0 {
		r.Warning("unbound variables left in place: " + strings.Join(missing, ", "))
	}
	return r.SQL(rendered)
}
