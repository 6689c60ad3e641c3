package commands

import (
	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

// VarsOptions holds options for the vars command.
type VarsOptions struct {
	InputOptions
	BindingOptions
}

// varStatus is one row of the vars listing.
type varStatus struct {
	Name  string `json:"name"`
	Bound bool   `json:"bound"`
	Value string `json:"value,omitempty"`
}

// NewVarsCommand creates the vars command.
func NewVarsCommand() *cobra.Command {
	opts := &VarsOptions{}

	cmd := &cobra.Command{
		Use:   "vars [SQL]",
		Short: "List the variables a query references",
		Long: `List the {{name}} and :name placeholders of a query in order of first
appearance, with the literal each would be replaced by. Values come from
the vars section of sqlkit.yaml, --vars-file and --var, later sources
winning.`,
		Example: `  sqlkit vars "SELECT * FROM orders WHERE id = {{id}} AND status = :status"
  sqlkit vars -i report.sql --var id=42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVars(cmd, args, opts)
		},
	}

	addInputFlag(cmd, &opts.InputOptions)
	addBindingFlags(cmd, &opts.BindingOptions)
	return cmd
}

func runVars(cmd *cobra.Command, args []string, opts *VarsOptions) error {
	sql, err := readSQL(cmd, args, &opts.InputOptions)
	if err != nil {
		return err
	}
	cmdCtx := NewCommandContext(cmd)
	bindings, err := opts.resolve(cmdCtx.Cfg)
	if err != nil {
		return err
	}
	return renderVars(cmdCtx.Renderer, sql, bindings)
}

func renderVars(r *output.Renderer, sql string, bindings sqltext.Bindings) error {
	var vars []varStatus
	for _, name := range sqltext.ExtractVariables(sql) {
		v, ok := bindings[name]
		st := varStatus{Name: name, Bound: ok}
		if ok {
			st.Value = sqltext.Literal(v)
		}
		vars = append(vars, st)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if vars == nil {
			vars = []varStatus{}
		}
		return r.JSON(map[string][]varStatus{"variables": vars})
	}
	if len(vars) == 0 {
		r.Println("No variables")
		return nil
	}

	format := output.TableFormatTable
	if r.EffectiveMode() == output.ModeMarkdown {
		format = output.TableFormatMarkdown
	}
	rows := make([][]any, 0, len(vars))
	for _, v := range vars {
		value := v.Value
		if !v.Bound {
			value = "(unbound)"
		}
		rows = append(rows, []any{v.Name, value})
	}
	return output.RenderTable(r.Writer(), []string{"variable", "value"}, rows, format)
}
