package commands

import (
	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	opts := &InputOptions{}

	cmd := &cobra.Command{
		Use:   "tables [SQL]",
		Short: "List the tables a query references",
		Long: `List the distinct table names following FROM, JOIN, INTO, UPDATE and
TABLE, in order of first appearance. Qualified names such as schema.table
are kept whole.`,
		Example: `  sqlkit tables "SELECT * FROM users u JOIN orders o ON u.id = o.user_id"
  sqlkit tables -i report.sql --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args, opts)
			if err != nil {
				return err
			}
			return renderTables(NewCommandContext(cmd).Renderer, sqltext.ExtractTableNames(sql))
		},
	}

	addInputFlag(cmd, opts)
	return cmd
}

func renderTables(r *output.Renderer, tables []string) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(map[string][]string{"tables": tables})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Tables"))
		r.Println("")
		if len(tables) == 0 {
			r.Println("_none_")
			return nil
		}
		for _, t := range tables {
			r.Printf("- `%s`\n", t)
		}
	default:
		for _, t := range tables {
			r.Println(t)
		}
	}
	return nil
}
