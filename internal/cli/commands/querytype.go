package commands

import (
	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

// NewTypeCommand creates the type command.
func NewTypeCommand() *cobra.Command {
	opts := &InputOptions{}

	cmd := &cobra.Command{
		Use:   "type [SQL]",
		Short: "Classify a query as SELECT, INSERT, UPDATE, DELETE, DDL or OTHER",
		Example: `  sqlkit type "WITH t AS (SELECT 1) SELECT * FROM t"
  sqlkit type -i migration.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args, opts)
			if err != nil {
				return err
			}
			return renderType(NewCommandContext(cmd).Renderer, sqltext.GetQueryType(sql))
		},
	}

	addInputFlag(cmd, opts)
	return cmd
}

func renderType(r *output.Renderer, qt sqltext.QueryType) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(map[string]sqltext.QueryType{"type": qt})
	case output.ModeMarkdown:
		r.Println(output.FormatKeyValue("Type", "`"+string(qt)+"`"))
	default:
		r.Println(string(qt))
	}
	return nil
}
