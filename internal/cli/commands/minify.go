package commands

import (
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

// MinifyOptions holds options for the minify command.
type MinifyOptions struct {
	InputOptions
	Compact bool
}

// NewMinifyCommand creates the minify command.
func NewMinifyCommand() *cobra.Command {
	opts := &MinifyOptions{}

	cmd := &cobra.Command{
		Use:   "minify [SQL]",
		Short: "Collapse SQL onto as few characters as possible",
		Long: `Collapse whitespace runs to a single space and trim the ends.

String literals, quoted identifiers and comments are kept exactly as
written; a line comment keeps the line break that ends it.
--compact also drops the spaces around commas, parentheses and
comparison operators.`,
		Example: `  sqlkit minify -i query.sql
  sqlkit minify --compact "SELECT a , b FROM t WHERE x = ( 1 )"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args, &opts.InputOptions)
			if err != nil {
				return err
			}
			out := sqltext.Minify(sql)
			if opts.Compact {
				out = sqltext.Compact(sql)
			}
			return NewCommandContext(cmd).Renderer.SQL(out)
		},
	}

	addInputFlag(cmd, &opts.InputOptions)
	cmd.Flags().BoolVarP(&opts.Compact, "compact", "c", false, "Also remove spaces around punctuation")

	return cmd
}
