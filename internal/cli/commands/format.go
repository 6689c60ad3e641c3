package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// FormatOptions holds options for the format command.
type FormatOptions struct {
	InputOptions
	KeywordCase string
	Indent      string
	Semicolon   bool
	Write       bool
	Check       bool
}

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	opts := &FormatOptions{}

	cmd := &cobra.Command{
		Use:   "format [SQL | FILE...]",
		Short: "Format SQL for readability",
		Long: `Reformat SQL so each major clause starts on its own line.

Whitespace is normalized, clause keywords are upper-cased and conditions
joined with AND/OR are indented. Literals, identifiers and comments are
copied verbatim.

With --write or --check the arguments are files, formatted concurrently.`,
		Example: `  # Format a query
  sqlkit format "select id, name from users where active = true"

  # Format from a file or stdin
  sqlkit format -i query.sql
  cat query.sql | sqlkit format

  # Rewrite files in place
  sqlkit format --write queries/*.sql

  # Fail if any file is not formatted
  sqlkit format --check queries/*.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, opts)
		},
	}

	addInputFlag(cmd, &opts.InputOptions)
	cmd.Flags().StringVar(&opts.KeywordCase, "keyword-case", "", "Keyword case: upper, lower, preserve")
	cmd.Flags().StringVar(&opts.Indent, "indent", "", "Indentation unit (default: two spaces)")
	cmd.Flags().BoolVar(&opts.Semicolon, "semicolon", false, "Terminate the query with a semicolon")
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write the result back to the files")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Report files that are not formatted")

	_ = cmd.RegisterFlagCompletionFunc("keyword-case", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"upper", "lower", "preserve"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// resolveFormatOptions layers flags over the configured defaults.
func resolveFormatOptions(cmd *cobra.Command, cmdCtx *CommandContext, opts *FormatOptions) (sqltext.Options, error) {
	fo := cmdCtx.Cfg.FormatOptions()
	if opts.KeywordCase != "" {
		kc, err := sqltext.ParseKeywordCase(opts.KeywordCase)
		if err != nil {
			return fo, err
		}
		fo.KeywordCase = kc
	}
	if cmd.Flags().Changed("indent") {
		fo.Indent = opts.Indent
	}
	if cmd.Flags().Changed("semicolon") {
		fo.EnsureSemicolon = opts.Semicolon
	}
	return fo, nil
}

func runFormat(cmd *cobra.Command, args []string, opts *FormatOptions) error {
	cmdCtx := NewCommandContext(cmd)
	fo, err := resolveFormatOptions(cmd, cmdCtx, opts)
	if err != nil {
		return err
	}

	if opts.Write || opts.Check {
		if len(args) == 0 {
			return errors.New("--write and --check need at least one file")
		}
		return formatFiles(cmdCtx, args, fo, opts.Write)
	}

	sql, err := readSQL(cmd, args, &opts.InputOptions)
	if err != nil {
		return err
	}
	return cmdCtx.Renderer.SQL(sqltext.FormatWithOptions(sql, fo))
}

// formatFileResult is the outcome for one file of format --write/--check.
type formatFileResult struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
}

// formatFiles formats paths concurrently. With write unset it only reports
// which files would change and fails if any would.
func formatFiles(cmdCtx *CommandContext, paths []string, fo sqltext.Options, write bool) error {
	results := make([]formatFileResult, len(paths))

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		eg.Go(func() error {
			changed, err := formatFile(path, fo, write)
			if err != nil {
				return err
			}
			results[i] = formatFileResult{Path: path, Changed: changed}
			cmdCtx.Logger.Debug("formatted file", "path", path, "changed", changed)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	r := cmdCtx.Renderer
	changed := 0
	for _, res := range results {
		if res.Changed {
			changed++
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
	} else {
		verb := "would reformat"
		if write {
			verb = "reformatted"
		}
		for _, res := range results {
			if res.Changed {
				r.Printf("%s %s\n", verb, res.Path)
			}
		}
		r.Success(fmt.Sprintf("%d of %d files %s", changed, len(results), verb))
	}

	if !write && changed > 0 {
		return fmt.Errorf("%d files are not formatted", changed)
	}
	return nil
}

func formatFile(path string, fo sqltext.Options, write bool) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	formatted := []byte(sqltext.FormatWithOptions(string(content), fo))
	if len(formatted) > 0 && formatted[len(formatted)-1] != '\n' {
		formatted = append(formatted, '\n')
	}
	if bytes.Equal(content, formatted) {
		return false, nil
	}
	if !write {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, formatted, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
