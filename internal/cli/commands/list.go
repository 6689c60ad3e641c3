package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/internal/watch"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [PATH...]",
		Short: "List query files with their type, tables and variables",
		Long: `List every .sql file under the given paths (the current directory by
default) with its statement type, the tables it references, the variables
it expects and whether it is valid.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List query files (auto-detect output format)
  sqlkit list

  # List one directory as JSON
  sqlkit list queries/reports --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args)
		},
	}

	return cmd
}

// QueryFileInfo describes one query file.
type QueryFileInfo struct {
	Path      string   `json:"path"`
	Type      string   `json:"type"`
	Tables    []string `json:"tables"`
	Variables []string `json:"variables"`
	Unbound   []string `json:"unbound,omitempty"`
	Valid     bool     `json:"valid"`
	Error     string   `json:"error,omitempty"`
	Warnings  int      `json:"warnings"`
}

// ListSummary aggregates the listed files.
type ListSummary struct {
	Total   int            `json:"total"`
	Invalid int            `json:"invalid"`
	ByType  map[string]int `json:"by_type"`
}

// ListOutput is the JSON output for the list command.
type ListOutput struct {
	Files   []QueryFileInfo `json:"files"`
	Summary ListSummary     `json:"summary"`
}

func runList(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := watch.FindFiles(args)
	if err != nil {
		return err
	}

	out, err := describeFiles(files, cmdCtx)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return listMarkdown(r, out)
	default:
		return listText(r, out)
	}
}

func describeFiles(files []string, cmdCtx *CommandContext) (*ListOutput, error) {
	lintCfg := cmdCtx.Cfg.LintSettings()
	out := &ListOutput{
		Files:   make([]QueryFileInfo, 0, len(files)),
		Summary: ListSummary{Total: len(files), ByType: make(map[string]int)},
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		sql := string(data)
		res := sqltext.ValidateWithConfig(sql, lintCfg)

		info := QueryFileInfo{
			Path:      f,
			Type:      string(sqltext.GetQueryType(sql)),
			Tables:    sqltext.ExtractTableNames(sql),
			Variables: sqltext.ExtractVariables(sql),
			Valid:     res.Valid,
			Warnings:  len(res.Warnings),
		}
		if !res.Valid {
			info.Error = res.Error
			out.Summary.Invalid++
		}
		for _, v := range info.Variables {
			if _, ok := cmdCtx.Cfg.Vars[v]; !ok {
				info.Unbound = append(info.Unbound, v)
			}
		}

		out.Summary.ByType[info.Type]++
		out.Files = append(out.Files, info)
	}
	return out, nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// listText outputs files in styled text format.
func listText(r *output.Renderer, out *ListOutput) error {
	styles := r.Styles()
	r.Println(styles.Header1.Render(fmt.Sprintf("Query files (%d total)", out.Summary.Total)))
	r.Println("")

	for i, f := range out.Files {
		icon := statusIcon(styles, statusPass)
		if !f.Valid {
			icon = statusIcon(styles, statusError)
		}
		r.Printf("%3d. %s %s %s\n", i+1, icon, f.Path, styles.Muted.Render("["+f.Type+"]"))
		r.Printf("       %s %s\n", styles.Muted.Render("tables:"), joinOrDash(f.Tables))
		if len(f.Variables) > 0 {
			r.Printf("       %s %s\n", styles.Muted.Render("vars:  "), strings.Join(f.Variables, ", "))
		}
		if f.Error != "" {
			r.Printf("       %s\n", styles.Error.Render(f.Error))
		}
	}

	if out.Summary.Invalid > 0 {
		r.Println("")
		r.Warning(fmt.Sprintf("%d of %d files are invalid", out.Summary.Invalid, out.Summary.Total))
	}
	return nil
}

// listMarkdown outputs files in markdown format.
func listMarkdown(r *output.Renderer, out *ListOutput) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Query files (%d total)", out.Summary.Total)))
	r.Println("")

	for _, f := range out.Files {
		r.Println(output.FormatHeader(2, f.Path))
		r.Println(output.FormatKeyValue("Type", f.Type))
		r.Println(output.FormatKeyValue("Tables", joinOrDash(f.Tables)))
		if len(f.Variables) > 0 {
			r.Println(output.FormatKeyValue("Variables", strings.Join(f.Variables, ", ")))
		}
		if len(f.Unbound) > 0 {
			r.Println(output.FormatKeyValue("Unbound", strings.Join(f.Unbound, ", ")))
		}
		if f.Valid {
			r.Println(output.FormatKeyValue("Status", "valid"))
		} else {
			r.Println(output.FormatKeyValue("Status", "invalid: "+f.Error))
		}
		r.Println("")
	}
	return nil
}
