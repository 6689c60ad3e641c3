package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqlkit/internal/cli/config"
	"github.com/leapstack-labs/sqlkit/internal/cli/output"
	"github.com/leapstack-labs/sqlkit/internal/history"
	"github.com/leapstack-labs/sqlkit/internal/runner"
	"github.com/leapstack-labs/sqlkit/internal/watch"
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	_ "github.com/leapstack-labs/sqlkit/pkg/lint/rules" // register rules
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/spf13/cobra"
)

// Check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
	statusOff   = "off"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format  string // Output format: text, markdown, json
	Offline bool
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor [PATH...]",
		Short: "Check the project setup and every query file",
		Long: `Check the configuration, the database target and the query history,
then validate every .sql file under the given paths (the current
directory by default).

The report includes:
- A summary of the query files (statement types, tables, variables)
- Environment checks (config file, target connection, history)
- Validation results grouped by rule
- A health score (0-100) and recommendations`,
		Example: `  # Check the current project
  sqlkit doctor

  # Check one directory without connecting to the target
  sqlkit doctor queries/ --offline

  # Output as JSON
  sqlkit doctor --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "Skip the target connection check")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	Environment     []EnvCheck     `json:"environment"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary contains statistics over the query files.
type ProjectSummary struct {
	Files     int            `json:"files"`
	Invalid   int            `json:"invalid"`
	Types     map[string]int `json:"types"`
	Tables    int            `json:"tables"`
	Variables []string       `json:"variables"`
	Unbound   []string       `json:"unbound,omitempty"`
}

// EnvCheck is the result of one environment check.
type EnvCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// HealthCheck represents a single rule's result across all files.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error", "off"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string, opts *DoctorOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return err
		}
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := watch.FindFiles(args)
	if err != nil {
		return err
	}

	out, err := analyzeProject(files, cmdCtx.Cfg)
	if err != nil {
		return err
	}
	out.Environment = checkEnvironment(cmd, cmdCtx, opts.Offline)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, out)
	default:
		return renderDoctorText(r, out)
	}
}

// analyzeProject validates every file and aggregates the findings by rule.
func analyzeProject(files []string, cfg *config.Config) (*DoctorOutput, error) {
	lintCfg := cfg.LintSettings()
	summary := ProjectSummary{Files: len(files), Types: make(map[string]int)}
	tables := make(map[string]bool)
	vars := make(map[string]bool)
	diagsByRule := make(map[string][]lint.Diagnostic)
	detailsByRule := make(map[string][]string)
	issues := 0

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		sql := string(data)

		res := sqltext.ValidateWithConfig(sql, lintCfg)
		if !res.Valid {
			summary.Invalid++
		}
		for _, d := range res.Diagnostics {
			diagsByRule[d.RuleID] = append(diagsByRule[d.RuleID], d)
			detailsByRule[d.RuleID] = append(detailsByRule[d.RuleID], fmt.Sprintf("%s:%d: %s", f, d.Pos.Line, d.Message))
			issues++
		}

		summary.Types[string(sqltext.GetQueryType(sql))]++
		for _, t := range sqltext.ExtractTableNames(sql) {
			tables[t] = true
		}
		for _, v := range sqltext.ExtractVariables(sql) {
			vars[v] = true
		}
	}

	summary.Tables = len(tables)
	summary.Variables = sortedKeys(vars)
	for _, v := range summary.Variables {
		if _, ok := cfg.Vars[v]; !ok {
			summary.Unbound = append(summary.Unbound, v)
		}
	}

	all := lint.GetAll()
	healthChecks := make([]HealthCheck, 0, len(all))
	for _, rule := range all {
		check := HealthCheck{
			RuleID:     rule.ID,
			Name:       rule.Name,
			Group:      rule.Group,
			Status:     statusPass,
			IssueCount: len(diagsByRule[rule.ID]),
			Details:    detailsByRule[rule.ID],
		}
		switch {
		case lintCfg.IsDisabled(rule.ID):
			check.Status = statusOff
		case lint.HasErrors(diagsByRule[rule.ID]):
			check.Status = statusError
		case check.IssueCount > 0:
			check.Status = statusWarn
		}
		healthChecks = append(healthChecks, check)
	}

	// Sort health checks by group then by rule ID
	sort.Slice(healthChecks, func(i, j int) bool {
		if healthChecks[i].Group != healthChecks[j].Group {
			return healthChecks[i].Group < healthChecks[j].Group
		}
		return healthChecks[i].RuleID < healthChecks[j].RuleID
	})

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    healthChecks,
		Score:           calculateHealthScore(healthChecks, len(files)),
		Recommendations: generateRecommendations(healthChecks, summary.Unbound),
		IssueCount:      issues,
	}, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkEnvironment reports on the config file, the target and history.
func checkEnvironment(cmd *cobra.Command, cmdCtx *CommandContext, offline bool) []EnvCheck {
	checks := make([]EnvCheck, 0, 3)

	if f := config.GetConfigFileUsed(); f != "" {
		checks = append(checks, EnvCheck{Name: "config", Status: statusPass, Detail: f})
	} else {
		checks = append(checks, EnvCheck{Name: "config", Status: statusWarn, Detail: "no sqlkit.yaml found, using defaults"})
	}

	checks = append(checks, checkTarget(cmd, cmdCtx, offline))
	checks = append(checks, checkHistory(cmd, cmdCtx))
	return checks
}

func checkTarget(cmd *cobra.Command, cmdCtx *CommandContext, offline bool) EnvCheck {
	check := EnvCheck{Name: "target"}
	target, err := runnerTarget(cmdCtx.Cfg)
	if err != nil {
		check.Status = statusError
		check.Detail = ErrNoTarget.Error()
		return check
	}
	label := target.Type
	if target.Database != "" {
		label += " (" + target.Database + ")"
	}
	if offline {
		check.Status = statusOff
		check.Detail = label + ", not checked"
		return check
	}

	run, err := runner.Open(cmd.Context(), runner.Config{Target: target, Logger: cmdCtx.Logger})
	if err != nil {
		check.Status = statusError
		check.Detail = firstLine(err.Error())
		return check
	}
	_ = run.Close()
	check.Status = statusPass
	check.Detail = label + " reachable"
	return check
}

func checkHistory(cmd *cobra.Command, cmdCtx *CommandContext) EnvCheck {
	check := EnvCheck{Name: "history"}
	h := cmdCtx.Cfg.History
	if !h.Enabled || h.Path == "" {
		check.Status = statusOff
		check.Detail = "disabled"
		return check
	}
	if _, err := os.Stat(h.Path); os.IsNotExist(err) {
		check.Status = statusPass
		check.Detail = "no queries recorded yet (" + h.Path + ")"
		return check
	}

	store, err := history.Open(cmd.Context(), h.Path, h.MaxEntries)
	if err != nil {
		check.Status = statusError
		check.Detail = err.Error()
		return check
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(cmd.Context(), history.ListOptions{})
	if err != nil {
		check.Status = statusError
		check.Detail = err.Error()
		return check
	}
	check.Status = statusPass
	check.Detail = fmt.Sprintf("%d queries recorded (%s)", len(entries), h.Path)
	return check
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// calculateHealthScore computes a health score from 0-100.
// Errors cost twice as much as warnings; with more files each issue
// weighs less.
func calculateHealthScore(checks []HealthCheck, fileCount int) int {
	if len(checks) == 0 {
		return 100
	}

	score := 100.0

	basePenalty := 5.0
	if fileCount > 10 {
		basePenalty = 3.0
	}
	if fileCount > 50 {
		basePenalty = 2.0
	}
	if fileCount > 100 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		switch check.Status {
		case statusError:
			score -= float64(check.IssueCount) * basePenalty * 2
		case statusWarn:
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	// Clamp to 0-100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck, unbound []string) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.IssueCount == 0 || check.Status == statusOff {
			continue
		}

		rec := getRecommendation(check.RuleID)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}
	if len(unbound) > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Bind %s in the vars section of sqlkit.yaml or pass --var", strings.Join(unbound, ", ")))
	}

	// Limit to top 5 recommendations
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	return recommendations
}

// getRecommendation returns a recommendation for a specific rule.
func getRecommendation(ruleID string) string {
	switch ruleID {
	case "SQ01":
		return "Remove empty query files or add the missing statements"
	case "SQ02":
		return "Balance the parentheses in the reported queries"
	case "SQ03":
		return "Close unterminated string literals"
	case "SQ04":
		return "Move DROP and TRUNCATE statements into reviewed migration files"
	case "SQ05":
		return "Close unterminated block comments"
	case "SQ06":
		return "Close unterminated quoted identifiers"
	case "SQ07":
		return "Add WHERE clauses to UPDATE and DELETE statements"
	default:
		return ""
	}
}

func statusIcon(styles *output.Styles, status string) string {
	switch status {
	case statusWarn:
		return styles.Warning.Render("!")
	case statusError:
		return styles.Error.Render("✗")
	case statusOff:
		return styles.Muted.Render("-")
	default:
		return styles.Success.Render("✓")
	}
}

func typeCounts(types map[string]int) string {
	parts := make([]string, 0, len(types))
	for _, t := range []sqltext.QueryType{
		sqltext.QuerySelect, sqltext.QueryInsert, sqltext.QueryUpdate,
		sqltext.QueryDelete, sqltext.QueryDDL, sqltext.QueryOther,
	} {
		if n := types[string(t)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", t, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " | ")
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("sqlkit Project Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Project Summary
	r.Println(styles.Header2.Render("Project Summary"))
	r.Printf("   Files: %d | Invalid: %d | Tables: %d\n", out.Summary.Files, out.Summary.Invalid, out.Summary.Tables)
	r.Printf("   Statements: %s\n", typeCounts(out.Summary.Types))
	if len(out.Summary.Variables) > 0 {
		r.Printf("   Variables: %s\n", strings.Join(out.Summary.Variables, ", "))
	}
	r.Println("")

	// Environment
	r.Println(styles.Header2.Render("Environment"))
	for _, check := range out.Environment {
		r.Printf("   %s %s: %s\n", statusIcon(styles, check.Status), check.Name, check.Detail)
	}
	r.Println("")

	// Health Checks grouped by category
	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + output.Title(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		status := fmt.Sprintf("%s %s: %s", statusIcon(styles, check.Status), check.RuleID, check.Name)
		if check.Status == statusOff {
			status += " (disabled)"
		} else if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# sqlkit Project Health Report")
	r.Println("")

	// Project Summary
	r.Println("## Project Summary")
	r.Println("")
	r.Printf("- **Files**: %d\n", out.Summary.Files)
	r.Printf("- **Invalid**: %d\n", out.Summary.Invalid)
	r.Printf("- **Tables**: %d\n", out.Summary.Tables)
	r.Printf("- **Statements**: %s\n", typeCounts(out.Summary.Types))
	if len(out.Summary.Variables) > 0 {
		r.Printf("- **Variables**: %s\n", strings.Join(out.Summary.Variables, ", "))
	}
	r.Println("")

	// Environment
	r.Println("## Environment")
	r.Println("")
	for _, check := range out.Environment {
		r.Printf("- **[%s]** %s: %s\n", strings.ToUpper(check.Status), check.Name, check.Detail)
	}
	r.Println("")

	// Health Checks
	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + output.Title(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	// Health Score
	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
