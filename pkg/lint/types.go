package lint

import (
	"github.com/leapstack-labs/sqlkit/pkg/lexer"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// Input is what a rule sees: the raw query and its token stream.
type Input struct {
	SQL        string
	Tokens     []token.Token   // full lossless stream
	Statements [][]token.Token // Tokens split on top-level semicolons
}

// NewInput scans sql once for all rules.
func NewInput(sql string) *Input {
	toks := lexer.Tokenize(sql)
	return &Input{
		SQL:        sql,
		Tokens:     toks,
		Statements: lexer.SplitStatements(toks),
	}
}

// CheckFunc analyzes the input and returns diagnostics.
// The opts parameter contains rule-specific options from configuration.
type CheckFunc func(in *Input, opts map[string]any) []Diagnostic

// RuleDef is a data-driven rule definition.
// Rules are stateless; all context comes via the Check function parameters.
type RuleDef struct {
	ID          string   // Unique identifier, e.g. "SQ02"
	Name        string   // Human-readable name, e.g. "syntax.parentheses"
	Group       string   // Category, e.g. "syntax", "safety"
	Description string   // Human-readable description
	Severity    Severity // Default severity
	Priority    int      // Lower runs first
	Check       CheckFunc
	ConfigKeys  []string // Configuration keys this rule accepts

	Rationale   string
	BadExample  string
	GoodExample string
	Fix         string
}

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string         `json:"rule_id"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Pos      token.Position `json:"pos"`
}

// RuleInfo provides metadata about a lint rule for documentation/tooling.
type RuleInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Group           string   `json:"group"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	ConfigKeys      []string `json:"config_keys,omitempty"`
	Rationale       string   `json:"rationale,omitempty"`
	BadExample      string   `json:"bad_example,omitempty"`
	GoodExample     string   `json:"good_example,omitempty"`
	Fix             string   `json:"fix,omitempty"`
}

// Info extracts the documentation fields of the rule.
func (r RuleDef) Info() RuleInfo {
	return RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		ConfigKeys:      r.ConfigKeys,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
		Fix:             r.Fix,
	}
}

// FilterBySeverity keeps diagnostics at least as severe as threshold.
func FilterBySeverity(diags []Diagnostic, threshold Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity.AtLeast(threshold) {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
