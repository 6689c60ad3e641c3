package sqltext

import (
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/lint/rules"
)

// Result is the outcome of Validate.
//
// Valid is false when any error-level check fails, and Error then holds
// the first error message. A destructive statement leaves the query valid
// but is still reported in Error so callers that only read Error can warn
// about it. Warnings lists every warning-level message, and Diagnostics
// holds all findings with their rule IDs and positions.
type Result struct {
	Valid       bool              `json:"valid"`
	Error       string            `json:"error,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	Diagnostics []lint.Diagnostic `json:"diagnostics,omitempty"`
}

// Validate runs the built-in checks with their default configuration.
func Validate(sql string) Result {
	return ValidateWithConfig(sql, nil)
}

// ValidateWithConfig runs the registered checks using cfg, which may
// disable rules or override their severities. A nil cfg means defaults.
func ValidateWithConfig(sql string, cfg *lint.Config) Result {
	diags := lint.NewAnalyzer(cfg).Analyze(sql)

	res := Result{Valid: true, Diagnostics: diags}
	destructive := ""
	for _, d := range diags {
		switch d.Severity {
		case lint.SeverityError:
			if res.Valid {
				res.Valid = false
				res.Error = d.Message
			}
		case lint.SeverityWarning:
			res.Warnings = append(res.Warnings, d.Message)
			if d.RuleID == rules.DestructiveRuleID && destructive == "" {
				destructive = d.Message
			}
		}
	}
	if res.Valid {
		res.Error = destructive
	}
	return res
}
