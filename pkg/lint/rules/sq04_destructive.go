package rules

import (
	"fmt"

	"github.com/leapstack-labs/sqlkit/pkg/lint"
)

func init() {
	DestructiveStatement.Check = checkDestructiveStatement
	lint.Register(DestructiveStatement)
}

// DestructiveRuleID identifies the destructive statement rule.
const DestructiveRuleID = "SQ04"

// DestructiveStatement flags statements that start with DROP or TRUNCATE.
// The query stays valid; the finding is a warning.
var DestructiveStatement = lint.RuleDef{
	ID:          DestructiveRuleID,
	Name:        "safety.destructive",
	Group:       "safety",
	Description: "Statement drops or truncates data.",
	Severity:    lint.SeverityWarning,
	Priority:    50,
	Rationale:   "DROP and TRUNCATE cannot be rolled back on most engines and are rarely intended from an exploration tool.",
	BadExample:  "DROP TABLE users",
	GoodExample: "SELECT * FROM users",
}

// destructiveKeywords are statement-leading keywords that destroy data.
var destructiveKeywords = []string{"DROP", "TRUNCATE"}

func checkDestructiveStatement(in *lint.Input, _ map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, stmt := range in.Statements {
		first, ok := leadingWord(stmt)
		if !ok {
			continue
		}
		for _, kw := range destructiveKeywords {
			if first.Is(kw) {
				msg := fmt.Sprintf("Warning: this query contains a destructive %s statement", kw)
				diags = append(diags, diag(DestructiveStatement, first.Pos, msg))
				break
			}
		}
	}
	return diags
}
