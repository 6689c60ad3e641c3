package rules

import (
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

func init() {
	ClosedIdentifier.Check = checkClosedIdentifier
	lint.Register(ClosedIdentifier)
}

// ClosedIdentifier checks that "quoted" and `backtick` identifiers are terminated.
// An open identifier is a warning; the query stays valid.
var ClosedIdentifier = lint.RuleDef{
	ID:          "SQ06",
	Name:        "syntax.identifier",
	Group:       "syntax",
	Description: "Quoted identifiers must be closed.",
	Severity:    lint.SeverityWarning,
	Priority:    45,
	BadExample:  `SELECT "name FROM users`,
	GoodExample: `SELECT "name" FROM users`,
}

func checkClosedIdentifier(in *lint.Input, _ map[string]any) []lint.Diagnostic {
	if t, ok := firstUnterminated(in.Tokens, token.QuotedIdent); ok {
		return []lint.Diagnostic{diag(ClosedIdentifier, t.Pos, "Unclosed quoted identifier")}
	}
	return nil
}
