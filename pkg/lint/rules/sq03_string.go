package rules

import (
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

func init() {
	ClosedString.Check = checkClosedString
	lint.Register(ClosedString)
}

// UnclosedStringMessage is reported for a single-quoted literal left open.
const UnclosedStringMessage = "Unclosed string literal"

// ClosedString checks that single-quoted literals are terminated.
var ClosedString = lint.RuleDef{
	ID:          "SQ03",
	Name:        "syntax.string",
	Group:       "syntax",
	Description: "String literals must be closed.",
	Severity:    lint.SeverityError,
	Priority:    30,
	BadExample:  "SELECT * FROM users WHERE name = 'hello",
	GoodExample: "SELECT * FROM users WHERE name = 'hello'",
	Fix:         "Close the literal; write an embedded quote as two quotes ('O''Brien').",
}

func checkClosedString(in *lint.Input, _ map[string]any) []lint.Diagnostic {
	if t, ok := firstUnterminated(in.Tokens, token.String); ok {
		return []lint.Diagnostic{diag(ClosedString, t.Pos, UnclosedStringMessage)}
	}
	return nil
}
