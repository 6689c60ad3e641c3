package rules

import (
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

func init() {
	BalancedParentheses.Check = checkBalancedParentheses
	lint.Register(BalancedParentheses)
}

// UnbalancedParenthesesMessage is reported when parentheses do not pair up.
const UnbalancedParenthesesMessage = "Unbalanced parentheses"

// BalancedParentheses checks that every ( has a matching ).
// Parentheses inside literals, quoted identifiers and comments do not count.
var BalancedParentheses = lint.RuleDef{
	ID:          "SQ02",
	Name:        "syntax.parentheses",
	Group:       "syntax",
	Description: "Parentheses must be balanced.",
	Severity:    lint.SeverityError,
	Priority:    20,
	BadExample:  "SELECT * FROM (SELECT id FROM users",
	GoodExample: "SELECT * FROM (SELECT id FROM users) u",
}

func checkBalancedParentheses(in *lint.Input, _ map[string]any) []lint.Diagnostic {
	var open []token.Position
	for _, t := range in.Tokens {
		switch t.Kind {
		case token.LParen:
			open = append(open, t.Pos)
		case token.RParen:
			if len(open) == 0 {
				return []lint.Diagnostic{diag(BalancedParentheses, t.Pos, UnbalancedParenthesesMessage)}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return []lint.Diagnostic{diag(BalancedParentheses, open[len(open)-1], UnbalancedParenthesesMessage)}
	}
	return nil
}
