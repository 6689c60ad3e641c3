package rules

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

func init() {
	UnfilteredWrite.Check = checkUnfilteredWrite
	lint.Register(UnfilteredWrite)
}

// UnfilteredWrite warns about UPDATE and DELETE statements with no WHERE clause.
var UnfilteredWrite = lint.RuleDef{
	ID:          "SQ07",
	Name:        "safety.unfiltered_write",
	Group:       "safety",
	Description: "UPDATE or DELETE without a WHERE clause touches every row.",
	Severity:    lint.SeverityWarning,
	Priority:    60,
	BadExample:  "DELETE FROM users",
	GoodExample: "DELETE FROM users WHERE id = 1",
}

func checkUnfilteredWrite(in *lint.Input, _ map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, stmt := range in.Statements {
		first, ok := leadingWord(stmt)
		if !ok || !(first.Is("UPDATE") || first.Is("DELETE")) {
			continue
		}
		if hasTopLevelWord(stmt, "WHERE") {
			continue
		}
		msg := fmt.Sprintf("%s without WHERE affects every row", strings.ToUpper(first.Literal))
		diags = append(diags, diag(UnfilteredWrite, first.Pos, msg))
	}
	return diags
}

// hasTopLevelWord reports whether w appears outside parentheses.
func hasTopLevelWord(stmt []token.Token, w string) bool {
	depth := 0
	for _, t := range stmt {
		switch t.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		case token.Word:
			if depth == 0 && t.Is(w) {
				return true
			}
		}
	}
	return false
}
