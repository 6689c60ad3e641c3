package rules

import (
	"strings"

	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

func init() {
	EmptyQuery.Check = checkEmptyQuery
	lint.Register(EmptyQuery)
}

// EmptyQueryMessage is reported for blank input.
const EmptyQueryMessage = "Query cannot be empty"

// EmptyQuery rejects empty and whitespace-only input.
var EmptyQuery = lint.RuleDef{
	ID:          "SQ01",
	Name:        "syntax.empty",
	Group:       "syntax",
	Description: "Query must contain something other than whitespace.",
	Severity:    lint.SeverityError,
	Priority:    10,
	BadExample:  "   ",
	GoodExample: "SELECT 1",
}

func checkEmptyQuery(in *lint.Input, _ map[string]any) []lint.Diagnostic {
	if strings.TrimSpace(in.SQL) != "" {
		return nil
	}
	return []lint.Diagnostic{diag(EmptyQuery, token.Position{Line: 1, Column: 1}, EmptyQueryMessage)}
}
