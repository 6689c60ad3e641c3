package rules

import (
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

func init() {
	ClosedComment.Check = checkClosedComment
	lint.Register(ClosedComment)
}

// ClosedComment checks that /* block comments */ are terminated.
// An open comment is a warning; the query stays valid.
var ClosedComment = lint.RuleDef{
	ID:          "SQ05",
	Name:        "syntax.comment",
	Group:       "syntax",
	Description: "Block comments must be closed.",
	Severity:    lint.SeverityWarning,
	Priority:    40,
	BadExample:  "SELECT 1 /* note",
	GoodExample: "SELECT 1 /* note */",
}

func checkClosedComment(in *lint.Input, _ map[string]any) []lint.Diagnostic {
	if t, ok := firstUnterminated(in.Tokens, token.BlockComment); ok {
		return []lint.Diagnostic{diag(ClosedComment, t.Pos, "Unclosed block comment")}
	}
	return nil
}
