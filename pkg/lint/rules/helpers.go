package rules

import (
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// diag builds a diagnostic carrying the rule's default severity.
func diag(rule lint.RuleDef, pos token.Position, msg string) lint.Diagnostic {
	return lint.Diagnostic{
		RuleID:   rule.ID,
		Severity: rule.Severity,
		Message:  msg,
		Pos:      pos,
	}
}

// leadingWord returns the first significant token of a statement, skipping
// opening parentheses. ok is false when the statement has no word there.
func leadingWord(stmt []token.Token) (token.Token, bool) {
	for _, t := range stmt {
		if t.IsTrivia() || t.Kind == token.LParen {
			continue
		}
		return t, t.Kind == token.Word
	}
	return token.Token{}, false
}

// firstUnterminated returns the first token of kind k that reached end of
// input unclosed.
func firstUnterminated(toks []token.Token, k token.Kind) (token.Token, bool) {
	for _, t := range toks {
		if t.Kind == k && t.Unterminated {
			return t, true
		}
	}
	return token.Token{}, false
}
