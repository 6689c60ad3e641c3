package sqltext

import (
	"strings"

	"github.com/leapstack-labs/sqlkit/pkg/lexer"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// Minify collapses every whitespace run outside literals to a single space
// and trims the ends. A line comment keeps the line break that ends it.
// The result is idempotent: Minify(Minify(s)) == Minify(s).
func Minify(sql string) string {
	if sql == "" {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql))
	space, afterComment := false, false
	for _, t := range lexer.Tokenize(sql) {
		if t.Kind == token.Whitespace {
			space = b.Len() > 0
			continue
		}
		switch {
		case afterComment:
			b.WriteByte('\n')
		case space:
			b.WriteByte(' ')
		}
		b.WriteString(t.Literal)
		space = false
		afterComment = t.Kind == token.LineComment
	}
	return b.String()
}

// Compact minifies sql and then drops the spaces next to commas,
// semicolons, parentheses and comparison operators.
func Compact(sql string) string {
	if sql == "" {
		return sql
	}

	toks := lexer.Tokenize(Minify(sql))
	var b strings.Builder
	for i, t := range toks {
		if t.Kind == token.Whitespace && t.Literal == " " {
			if (i > 0 && tight(toks[i-1])) || (i+1 < len(toks) && tight(toks[i+1])) {
				continue
			}
		}
		b.WriteString(t.Literal)
	}
	return b.String()
}

// tight reports whether a token needs no surrounding space.
func tight(t token.Token) bool {
	switch t.Kind {
	case token.Comma, token.Semicolon, token.LParen, token.RParen:
		return true
	case token.Operator:
		switch t.Literal {
		case "=", "<", ">", "<=", ">=", "<>", "!=":
			return true
		}
	}
	return false
}
