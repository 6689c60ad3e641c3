package lexer

import (
	"strings"

	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// Tokenize returns all tokens of input, without the trailing EOF token.
func Tokenize(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.Next()
		if tok.Kind == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

// Significant returns toks without whitespace and comments.
func Significant(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if !t.IsTrivia() {
			out = append(out, t)
		}
	}
	return out
}

// PlaceholderName returns the variable name of a placeholder literal
// ("{{ name }}" or ":name"). It returns "" for anything else.
func PlaceholderName(lit string) string {
	switch {
	case strings.HasPrefix(lit, "{{") && strings.HasSuffix(lit, "}}") && len(lit) >= 4:
		return strings.TrimSpace(lit[2 : len(lit)-2])
	case strings.HasPrefix(lit, ":") && !strings.HasPrefix(lit, "::"):
		return lit[1:]
	default:
		return ""
	}
}

// SplitStatements splits a token stream on top-level semicolons.
// Semicolons are dropped; statements made only of trivia are skipped.
func SplitStatements(toks []token.Token) [][]token.Token {
	var (
		stmts [][]token.Token
		cur   []token.Token
		depth int
	)
	flush := func() {
		if len(Significant(cur)) > 0 {
			stmts = append(stmts, cur)
		}
		cur = nil
	}
	for _, t := range toks {
		switch t.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			if depth > 0 {
				depth--
			}
		case token.Semicolon:
			if depth == 0 {
				flush()
				continue
			}
		}
		cur = append(cur, t)
	}
	flush()
	return stmts
}
