package sqltext

import (
	"strings"

	"github.com/leapstack-labs/sqlkit/pkg/lexer"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// Style holds the functions Highlight applies to each token class.
// A nil function leaves that class as is.
type Style struct {
	Keyword     func(string) string
	String      func(string) string
	Number      func(string) string
	Comment     func(string) string
	Placeholder func(string) string
}

// Highlight returns sql with each keyword, literal, comment and
// placeholder passed through the matching Style function. Everything else
// is copied unchanged, so an empty Style returns sql itself.
func Highlight(sql string, s Style) string {
	var b strings.Builder
	b.Grow(len(sql))
	for _, t := range lexer.Tokenize(sql) {
		b.WriteString(apply(styleFor(t, s), t.Literal))
	}
	return b.String()
}

func styleFor(t token.Token, s Style) func(string) string {
	switch t.Kind {
	case token.Word:
		if IsKeyword(t.Literal) {
			return s.Keyword
		}
	case token.String:
		return s.String
	case token.Number:
		return s.Number
	case token.LineComment, token.BlockComment:
		return s.Comment
	case token.Placeholder:
		return s.Placeholder
	}
	return nil
}

func apply(fn func(string) string, lit string) string {
	if fn == nil {
		return lit
	}
	return fn(lit)
}
