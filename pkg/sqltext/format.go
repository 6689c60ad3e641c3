package sqltext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlkit/pkg/lexer"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// KeywordCase controls how the formatter writes the keywords it recognizes.
type KeywordCase string

// Keyword casing modes.
const (
	KeywordUpper    KeywordCase = "upper"
	KeywordLower    KeywordCase = "lower"
	KeywordPreserve KeywordCase = "preserve"
)

// ParseKeywordCase parses a keyword case name. An empty string means upper.
func ParseKeywordCase(s string) (KeywordCase, error) {
	switch KeywordCase(strings.ToLower(s)) {
	case "", KeywordUpper:
		return KeywordUpper, nil
	case KeywordLower:
		return KeywordLower, nil
	case KeywordPreserve:
		return KeywordPreserve, nil
	default:
		return "", fmt.Errorf("unknown keyword case %q (want upper, lower or preserve)", s)
	}
}

// Options configures FormatWithOptions.
type Options struct {
	KeywordCase     KeywordCase
	Indent          string // one indentation level; empty means two spaces
	EnsureSemicolon bool   // append ";" when the query does not end with one
}

// DefaultOptions returns the options Format uses.
func DefaultOptions() Options {
	return Options{
		KeywordCase: KeywordUpper,
		Indent:      "  ",
	}
}

// Format reformats sql for readability with the default options.
//
// Whitespace runs collapse to a single space, each major clause keyword
// starts a new line, and AND/OR inside WHERE, HAVING and join ON conditions
// start an indented line. Tokens are never reordered and literals,
// identifiers and comments are copied verbatim. Empty or whitespace-only
// input is returned unchanged.
func Format(sql string) string {
	return FormatWithOptions(sql, DefaultOptions())
}

// FormatWithOptions is Format with explicit options.
func FormatWithOptions(sql string, opts Options) string {
	if strings.TrimSpace(sql) == "" {
		return sql
	}
	if opts.KeywordCase == "" {
		opts.KeywordCase = KeywordUpper
	}
	if opts.Indent == "" {
		opts.Indent = "  "
	}

	p := newPrinter(opts)
	p.run(lexer.Tokenize(sql))
	if opts.EnsureSemicolon && p.prev.Kind != token.Semicolon {
		p.space = false
		p.write(";")
	}
	return p.out.String()
}

// group tracks one parenthesis level.
type group struct {
	clause    string // last clause keyword seen in this group
	query     bool   // the group holds a query, so its clauses break lines
	decided   bool
	inBetween bool // a BETWEEN is waiting for its AND
}

type printer struct {
	opts   Options
	out    bytes.Buffer
	groups []group

	space        bool // whitespace was skipped since the last write
	breakLine    bool // the next write starts a new line
	extraIndent  int
	afterComment bool        // the last write was a line comment
	prev         token.Token // last significant token written
}

func newPrinter(opts Options) *printer {
	return &printer{
		opts:   opts,
		groups: []group{{query: true, decided: true}},
	}
}

func (p *printer) depth() int {
	return len(p.groups) - 1
}

func (p *printer) top() *group {
	return &p.groups[len(p.groups)-1]
}

// write emits s, preceded by a line break, a single space or nothing.
func (p *printer) write(s string) {
	switch {
	case p.out.Len() == 0:
	case p.breakLine || p.afterComment:
		p.out.WriteByte('\n')
		p.out.WriteString(strings.Repeat(p.opts.Indent, p.depth()+p.extraIndent))
	case p.space:
		p.out.WriteByte(' ')
	}
	p.out.WriteString(s)
	p.space = false
	p.breakLine = false
	p.extraIndent = 0
	p.afterComment = false
}

func (p *printer) emit(t token.Token, s string) {
	p.write(s)
	p.prev = t
}

func (p *printer) keyword(s string) string {
	switch p.opts.KeywordCase {
	case KeywordLower:
		return strings.ToLower(s)
	case KeywordPreserve:
		return s
	default:
		return strings.ToUpper(s)
	}
}

func (p *printer) run(toks []token.Token) {
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case token.Whitespace:
			p.space = true
			continue
		case token.LineComment:
			p.write(t.Literal)
			p.afterComment = true
			continue
		case token.BlockComment:
			p.write(t.Literal)
			continue
		}

		if g := p.top(); !g.decided {
			g.decided = true
			g.query = t.Is("SELECT") || t.Is("WITH") || t.Is("VALUES")
		}

		switch t.Kind {
		case token.LParen:
			p.emit(t, t.Literal)
			p.groups = append(p.groups, group{})
		case token.RParen:
			if len(p.groups) > 1 {
				p.groups = p.groups[:len(p.groups)-1]
			}
			p.emit(t, t.Literal)
		case token.Word:
			i += p.word(toks, i) - 1
		default:
			p.emit(t, t.Literal)
		}
	}
}

// word writes the word at toks[i] and returns how many tokens it consumed.
func (p *printer) word(toks []token.Token, i int) int {
	t := toks[i]
	g := p.top()

	if p.prev.Kind != token.Dot {
		if phrase, n := matchPhrase(toks, i); n > 0 && p.isClause(phrase) {
			if g.query && p.prev.Kind != token.LParen {
				p.breakLine = true
			}
			p.emit(toks[i+n-1], p.phraseText(toks[i:i+n]))
			g.clause = strings.Join(phrase, " ")
			g.inBetween = false
			return n
		}
	}

	switch {
	case t.Is("AND") && g.inBetween:
		g.inBetween = false
		p.emit(t, p.keyword(t.Literal))
	case t.Is("AND") || t.Is("OR"):
		if g.query && conditionClause(g.clause) {
			p.breakLine = true
			p.extraIndent = 1
		}
		p.emit(t, p.keyword(t.Literal))
	case t.Is("BETWEEN"):
		g.inBetween = true
		p.emit(t, p.keyword(t.Literal))
	case t.Is("ON"):
		if strings.HasSuffix(g.clause, "JOIN") {
			g.clause = "ON"
		}
		p.emit(t, p.keyword(t.Literal))
	default:
		p.emit(t, t.Literal)
	}
	return 1
}

// isClause filters phrase matches that are not clauses in context.
func (p *printer) isClause(phrase []string) bool {
	switch phrase[0] {
	case "WITH":
		// WITH TIME ZONE, WITH ORDINALITY
		k := p.prev.Kind
		return k == token.EOF || k == token.Semicolon || k == token.LParen
	case "FROM":
		// IS [NOT] DISTINCT FROM
		return !p.prev.Is("DISTINCT")
	}
	return true
}

// phraseText joins the words of a clause phrase with single spaces.
func (p *printer) phraseText(toks []token.Token) string {
	words := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.Word {
			words = append(words, p.keyword(t.Literal))
		}
	}
	return strings.Join(words, " ")
}

// conditionClause reports whether AND/OR in clause start a new line.
func conditionClause(clause string) bool {
	return clause == "WHERE" || clause == "HAVING" || clause == "ON"
}
