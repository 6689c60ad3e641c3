// Package lexer provides a lossless SQL scanner.
//
// The scanner is an explicit state machine: it tracks whether it is in plain
// SQL, inside a single-quoted literal, a quoted identifier, a line comment or a
// block comment. Everything that needs to know "is this character really SQL"
// (paren balancing, placeholder detection, keyword matching) works on its
// token stream instead of on raw text.
package lexer

import (
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// State is the scanner state at a given point of the input.
type State int

// Scanner states.
const (
	StateNormal State = iota
	StateSingleQuote
	StateQuotedIdent
	StateLineComment
	StateBlockComment
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateSingleQuote:
		return "single-quote"
	case StateQuotedIdent:
		return "quoted-identifier"
	case StateLineComment:
		return "line-comment"
	case StateBlockComment:
		return "block-comment"
	default:
		return "unknown"
	}
}

// Lexer tokenizes SQL input.
type Lexer struct {
	input string
	pos   int // offset of the next unread byte
	line  int // current line number (1-based)
	col   int // current column number (1-based)
	state State
}

// New creates a new Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// State returns the scanner state. After EOF it tells whether the input
// ended inside a literal or comment.
func (l *Lexer) State() State {
	return l.state
}

// peek returns the byte at pos+off, or 0 past the end of input.
func (l *Lexer) peek(off int) byte {
	if l.pos+off >= len(l.input) {
		return 0
	}
	return l.input[l.pos+off]
}

// advance consumes n bytes, keeping line and column current.
func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.input); i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// Next returns the next token. At end of input it returns an EOF token
// with an empty literal, repeatedly.
func (l *Lexer) Next() token.Token {
	start := l.pos
	pos := l.position()
	if start >= len(l.input) {
		return token.Token{Kind: token.EOF, Pos: pos}
	}

	tok := l.scan()
	tok.Literal = l.input[start:l.pos]
	tok.Pos = pos
	return tok
}

// scan consumes one token starting at l.pos. The caller fills in the
// literal and position.
func (l *Lexer) scan() token.Token {
	ch := l.peek(0)

	switch {
	case isSpace(ch):
		for isSpace(l.peek(0)) {
			l.advance(1)
		}
		return token.Token{Kind: token.Whitespace}

	case ch == '-' && l.peek(1) == '-':
		return l.scanLineComment()

	case ch == '/' && l.peek(1) == '*':
		return l.scanBlockComment()

	case ch == '\'':
		return l.scanString(false)

	case (ch == 'E' || ch == 'e') && l.peek(1) == '\'':
		l.advance(1)
		return l.scanString(true)

	case ch == '"' || ch == '`':
		return l.scanQuotedIdent(ch)

	case ch == '{' && l.peek(1) == '{':
		if n := l.matchBracePlaceholder(); n > 0 {
			l.advance(n)
			return token.Token{Kind: token.Placeholder}
		}
		l.advance(1)
		return token.Token{Kind: token.Operator}

	case ch == ':':
		if l.peek(1) == ':' {
			l.advance(2)
			return token.Token{Kind: token.Cast}
		}
		if isIdentStart(l.peek(1)) {
			l.advance(1)
			for isIdentPart(l.peek(0)) {
				l.advance(1)
			}
			return token.Token{Kind: token.Placeholder}
		}
		l.advance(1)
		return token.Token{Kind: token.Operator}

	case isIdentStart(ch):
		for isIdentPart(l.peek(0)) {
			l.advance(1)
		}
		return token.Token{Kind: token.Word}

	case isDigit(ch) || (ch == '.' && isDigit(l.peek(1))):
		l.scanNumber()
		return token.Token{Kind: token.Number}
	}

	switch ch {
	case '(':
		l.advance(1)
		return token.Token{Kind: token.LParen}
	case ')':
		l.advance(1)
		return token.Token{Kind: token.RParen}
	case ',':
		l.advance(1)
		return token.Token{Kind: token.Comma}
	case ';':
		l.advance(1)
		return token.Token{Kind: token.Semicolon}
	case '.':
		l.advance(1)
		return token.Token{Kind: token.Dot}
	}

	if n := l.matchOperator(); n > 0 {
		l.advance(n)
		return token.Token{Kind: token.Operator}
	}

	l.advance(1)
	return token.Token{Kind: token.Illegal}
}

// scanLineComment consumes a -- comment up to, not including, the line break.
func (l *Lexer) scanLineComment() token.Token {
	l.state = StateLineComment
	for l.pos < len(l.input) && l.peek(0) != '\n' && l.peek(0) != '\r' {
		l.advance(1)
	}
	if l.pos < len(l.input) {
		l.state = StateNormal
	}
	return token.Token{Kind: token.LineComment}
}

// scanBlockComment consumes a /* ... */ comment. Block comments do not nest.
func (l *Lexer) scanBlockComment() token.Token {
	l.state = StateBlockComment
	l.advance(2)
	for l.pos < len(l.input) {
		if l.peek(0) == '*' && l.peek(1) == '/' {
			l.advance(2)
			l.state = StateNormal
			return token.Token{Kind: token.BlockComment}
		}
		l.advance(1)
	}
	return token.Token{Kind: token.BlockComment, Unterminated: true}
}

// scanString consumes a single-quoted literal. A doubled quote ('it''s')
// keeps the literal open; a backslash is an ordinary character unless
// escapes is set, as in an E'...' string.
func (l *Lexer) scanString(escapes bool) token.Token {
	l.state = StateSingleQuote
	l.advance(1)
	for l.pos < len(l.input) {
		switch l.peek(0) {
		case '\\':
			if escapes {
				l.advance(2)
				continue
			}
			l.advance(1)
		case '\'':
			if l.peek(1) == '\'' {
				l.advance(2)
				continue
			}
			l.advance(1)
			l.state = StateNormal
			return token.Token{Kind: token.String}
		default:
			l.advance(1)
		}
	}
	return token.Token{Kind: token.String, Unterminated: true}
}

// scanQuotedIdent consumes a "double-quoted" or `backtick` identifier.
// A doubled delimiter is an escaped delimiter.
func (l *Lexer) scanQuotedIdent(quote byte) token.Token {
	l.state = StateQuotedIdent
	l.advance(1)
	for l.pos < len(l.input) {
		if l.peek(0) == quote {
			if l.peek(1) == quote {
				l.advance(2)
				continue
			}
			l.advance(1)
			l.state = StateNormal
			return token.Token{Kind: token.QuotedIdent}
		}
		l.advance(1)
	}
	return token.Token{Kind: token.QuotedIdent, Unterminated: true}
}

// scanNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) scanNumber() {
	for isDigit(l.peek(0)) {
		l.advance(1)
	}
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance(1)
		for isDigit(l.peek(0)) {
			l.advance(1)
		}
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		next := l.peek(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek(2))) {
			l.advance(2)
			for isDigit(l.peek(0)) {
				l.advance(1)
			}
		}
	}
}

// matchBracePlaceholder returns the length of a {{ name }} placeholder at
// the current position, or 0 if there is none.
func (l *Lexer) matchBracePlaceholder() int {
	i := 2
	for l.peek(i) == ' ' || l.peek(i) == '\t' {
		i++
	}
	if !isIdentStart(l.peek(i)) || l.peek(i) >= 0x80 {
		return 0
	}
	for c := l.peek(i); isIdentPart(c) && c != '$' && c < 0x80; c = l.peek(i) {
		i++
	}
	for l.peek(i) == ' ' || l.peek(i) == '\t' {
		i++
	}
	if l.peek(i) != '}' || l.peek(i+1) != '}' {
		return 0
	}
	return i + 2
}

// multiOps lists operators longer than one byte, longest first.
var multiOps = []string{
	"->>", "#>>",
	"<=", ">=", "<>", "!=", "==", "||", "&&", "->", "#>", "=>",
	"<<", ">>", "@>", "<@", "!~", "~*", "~~",
}

const singleOps = "+-*/%=<>!|&^~@#?[]{}$"

// matchOperator returns the length of the operator at the current position.
func (l *Lexer) matchOperator() int {
	rest := l.input[l.pos:]
	for _, op := range multiOps {
		if len(rest) >= len(op) && rest[:len(op)] == op {
			return len(op)
		}
	}
	for i := 0; i < len(singleOps); i++ {
		if rest[0] == singleOps[i] {
			return 1
		}
	}
	return 0
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isIdentStart accepts ASCII letters, underscore and any non-ASCII byte so
// that UTF-8 identifiers stay in one token.
func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$'
}
