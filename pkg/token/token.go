// Package token defines the lexical tokens produced by the SQL scanner.
//
// Tokens are lossless: concatenating the Literal of every token of a stream
// reproduces the scanned input byte for byte, so rewriting passes (formatting,
// variable binding) can rebuild the text without losing anything they do not
// touch.
package token

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind int

const (
	// Special tokens
	EOF Kind = iota
	Illegal

	// Trivia
	Whitespace
	LineComment
	BlockComment

	// Literals
	Word        // keyword or bare identifier
	QuotedIdent // "name"
	String      // 'text'
	Number      // 123, 45.67, 1e10

	// Placeholders
	Placeholder // {{name}} or :name

	// Punctuation
	LParen    // (
	RParen    // )
	Comma     // ,
	Semicolon // ;
	Dot       // .
	Cast      // ::
	Operator  // + - * / % = <> != < > <= >= || and friends
)

var kindNames = map[Kind]string{
	EOF:          "EOF",
	Illegal:      "ILLEGAL",
	Whitespace:   "WHITESPACE",
	LineComment:  "LINE_COMMENT",
	BlockComment: "BLOCK_COMMENT",
	Word:         "WORD",
	QuotedIdent:  "QUOTED_IDENT",
	String:       "STRING",
	Number:       "NUMBER",
	Placeholder:  "PLACEHOLDER",
	LParen:       "(",
	RParen:       ")",
	Comma:        ",",
	Semicolon:    ";",
	Dot:          ".",
	Cast:         "::",
	Operator:     "OPERATOR",
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Token represents a lexical token with position information.
type Token struct {
	Kind    Kind
	Literal string // raw source text, delimiters included
	Pos     Position

	// Unterminated is set on a String, QuotedIdent or BlockComment that
	// reached end of input before its closing delimiter.
	Unterminated bool
}

// IsTrivia reports whether the token carries no SQL meaning.
func (t Token) IsTrivia() bool {
	return t.Kind == Whitespace || t.Kind == LineComment || t.Kind == BlockComment
}

// IsComment reports whether the token is a line or block comment.
func (t Token) IsComment() bool {
	return t.Kind == LineComment || t.Kind == BlockComment
}

// Is reports whether the token is the word w, compared case-insensitively.
func (t Token) Is(w string) bool {
	return t.Kind == Word && strings.EqualFold(t.Literal, w)
}

// Upper returns the literal of a word token in upper case.
// Other tokens are returned unchanged.
func (t Token) Upper() string {
	if t.Kind != Word {
		return t.Literal
	}
	return strings.ToUpper(t.Literal)
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Pos.Offset + len(t.Literal)
}

// Join concatenates the literals of toks.
func Join(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Literal)
	}
	return b.String()
}
