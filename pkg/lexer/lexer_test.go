package lexer

import (
	"testing"

	"github.com/leapstack-labs/sqlkit/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize_Lossless(t *testing.T) {
	inputs := []string{
		"",
		"SELECT 1",
		"select  id,\n\tname FROM users -- trailing\nWHERE x = 'it''s' AND y = \"Col\"\"x\"",
		"SELECT id::text FROM t WHERE a = :a AND b = {{ b }}",
		"/* unterminated",
		"SELECT 'unterminated",
		"SELECT ünïcode FROM täble",
		"SELECT $1, a->>'k', x <> y, 1.5e-3, .5 FROM `t`",
		"\x00\x01 weird",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, token.Join(Tokenize(in)))
		})
	}
}

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "simple select",
			input: "SELECT a FROM t",
			want: []token.Kind{
				token.Word, token.Whitespace, token.Word, token.Whitespace,
				token.Word, token.Whitespace, token.Word,
			},
		},
		{
			name:  "cast is one token",
			input: "id::text",
			want:  []token.Kind{token.Word, token.Cast, token.Word},
		},
		{
			name:  "colon placeholder",
			input: "= :userId",
			want:  []token.Kind{token.Operator, token.Whitespace, token.Placeholder},
		},
		{
			name:  "brace placeholder",
			input: "{{ name }}",
			want:  []token.Kind{token.Placeholder},
		},
		{
			name:  "broken brace placeholder",
			input: "{{1}}",
			want: []token.Kind{
				token.Operator, token.Operator, token.Number, token.Operator, token.Operator,
			},
		},
		{
			name:  "parens and punctuation",
			input: "f(a, b);",
			want: []token.Kind{
				token.Word, token.LParen, token.Word, token.Comma, token.Whitespace,
				token.Word, token.RParen, token.Semicolon,
			},
		},
		{
			name:  "comments",
			input: "-- a\n/* b */",
			want:  []token.Kind{token.LineComment, token.Whitespace, token.BlockComment},
		},
		{
			name:  "qualified name",
			input: "s.t",
			want:  []token.Kind{token.Word, token.Dot, token.Word},
		},
		{
			name:  "multi char operators",
			input: "a>=b",
			want:  []token.Kind{token.Word, token.Operator, token.Word},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(Tokenize(tt.input)))
		})
	}
}

func TestTokenize_StringsHideStructure(t *testing.T) {
	toks := Tokenize("SELECT '(:x {{y}} -- z' FROM t")
	require.Len(t, toks, 7)
	assert.Equal(t, token.String, toks[2].Kind)
	assert.Equal(t, "'(:x {{y}} -- z'", toks[2].Literal)
	assert.False(t, toks[2].Unterminated)
}

func TestTokenize_Escapes(t *testing.T) {
	tests := []struct {
		input string
		lit   string
	}{
		{"'it''s'", "'it''s'"},
		{`'C:\'`, `'C:\'`},
		{`'a\b'`, `'a\b'`},
		{`E'it\'s'`, `E'it\'s'`},
		{`e'C:\\'`, `e'C:\\'`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := Tokenize(tt.input)
			require.Len(t, toks, 1)
			assert.Equal(t, token.String, toks[0].Kind)
			assert.Equal(t, tt.lit, toks[0].Literal)
			assert.False(t, toks[0].Unterminated)
		})
	}
}

func TestTokenize_BackslashEndsNothing(t *testing.T) {
	toks := Significant(Tokenize(`SELECT 'a\', :id FROM t`))
	require.Len(t, toks, 6)
	assert.Equal(t, token.String, toks[1].Kind)
	assert.Equal(t, `'a\'`, toks[1].Literal)
	assert.False(t, toks[1].Unterminated)
	assert.Equal(t, token.Placeholder, toks[3].Kind)
	assert.Equal(t, token.Word, toks[5].Kind)

	toks = Tokenize(`E'it\'s`)
	require.Len(t, toks, 1)
	assert.True(t, toks[0].Unterminated, "an escaped quote keeps an E string open")
}

func TestLexer_FinalState(t *testing.T) {
	tests := []struct {
		input string
		state State
	}{
		{"SELECT 1", StateNormal},
		{"SELECT 'abc", StateSingleQuote},
		{`SELECT "abc`, StateQuotedIdent},
		{"SELECT 1 /* abc", StateBlockComment},
		{"SELECT 1 -- abc", StateLineComment},
		{"SELECT 1 -- abc\n", StateNormal},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			for l.Next().Kind != token.EOF {
			}
			assert.Equal(t, tt.state, l.State())
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	toks := Significant(Tokenize("SELECT a\n  FROM t"))
	require.Len(t, toks, 4)
	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 11}, toks[2].Pos)
}

func TestPlaceholderName(t *testing.T) {
	assert.Equal(t, "name", PlaceholderName("{{name}}"))
	assert.Equal(t, "name", PlaceholderName("{{ name }}"))
	assert.Equal(t, "userId", PlaceholderName(":userId"))
	assert.Equal(t, "", PlaceholderName("::text"))
	assert.Equal(t, "", PlaceholderName("users"))
}

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements(Tokenize("SELECT 1; SELECT ';' ;; DROP TABLE t;"))
	require.Len(t, stmts, 3)
	assert.Equal(t, "SELECT 1", token.Join(stmts[0]))
	assert.Equal(t, " SELECT ';' ", token.Join(stmts[1]))
	assert.Equal(t, " DROP TABLE t", token.Join(stmts[2]))
}
