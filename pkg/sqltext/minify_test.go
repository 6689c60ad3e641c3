package sqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "collapses and trims", input: "  SELECT   id \n  FROM   users  ", expected: "SELECT id FROM users"},
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: " \n\t ", expected: ""},
		{name: "single line unchanged", input: "SELECT 1", expected: "SELECT 1"},
		{name: "string content kept", input: "SELECT 'a  \n b'   FROM t", expected: "SELECT 'a  \n b' FROM t"},
		{name: "quoted identifier kept", input: "SELECT \"a   b\"\nFROM t", expected: "SELECT \"a   b\" FROM t"},
		{name: "line comment keeps newline", input: "SELECT 1 -- c\n   FROM t", expected: "SELECT 1 -- c\nFROM t"},
		{name: "block comment collapses", input: "SELECT /* a\n b */\n 1", expected: "SELECT /* a\n b */ 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Minify(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, Minify(got), "minify must be idempotent")
		})
	}
}

func TestCompact(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "drops spaces around punctuation and comparisons",
			input:    "SELECT a , b\nFROM t WHERE x = 1 AND f( y ) >= 2",
			expected: "SELECT a,b FROM t WHERE x=1 AND f(y)>=2",
		},
		{
			name:     "semicolon",
			input:    "SELECT 1 ;",
			expected: "SELECT 1;",
		},
		{
			name:     "keeps arithmetic spacing",
			input:    "SELECT a + b FROM t",
			expected: "SELECT a + b FROM t",
		},
		{
			name:     "string untouched",
			input:    "SELECT ' , ( ' FROM t",
			expected: "SELECT ' , ( ' FROM t",
		},
		{
			name:     "line comment newline kept",
			input:    "SELECT 1 -- c\n, 2",
			expected: "SELECT 1 -- c\n,2",
		},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compact(tt.input))
		})
	}
}
