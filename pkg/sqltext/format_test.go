package sqltext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "uppercases clause keywords",
			input:    "select id from users",
			expected: "SELECT id\nFROM users",
		},
		{
			name:     "collapses whitespace",
			input:    "select   id    from    users",
			expected: "SELECT id\nFROM users",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  \n select 1 \n",
			expected: "SELECT 1",
		},
		{
			name:     "breaks before major clauses",
			input:    "SELECT id FROM users WHERE active = true ORDER BY id",
			expected: "SELECT id\nFROM users\nWHERE active = true\nORDER BY id",
		},
		{
			name:     "indents AND and OR in WHERE",
			input:    "SELECT * FROM users WHERE a = 1 AND b = 2 OR c = 3",
			expected: "SELECT *\nFROM users\nWHERE a = 1\n  AND b = 2\n  OR c = 3",
		},
		{
			name:     "keeps BETWEEN AND on one line",
			input:    "select a from t where x between 1 and 2 and y = 3",
			expected: "SELECT a\nFROM t\nWHERE x BETWEEN 1 AND 2\n  AND y = 3",
		},
		{
			name:     "join condition",
			input:    "select * from a left join b on a.id = b.id and a.x = 1",
			expected: "SELECT *\nFROM a\nLEFT JOIN b ON a.id = b.id\n  AND a.x = 1",
		},
		{
			name:     "multi word clauses",
			input:    "select a, count(*) from t group   by a having count(*) > 1 order by a limit 10 offset 5",
			expected: "SELECT a, count(*)\nFROM t\nGROUP BY a\nHAVING count(*) > 1\nORDER BY a\nLIMIT 10\nOFFSET 5",
		},
		{
			name:     "subquery is indented by depth",
			input:    "select * from (select id from users where a = 1 and b = 2) u",
			expected: "SELECT *\nFROM (SELECT id\n  FROM users\n  WHERE a = 1\n    AND b = 2) u",
		},
		{
			name:     "FROM inside a function call stays inline",
			input:    "select extract(year from ts) from t",
			expected: "SELECT extract(year FROM ts)\nFROM t",
		},
		{
			name:     "IS DISTINCT FROM is not a clause",
			input:    "select * from t where a is distinct from b",
			expected: "SELECT *\nFROM t\nWHERE a is distinct from b",
		},
		{
			name:     "WITH inside a type name is not a clause",
			input:    "select cast(a as timestamp with time zone) from t",
			expected: "SELECT cast(a as timestamp with time zone)\nFROM t",
		},
		{
			name:     "common table expression",
			input:    "with x as (select 1) select * from x",
			expected: "WITH x as (SELECT 1)\nSELECT *\nFROM x",
		},
		{
			name:     "insert values",
			input:    "insert into t (a, b) values (1, 2)",
			expected: "INSERT INTO t (a, b)\nVALUES (1, 2)",
		},
		{
			name:     "update",
			input:    "update t set a = 1 where id = 2",
			expected: "UPDATE t\nSET a = 1\nWHERE id = 2",
		},
		{
			name:     "union all",
			input:    "select a from t union all select b from u",
			expected: "SELECT a\nFROM t\nUNION ALL\nSELECT b\nFROM u",
		},
		{
			name:     "multiple statements",
			input:    "select 1; select 2",
			expected: "SELECT 1;\nSELECT 2",
		},
		{
			name:     "literals and quoted identifiers untouched",
			input:    "select 'a   b', \"Col  X\" from t",
			expected: "SELECT 'a   b', \"Col  X\"\nFROM t",
		},
		{
			name:     "keyword inside string is not a clause",
			input:    "select 'from where' from t",
			expected: "SELECT 'from where'\nFROM t",
		},
		{
			name:     "line comment keeps its newline",
			input:    "select 1 -- one\nfrom t",
			expected: "SELECT 1 -- one\nFROM t",
		},
		{
			name:     "qualified column named like a keyword",
			input:    "select t.from from t",
			expected: "SELECT t.from\nFROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.input))
		})
	}
}

func TestFormat_BlankInputUnchanged(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		assert.Equal(t, in, Format(in))
	}
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"SELECT * FROM users WHERE a = 1 AND b = 2 OR c = 3",
		"select * from (select id from users where a = 1 and b = 2) u",
		"select 1 -- one\nfrom t",
		"with x as (select 1) select * from x",
	}
	for _, in := range inputs {
		once := Format(in)
		assert.Equal(t, once, Format(once), "input %q", in)
	}
}

// keywordContent drops whitespace and case so only the words, literals and
// punctuation of a query are compared.
func keywordContent(sql string) string {
	return strings.Join(strings.Fields(strings.ToUpper(Minify(sql))), "")
}

func TestFormat_MinifyRoundTrip(t *testing.T) {
	inputs := []string{
		"select id from users",
		"SELECT * FROM users WHERE a = 1 AND b = 2 OR c = 3",
		"select a from t where x between 1 and 2 and y = 3",
		"select * from a left join b on a.id = b.id and a.x = 1",
		"select a, count(*) from t group   by a having count(*) > 1 order by a limit 10 offset 5",
		"select * from (select id from users where a = 1 and b = 2) u",
		"with x as (select 1) select * from x",
		"insert into t (a, b) values (1, 2)",
		"update t set a = 1 where id = 2",
		"select a from t union all select b from u",
		"select 1; select 2",
		"select 'a   b', \"Col  X\" from t",
		"select 1 -- one\nfrom t",
		"select /* keep   me */ a from t where b = 'C:\\'",
		"select a -- pick a\n, b from t",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			out := Format(in)
			assert.Equal(t, keywordContent(in), keywordContent(out))
		})
	}
}

func TestFormat_NoCommentedOutCode(t *testing.T) {
	out := Format("select a -- pick a\n, b from t")
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			assert.NotContains(t, line[i:], "FROM")
		}
	}
	assert.Contains(t, out, "FROM t")
}

func TestFormatWithOptions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:     "lower case",
			input:    "SELECT a FROM t WHERE x = 1 AND y = 2",
			opts:     Options{KeywordCase: KeywordLower},
			expected: "select a\nfrom t\nwhere x = 1\n  and y = 2",
		},
		{
			name:     "preserve case",
			input:    "Select a From t",
			opts:     Options{KeywordCase: KeywordPreserve},
			expected: "Select a\nFrom t",
		},
		{
			name:     "tab indent",
			input:    "select * from t where a = 1 and b = 2",
			opts:     Options{Indent: "\t"},
			expected: "SELECT *\nFROM t\nWHERE a = 1\n\tAND b = 2",
		},
		{
			name:     "ensure semicolon",
			input:    "select 1",
			opts:     Options{EnsureSemicolon: true},
			expected: "SELECT 1;",
		},
		{
			name:     "existing semicolon kept once",
			input:    "select 1 ;  ",
			opts:     Options{EnsureSemicolon: true},
			expected: "SELECT 1 ;",
		},
		{
			name:     "semicolon after trailing line comment",
			input:    "select 1 -- c",
			opts:     Options{EnsureSemicolon: true},
			expected: "SELECT 1 -- c\n;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatWithOptions(tt.input, tt.opts))
		})
	}
}

func TestParseKeywordCase(t *testing.T) {
	for in, want := range map[string]KeywordCase{
		"":         KeywordUpper,
		"upper":    KeywordUpper,
		"LOWER":    KeywordLower,
		"preserve": KeywordPreserve,
	} {
		got, err := ParseKeywordCase(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseKeywordCase("title")
	assert.Error(t, err)
}

func TestHighlight(t *testing.T) {
	style := Style{
		Keyword: func(s string) string { return "<" + s + ">" },
		String:  func(s string) string { return "[" + s + "]" },
		Comment: func(s string) string { return "#" },
	}
	got := Highlight("SELECT 'x' FROM users -- hi", style)
	assert.Equal(t, "<SELECT> ['x'] <FROM> users #", got)

	assert.Equal(t, "select 1", Highlight("select 1", Style{}))
}
