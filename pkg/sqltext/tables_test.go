package sqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTableNames(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{name: "single table", sql: "SELECT * FROM users", expected: []string{"users"}},
		{name: "join", sql: "SELECT * FROM orders JOIN customers ON orders.cid = customers.id", expected: []string{"orders", "customers"}},
		{name: "deduplicated", sql: "SELECT * FROM users JOIN users ON a = b", expected: []string{"users"}},
		{name: "no tables", sql: "SELECT 1 + 1", expected: []string{}},
		{
			name:     "multiple joins",
			sql:      "SELECT * FROM orders LEFT JOIN customers ON a = b RIGHT JOIN products ON c = d",
			expected: []string{"orders", "customers", "products"},
		},
		{name: "case insensitive", sql: "select * from a inner join b using (id)", expected: []string{"a", "b"}},
		{name: "qualified names", sql: "SELECT * FROM analytics.public.events e", expected: []string{"analytics.public.events"}},
		{name: "quoted names", sql: `SELECT * FROM "My Schema"."Order Items"`, expected: []string{`"My Schema"."Order Items"`}},
		{name: "comma list with aliases", sql: "SELECT * FROM users u, orders AS o, items WHERE u.id = o.uid", expected: []string{"users", "orders", "items"}},
		{name: "subquery", sql: "SELECT * FROM (SELECT id FROM users) sub", expected: []string{"users"}},
		{name: "extract is not a table source", sql: "SELECT EXTRACT(YEAR FROM created_at) FROM events", expected: []string{"events"}},
		{name: "substring and trim", sql: "SELECT SUBSTRING(a FROM 2), TRIM(LEADING 'x' FROM b) FROM t", expected: []string{"t"}},
		{name: "is distinct from", sql: "SELECT * FROM t WHERE a IS NOT DISTINCT FROM b", expected: []string{"t"}},
		{name: "table function", sql: "SELECT * FROM generate_series(1, 3) g", expected: []string{}},
		{name: "placeholder", sql: "SELECT * FROM {{table}}", expected: []string{}},
		{name: "keyword in string", sql: "SELECT 'from fake' FROM real", expected: []string{"real"}},
		{name: "keyword in comment", sql: "SELECT 1 -- from fake\nFROM real", expected: []string{"real"}},
		{name: "delete from", sql: "DELETE FROM sessions WHERE expired", expected: []string{"sessions"}},
		{name: "backslash in literal", sql: `SELECT 'a\' FROM t JOIN u ON 1=1`, expected: []string{"t", "u"}},
		{name: "repeated across subqueries", sql: "SELECT * FROM a WHERE id IN (SELECT id FROM a JOIN b ON 1 = 1) UNION SELECT * FROM b", expected: []string{"a", "b"}},
		{name: "case sensitive dedup", sql: "SELECT * FROM Users JOIN users ON 1 = 1", expected: []string{"Users", "users"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTableNames(tt.sql)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, uniqueStrings(got), got, "names are distinct")
		})
	}
}

func uniqueStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
