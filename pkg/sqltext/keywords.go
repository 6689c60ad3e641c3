package sqltext

import (
	"strings"

	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// clausePhrases are the keywords that start a new line when formatting,
// longest phrases first so "LEFT OUTER JOIN" wins over "LEFT JOIN".
var clausePhrases = [][]string{
	{"LEFT", "OUTER", "JOIN"},
	{"RIGHT", "OUTER", "JOIN"},
	{"FULL", "OUTER", "JOIN"},
	{"LEFT", "JOIN"},
	{"RIGHT", "JOIN"},
	{"FULL", "JOIN"},
	{"INNER", "JOIN"},
	{"CROSS", "JOIN"},
	{"NATURAL", "JOIN"},
	{"GROUP", "BY"},
	{"ORDER", "BY"},
	{"UNION", "ALL"},
	{"INSERT", "INTO"},
	{"DELETE", "FROM"},
	{"JOIN"},
	{"UNION"},
	{"INTERSECT"},
	{"EXCEPT"},
	{"SELECT"},
	{"FROM"},
	{"WHERE"},
	{"HAVING"},
	{"LIMIT"},
	{"OFFSET"},
	{"VALUES"},
	{"UPDATE"},
	{"SET"},
	{"WITH"},
}

// matchPhrase reports the clause phrase starting at toks[i] and how many
// tokens it spans. Words of a phrase may only be separated by whitespace.
func matchPhrase(toks []token.Token, i int) ([]string, int) {
	for _, phrase := range clausePhrases {
		j := i
		matched := true
		for k, w := range phrase {
			if k > 0 {
				if j >= len(toks) || toks[j].Kind != token.Whitespace {
					matched = false
					break
				}
				j++
			}
			if j >= len(toks) || !toks[j].Is(w) {
				matched = false
				break
			}
			j++
		}
		if matched {
			return phrase, j - i
		}
	}
	return nil, 0
}

// keywords is the set of words Highlight treats as SQL keywords.
var keywords = toSet(
	"ALL", "ALTER", "AND", "ANY", "AS", "ASC", "BETWEEN", "BY", "CASE", "CAST",
	"COLUMN", "CREATE", "CROSS", "DELETE", "DESC", "DISTINCT", "DROP", "ELSE",
	"END", "EXCEPT", "EXISTS", "FALSE", "FETCH", "FILTER", "FROM", "FULL",
	"GROUP", "HAVING", "ILIKE", "IN", "INDEX", "INNER", "INSERT", "INTERSECT",
	"INTO", "IS", "JOIN", "LATERAL", "LEFT", "LIKE", "LIMIT", "NATURAL", "NOT",
	"NULL", "OFFSET", "ON", "OR", "ORDER", "OUTER", "OVER", "PARTITION",
	"QUALIFY", "RECURSIVE", "RETURNING", "RIGHT", "SELECT", "SET", "TABLE",
	"THEN", "TRUE", "TRUNCATE", "UNION", "UPDATE", "USING", "VALUES", "VIEW",
	"WHEN", "WHERE", "WINDOW", "WITH",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsKeyword reports whether word is a SQL keyword, ignoring case.
func IsKeyword(word string) bool {
	_, ok := keywords[strings.ToUpper(word)]
	return ok
}
