package sqltext

import (
	"github.com/leapstack-labs/sqlkit/pkg/lexer"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// fromFunctions take FROM as an argument separator, not a table source.
var fromFunctions = toSet("EXTRACT", "SUBSTRING", "TRIM", "POSITION", "OVERLAY")

// tableListEnd are the words that end a FROM list. A word after a table
// name that is not one of these is an alias.
var tableListEnd = toSet(
	"WHERE", "JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "FULL", "CROSS",
	"NATURAL", "ON", "USING", "GROUP", "ORDER", "HAVING", "LIMIT", "OFFSET",
	"UNION", "INTERSECT", "EXCEPT", "WINDOW", "QUALIFY", "SET", "VALUES",
	"RETURNING", "FETCH", "FOR", "SELECT", "LATERAL", "TABLESAMPLE",
)

// ExtractTableNames returns the tables named after FROM and after every
// JOIN variant, deduplicated in first-seen order. Qualified names are
// returned as written. Subqueries, table functions and placeholders are
// skipped. The result is never nil.
func ExtractTableNames(sql string) []string {
	toks := lexer.Significant(lexer.Tokenize(sql))
	names := []string{}
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	// calls holds, per open parenthesis, the upper-cased word before it.
	var calls []string
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Kind == token.LParen:
			fn := ""
			if i > 0 && toks[i-1].Kind == token.Word {
				fn = toks[i-1].Upper()
			}
			calls = append(calls, fn)
		case t.Kind == token.RParen:
			if len(calls) > 0 {
				calls = calls[:len(calls)-1]
			}
		case t.Is("FROM"):
			if i > 0 && toks[i-1].Is("DISTINCT") {
				continue
			}
			if len(calls) > 0 {
				if _, ok := fromFunctions[calls[len(calls)-1]]; ok {
					continue
				}
			}
			readTableList(toks, i+1, add)
		case t.Is("JOIN"):
			if name, _, ok := readTableRef(toks, i+1); ok {
				add(name)
			}
		}
	}
	return names
}

// readTableList reads "ref [[AS] alias] {, ref [[AS] alias]}" at toks[i].
func readTableList(toks []token.Token, i int, add func(string)) {
	for {
		name, next, ok := readTableRef(toks, i)
		if !ok {
			return
		}
		add(name)
		i = skipAlias(toks, next)
		if i >= len(toks) || toks[i].Kind != token.Comma {
			return
		}
		i++
	}
}

// readTableRef reads a possibly qualified table name at toks[i]. ok is
// false for subqueries, placeholders, keywords and table functions.
func readTableRef(toks []token.Token, i int) (name string, next int, ok bool) {
	for i < len(toks) && (toks[i].Is("LATERAL") || toks[i].Is("ONLY")) {
		i++
	}
	if i >= len(toks) || !namePart(toks[i]) {
		return "", i, false
	}

	name = toks[i].Literal
	i++
	for i+1 < len(toks) && toks[i].Kind == token.Dot && namePart(toks[i+1]) {
		name += "." + toks[i+1].Literal
		i += 2
	}
	if i < len(toks) && toks[i].Kind == token.LParen {
		return "", i, false
	}
	return name, i, true
}

func namePart(t token.Token) bool {
	switch t.Kind {
	case token.QuotedIdent:
		return !t.Unterminated
	case token.Word:
		_, end := tableListEnd[t.Upper()]
		return !end
	}
	return false
}

// skipAlias steps over an optional "[AS] alias" at toks[i].
func skipAlias(toks []token.Token, i int) int {
	if i < len(toks) && toks[i].Is("AS") {
		i++
	}
	if i < len(toks) && namePart(toks[i]) {
		i++
	}
	return i
}
