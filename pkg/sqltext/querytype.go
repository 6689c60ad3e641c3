package sqltext

import (
	"github.com/leapstack-labs/sqlkit/pkg/lexer"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// QueryType is the coarse category of a statement.
type QueryType string

// Query types.
const (
	QuerySelect QueryType = "SELECT"
	QueryInsert QueryType = "INSERT"
	QueryUpdate QueryType = "UPDATE"
	QueryDelete QueryType = "DELETE"
	QueryDDL    QueryType = "DDL"
	QueryOther  QueryType = "OTHER"
)

// GetQueryType classifies sql by its leading keyword. Leading whitespace,
// comments and opening parentheses are skipped. A WITH query is
// classified by the first top-level INSERT, UPDATE or DELETE after its
// common table expressions, and is a SELECT otherwise.
func GetQueryType(sql string) QueryType {
	toks := lexer.Significant(lexer.Tokenize(sql))
	i := 0
	for i < len(toks) && toks[i].Kind == token.LParen {
		i++
	}
	if i >= len(toks) || toks[i].Kind != token.Word {
		return QueryOther
	}

	switch toks[i].Upper() {
	case "SELECT":
		return QuerySelect
	case "WITH":
		return cteBodyType(toks[i+1:])
	case "INSERT":
		return QueryInsert
	case "UPDATE":
		return QueryUpdate
	case "DELETE":
		return QueryDelete
	case "CREATE", "ALTER", "DROP":
		return QueryDDL
	default:
		return QueryOther
	}
}

func cteBodyType(toks []token.Token) QueryType {
	depth := 0
	for _, t := range toks {
		switch t.Kind {
		case token.LParen:
			depth++
			continue
		case token.RParen:
			depth--
			continue
		}
		if depth != 0 || t.Kind != token.Word {
			continue
		}
		switch t.Upper() {
		case "INSERT":
			return QueryInsert
		case "UPDATE":
			return QueryUpdate
		case "DELETE":
			return QueryDelete
		case "SELECT":
			return QuerySelect
		}
	}
	return QuerySelect
}
