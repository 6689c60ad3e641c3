package sqltext

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlkit/pkg/lexer"
	"github.com/leapstack-labs/sqlkit/pkg/token"
)

// Bindings maps variable names to the values substituted for them.
type Bindings map[string]any

// ExtractVariables returns the distinct variable names referenced by
// {{name}} and :name placeholders, in first-seen order. Placeholders inside
// string literals, quoted identifiers and comments do not count, and a
// :: cast is never a placeholder. The result is never nil.
func ExtractVariables(sql string) []string {
	names := []string{}
	seen := make(map[string]struct{})
	for _, t := range lexer.Tokenize(sql) {
		if t.Kind != token.Placeholder {
			continue
		}
		name := lexer.PlaceholderName(t.Literal)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// MissingVariables returns the variables of sql that have no binding.
func MissingVariables(sql string, b Bindings) []string {
	missing := []string{}
	for _, name := range ExtractVariables(sql) {
		if _, ok := b[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ReplaceVariables substitutes every bound placeholder with the SQL
// literal of its value (see Literal). Unbound placeholders and everything
// else are left exactly as written. A literal that would fuse with the
// preceding character into a comment opener (x -{{n}} with n = -1) is
// separated from it by a space.
func ReplaceVariables(sql string, b Bindings) string {
	if len(b) == 0 {
		return sql
	}

	var out strings.Builder
	out.Grow(len(sql))
	for _, t := range lexer.Tokenize(sql) {
		if t.Kind == token.Placeholder {
			if v, ok := b[lexer.PlaceholderName(t.Literal)]; ok {
				lit := Literal(v)
				if opensComment(out.String(), lit) {
					out.WriteByte(' ')
				}
				out.WriteString(lit)
				continue
			}
		}
		out.WriteString(t.Literal)
	}
	return out.String()
}

// opensComment reports whether writing lit after prev starts a -- or /*
// comment that neither side contained.
func opensComment(prev, lit string) bool {
	if prev == "" || lit == "" {
		return false
	}
	switch prev[len(prev)-1] {
	case '-':
		return lit[0] == '-'
	case '/':
		return lit[0] == '*'
	}
	return false
}

// Literal renders v as a SQL literal.
//
// Strings are single-quoted with embedded quotes doubled, numbers are
// written bare, booleans become TRUE or FALSE, and nil becomes NULL. NaN and
// infinities have no SQL literal and also become NULL. Times are quoted in
// RFC 3339 form. Any other value is quoted using its fmt representation.
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(x)
	case []byte:
		return quote(string(x))
	case bool:
		return boolLiteral(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return floatLiteral(x, 64)
	case float32:
		return floatLiteral(float64(x), 32)
	case json.Number:
		if _, err := x.Float64(); err == nil {
			return x.String()
		}
		return quote(x.String())
	case time.Time:
		return quote(x.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return quote(x.String())
	}

	// Named types and the remaining sized numbers.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "NULL"
		}
		return Literal(rv.Elem().Interface())
	case reflect.String:
		return quote(rv.String())
	case reflect.Bool:
		return boolLiteral(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return floatLiteral(rv.Float(), 32)
	case reflect.Float64:
		return floatLiteral(rv.Float(), 64)
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func boolLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func floatLiteral(f float64, bitSize int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "NULL"
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}
