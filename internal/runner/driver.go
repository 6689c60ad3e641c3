package runner

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver
)

// ErrUnknownTarget is returned for a target type with no driver.
var ErrUnknownTarget = errors.New("unknown target type")

// Target describes the database a query runs against.
type Target struct {
	Type     string
	Database string
	Host     string
	Port     int
	User     string
	Password string
	Options  map[string]string
}

type driver struct {
	name string
	dsn  func(Target) string
}

var drivers = map[string]driver{
	"sqlite":   {name: "sqlite", dsn: fileDSN},
	"duckdb":   {name: "duckdb", dsn: fileDSN},
	"postgres": {name: "pgx", dsn: postgresDSN},
}

// Targets returns the supported target types (sorted).
func Targets() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownTargetError is returned when a target type has no driver.
type UnknownTargetError struct {
	Type      string
	Available []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target type %q\nAvailable targets: %v\nHint: Check your target.type in sqlkit.yaml", e.Type, e.Available)
}

// Is makes errors.Is(err, ErrUnknownTarget) match.
func (e *UnknownTargetError) Is(target error) bool {
	return target == ErrUnknownTarget
}

func lookup(typ string) (driver, error) {
	d, ok := drivers[strings.ToLower(typ)]
	if !ok {
		return driver{}, &UnknownTargetError{Type: typ, Available: Targets()}
	}
	return d, nil
}

// DriverName returns the database/sql driver registered for a target type.
func DriverName(typ string) (string, error) {
	d, err := lookup(typ)
	if err != nil {
		return "", err
	}
	return d.name, nil
}

// DSN builds the connection string for t.
func DSN(t Target) (string, error) {
	d, err := lookup(t.Type)
	if err != nil {
		return "", err
	}
	return d.dsn(t), nil
}

// fileDSN builds path?opt=val. An empty path is an in-memory database.
func fileDSN(t Target) string {
	path := t.Database
	if path == "" {
		path = ":memory:"
	}
	if len(t.Options) == 0 {
		return path
	}
	q := url.Values{}
	for k, v := range t.Options {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}

// postgresDSN builds a key=value connection string.
func postgresDSN(t Target) string {
	host := t.Host
	if host == "" {
		host = "localhost"
	}
	port := t.Port
	if port == 0 {
		port = 5432
	}

	opts := map[string]string{"sslmode": "disable"}
	for k, v := range t.Options {
		opts[k] = v
	}

	parts := []string{
		"host=" + quoteDSNValue(host),
		fmt.Sprintf("port=%d", port),
	}
	if t.Database != "" {
		parts = append(parts, "dbname="+quoteDSNValue(t.Database))
	}
	if t.User != "" {
		parts = append(parts, "user="+quoteDSNValue(t.User))
	}
	if t.Password != "" {
		parts = append(parts, "password="+quoteDSNValue(t.Password))
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+quoteDSNValue(opts[k]))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue quotes values containing spaces or quotes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
