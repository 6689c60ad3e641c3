package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverName(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{typ: "sqlite", want: "sqlite"},
		{typ: "duckdb", want: "duckdb"},
		{typ: "postgres", want: "pgx"},
		{typ: "Postgres", want: "pgx"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got, err := DriverName(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDriverName_Unknown(t *testing.T) {
	_, err := DriverName("oracle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTarget))

	var unknown *UnknownTargetError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "oracle", unknown.Type)
	assert.Equal(t, []string{"duckdb", "postgres", "sqlite"}, unknown.Available)
	assert.Contains(t, err.Error(), "sqlkit.yaml")
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{
			name:   "sqlite in memory",
			target: Target{Type: "sqlite"},
			want:   ":memory:",
		},
		{
			name:   "sqlite file with options",
			target: Target{Type: "sqlite", Database: "app.db", Options: map[string]string{"mode": "ro", "_pragma": "busy_timeout(500)"}},
			want:   "app.db?_pragma=busy_timeout%28500%29&mode=ro",
		},
		{
			name:   "duckdb file",
			target: Target{Type: "duckdb", Database: "warehouse.duckdb"},
			want:   "warehouse.duckdb",
		},
		{
			name:   "postgres defaults",
			target: Target{Type: "postgres", Database: "analytics"},
			want:   "host=localhost port=5432 dbname=analytics sslmode=disable",
		},
		{
			name: "postgres full",
			target: Target{
				Type: "postgres", Host: "db.internal", Port: 6543, Database: "analytics",
				User: "reader", Password: "p w'd", Options: map[string]string{"sslmode": "require", "application_name": "sqlkit"},
			},
			want: `host=db.internal port=6543 dbname=analytics user=reader password='p w\'d' application_name=sqlkit sslmode=require`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDSN_Unknown(t *testing.T) {
	_, err := DSN(Target{Type: "mysql"})
	assert.ErrorIs(t, err, ErrUnknownTarget)
}
