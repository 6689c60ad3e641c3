package commands

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/sqlkit/internal/cli/config"
	"github.com/leapstack-labs/sqlkit/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useSQLiteTarget points the loaded config at a fresh sqlite file.
func useSQLiteTarget(t *testing.T, mode string) *config.Config {
	t.Helper()

	cfg := useConfig(t, mode)
	cfg.Target = &config.TargetConfig{
		Type:     "sqlite",
		Database: filepath.Join(t.TempDir(), "test.db"),
	}
	return cfg
}

func TestRunnerTarget(t *testing.T) {
	t.Run("no target", func(t *testing.T) {
		_, err := runnerTarget(&config.Config{})
		require.ErrorIs(t, err, ErrNoTarget)
	})

	t.Run("converts fields", func(t *testing.T) {
		cfg := &config.Config{Target: &config.TargetConfig{
			Type:     "postgres",
			Database: "analytics",
			Host:     "db",
			Port:     5433,
			User:     "me",
			Password: "secret",
			Options:  map[string]string{"sslmode": "require"},
		}}
		got, err := runnerTarget(cfg)
		require.NoError(t, err)
		assert.Equal(t, runner.Target{
			Type:     "postgres",
			Database: "analytics",
			Host:     "db",
			Port:     5433,
			User:     "me",
			Password: "secret",
			Options:  map[string]string{"sslmode": "require"},
		}, got)
	})
}

func TestRunCommand(t *testing.T) {
	useSQLiteTarget(t, "text")

	steps := []struct {
		name    string
		args    []string
		wantOut []string
		wantErr error
	}{
		{
			name:    "create",
			args:    []string{"CREATE TABLE users (id INTEGER, name TEXT)"},
			wantOut: []string{"DDL: 0 rows affected"},
		},
		{
			name:    "insert with bindings",
			args:    []string{"INSERT INTO users VALUES (:id, {{name}}), (2, 'Bob')", "--var", "id=1", "--var", "name=Alice"},
			wantOut: []string{"INSERT: 2 rows affected"},
		},
		{
			name:    "select",
			args:    []string{"SELECT id, name FROM users ORDER BY id"},
			wantOut: []string{"Alice", "Bob", "(2 rows)"},
		},
		{
			name:    "missing variable",
			args:    []string{"SELECT * FROM users WHERE id = :id"},
			wantErr: runner.ErrMissingVariables,
		},
		{
			name:    "invalid query",
			args:    []string{"SELECT * FROM users WHERE (id = 1"},
			wantErr: runner.ErrInvalidQuery,
		},
		{
			name:    "destructive refused",
			args:    []string{"DROP TABLE users"},
			wantErr: runner.ErrDestructive,
		},
		{
			name:    "destructive allowed",
			args:    []string{"--allow-destructive", "DROP TABLE users"},
			wantOut: []string{"DDL"},
		},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			out, _, err := execute(t, NewRunCommand(), "", step.args...)
			if step.wantErr != nil {
				require.ErrorIs(t, err, step.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range step.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRunCommand_Formats(t *testing.T) {
	useSQLiteTarget(t, "text")
	_, _, err := execute(t, NewRunCommand(), "", "CREATE TABLE t (a INTEGER, b TEXT)")
	require.NoError(t, err)
	_, _, err = execute(t, NewRunCommand(), "", "INSERT INTO t VALUES (1, 'x')")
	require.NoError(t, err)

	t.Run("json rows", func(t *testing.T) {
		out, _, err := execute(t, NewRunCommand(), "", "--format", "json", "SELECT a, b FROM t")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"a": 1, "b": "x"}]`, out)
	})

	t.Run("csv rows", func(t *testing.T) {
		out, _, err := execute(t, NewRunCommand(), "", "--format", "csv", "SELECT a, b FROM t")
		require.NoError(t, err)
		assert.Contains(t, out, "a,b")
		assert.Contains(t, out, "1,x")
	})

	t.Run("json mode result", func(t *testing.T) {
		cfg := config.GetCurrentConfig()
		cfg.OutputFormat = "json"
		t.Cleanup(func() { cfg.OutputFormat = "text" })

		out, _, err := execute(t, NewRunCommand(), "", "SELECT a FROM t")
		require.NoError(t, err)

		var res struct {
			Query   string   `json:"query"`
			Type    string   `json:"type"`
			Columns []string `json:"columns"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "SELECT", res.Type)
		assert.Equal(t, []string{"a"}, res.Columns)
	})
}

func TestRunCommand_NoTarget(t *testing.T) {
	cfg := useConfig(t, "text")
	cfg.Target = nil

	_, _, err := execute(t, NewRunCommand(), "", "SELECT 1")
	require.ErrorIs(t, err, ErrNoTarget)
}
