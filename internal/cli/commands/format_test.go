package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name: "argument",
			args: []string{"select id from users where a = 1 and b = 2"},
			want: "SELECT id\nFROM users\nWHERE a = 1\n  AND b = 2\n",
		},
		{
			name:  "stdin",
			stdin: "select   1",
			want:  "SELECT 1\n",
		},
		{
			name: "lower keywords",
			args: []string{"--keyword-case", "lower", "SELECT a FROM t"},
			want: "select a\nfrom t\n",
		},
		{
			name: "semicolon and tab indent",
			args: []string{"--semicolon", "--indent", "\t", "select a from t where x = 1 or y = 2"},
			want: "SELECT a\nFROM t\nWHERE x = 1\n\tOR y = 2;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useConfig(t, "text")
			out, _, err := execute(t, NewFormatCommand(), tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFormatCommand_InvalidKeywordCase(t *testing.T) {
	useConfig(t, "text")
	_, _, err := execute(t, NewFormatCommand(), "", "--keyword-case", "title", "select 1")
	require.Error(t, err)
}

func TestFormatCommand_Markdown(t *testing.T) {
	useConfig(t, "markdown")
	out, _, err := execute(t, NewFormatCommand(), "", "select 1")
	require.NoError(t, err)
	assert.Equal(t, "```sql\nSELECT 1\n```\n", out)
}

func TestFormatCommand_Files(t *testing.T) {
	useConfig(t, "text")
	dir := t.TempDir()
	messy := filepath.Join(dir, "messy.sql")
	clean := filepath.Join(dir, "clean.sql")
	require.NoError(t, os.WriteFile(messy, []byte("select a from t"), 0o600))
	require.NoError(t, os.WriteFile(clean, []byte("SELECT a\nFROM t\n"), 0o600))

	t.Run("check reports unformatted files", func(t *testing.T) {
		out, _, err := execute(t, NewFormatCommand(), "", "--check", messy, clean)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 files are not formatted")
		assert.Contains(t, out, "would reformat "+messy)
		assert.NotContains(t, out, "would reformat "+clean)
	})

	t.Run("write rewrites in place", func(t *testing.T) {
		out, _, err := execute(t, NewFormatCommand(), "", "--write", messy, clean)
		require.NoError(t, err)
		assert.Contains(t, out, "reformatted "+messy)

		content, err := os.ReadFile(messy)
		require.NoError(t, err)
		assert.Equal(t, "SELECT a\nFROM t\n", string(content))

		info, err := os.Stat(messy)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("check passes once formatted", func(t *testing.T) {
		_, _, err := execute(t, NewFormatCommand(), "", "--check", messy, clean)
		require.NoError(t, err)
	})

	t.Run("needs files", func(t *testing.T) {
		_, _, err := execute(t, NewFormatCommand(), "", "--write")
		require.Error(t, err)
	})
}
