package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "TEXT", want: ModeText},
		{in: "md", want: ModeMarkdown},
		{in: "markdown", want: ModeMarkdown},
		{in: "json", want: ModeJSON},
		{in: "yaml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, ModeText, NewRendererWithTTY(&out, &errOut, true, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&out, &errOut, false, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeJSON, NewRendererWithTTY(&out, &errOut, true, ModeJSON).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&out, &errOut, false, "").EffectiveMode())

	// A buffer is never a terminal.
	assert.False(t, NewRenderer(&out, &errOut, ModeAuto).IsTTY())
}

func TestRenderer_SQL(t *testing.T) {
	var out, errOut bytes.Buffer

	r := NewRendererWithTTY(&out, &errOut, false, ModeMarkdown)
	require.NoError(t, r.SQL("SELECT 1"))
	assert.Equal(t, "```sql\nSELECT 1\n```\n", out.String())

	out.Reset()
	r = NewRendererWithTTY(&out, &errOut, false, ModeJSON)
	require.NoError(t, r.SQL("SELECT 1"))
	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "SELECT 1", got["sql"])

	out.Reset()
	r = NewRendererWithTTY(&out, &errOut, false, ModeText)
	require.NoError(t, r.SQL("SELECT 1"))
	assert.Equal(t, "SELECT 1\n", out.String())
}

func TestRenderer_Messages(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeText)

	r.Success("done")
	r.Warning("careful")
	r.Error("broken")

	assert.Contains(t, out.String(), "done")
	assert.Contains(t, errOut.String(), "Warning: careful")
	assert.Contains(t, errOut.String(), "Error: broken")
	assert.NotContains(t, out.String()+errOut.String(), "\x1b[", "plain output must not carry ANSI codes")
}

func TestRenderTable(t *testing.T) {
	cols := []string{"id", "name"}
	rows := [][]any{{int64(1), []byte("alice")}, {int64(2), nil}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderTable(&buf, cols, rows, TableFormatJSON))
		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "alice", got[0]["name"])
		assert.Nil(t, got[1]["name"])
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderTable(&buf, cols, rows, TableFormatCSV))
		out := strings.ToLower(buf.String())
		assert.Contains(t, out, "id,name")
		assert.Contains(t, out, "1,alice")
		assert.Contains(t, out, "2,null")
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderTable(&buf, cols, rows, TableFormatMarkdown))
		assert.Contains(t, buf.String(), "| 1 | alice |")
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderTable(&buf, cols, rows, TableFormatTable))
		assert.Contains(t, buf.String(), "alice")
		assert.Contains(t, buf.String(), "(2 rows)")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderTable(&buf, cols, nil, TableFormatTable))
		assert.Equal(t, "(0 rows)\n", buf.String())
	})
}

func TestMarkdownHelpers(t *testing.T) {
	assert.Equal(t, "## Rules", FormatHeader(2, "Rules"))
	assert.Equal(t, "- **Type**: SELECT", FormatKeyValue("Type", "SELECT"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
	assert.Equal(t, "Safety", Title("safety"))
	assert.Equal(t, "NULL", FormatValue(nil))
}
