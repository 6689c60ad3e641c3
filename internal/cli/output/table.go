package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table formats accepted by RenderTable.
const (
	TableFormatTable    = "table"
	TableFormatJSON     = "json"
	TableFormatCSV      = "csv"
	TableFormatMarkdown = "md"
)

// TableFormats lists the table format names.
var TableFormats = []string{TableFormatTable, TableFormatJSON, TableFormatCSV, TableFormatMarkdown}

// RenderTable writes a result set. Unknown formats fall back to a table.
func RenderTable(w io.Writer, cols []string, rows [][]any, format string) error {
	switch strings.ToLower(format) {
	case TableFormatJSON:
		return renderRowsJSON(w, cols, rows)
	case TableFormatCSV:
		newTable(w, cols, rows).RenderCSV()
		return nil
	case TableFormatMarkdown, "markdown":
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
		newTable(w, cols, rows).RenderMarkdown()
		return nil
	default:
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
		t := newTable(w, cols, rows)
		t.SetStyle(table.StyleLight)
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
		return nil
	}
}

func newTable(w io.Writer, cols []string, rows [][]any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = FormatValue(v)
		}
		t.AppendRow(r)
	}
	return t
}

func renderRowsJSON(w io.Writer, cols []string, rows [][]any) error {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(cols))
		for i, col := range cols {
			if i < len(row) {
				obj[col] = jsonValue(row[i])
			}
		}
		out = append(out, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func jsonValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// FormatValue renders a scanned database value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
