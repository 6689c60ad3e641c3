package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Keyword     lipgloss.Style
	String      lipgloss.Style
	Number      lipgloss.Style
	Comment     lipgloss.Style
	Placeholder lipgloss.Style
}

// NewStyles builds styles bound to w. With color disabled every style
// renders plain text.
func NewStyles(w io.Writer, color bool) *Styles {
	lr := lipgloss.NewRenderer(w)
	if !color {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lr.NewStyle().Bold(true).Underline(true),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("14")),

		Keyword:     lr.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		String:      lr.NewStyle().Foreground(lipgloss.Color("10")),
		Number:      lr.NewStyle().Foreground(lipgloss.Color("14")),
		Comment:     lr.NewStyle().Italic(true).Foreground(lipgloss.Color("8")),
		Placeholder: lr.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// SQL returns the highlighting style for sqltext.Highlight.
func (s *Styles) SQL() sqltext.Style {
	return sqltext.Style{
		Keyword:     renderFunc(s.Keyword),
		String:      renderFunc(s.String),
		Number:      renderFunc(s.Number),
		Comment:     renderFunc(s.Comment),
		Placeholder: renderFunc(s.Placeholder),
	}
}

func renderFunc(st lipgloss.Style) func(string) string {
	return func(v string) string { return st.Render(v) }
}
