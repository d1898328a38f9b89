// Package render formats engine state as terminal text.
//
// Output is styled with lipgloss when writing to a terminal and plain
// otherwise, so the same functions serve the REPL and tests.
package render

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Styles holds the text styles used by the renderers.
type Styles struct {
	// Color enables styling. When false every style renders text as is.
	Color bool

	Title    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Group    lipgloss.Style
	Leaf     lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() Styles {
	return Styles{
		Color: true,
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true),
		Item: lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EE6FF8")).
			Bold(true),
		Group: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true),
		Leaf: lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4C4C")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FA9A")).
			Bold(true),
	}
}

// PlainStyles returns a style set that leaves text untouched.
func PlainStyles() Styles {
	return Styles{}
}

// ForWriter picks DefaultStyles when w is a terminal and PlainStyles
// otherwise. NO_COLOR disables styling.
func ForWriter(w io.Writer) Styles {
	if IsTerminal(w) && os.Getenv("NO_COLOR") == "" {
		return DefaultStyles()
	}
	return PlainStyles()
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of w, or fallback if unknown.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

func (s Styles) paint(st lipgloss.Style, text string) string {
	if !s.Color {
		return text
	}
	return st.Render(text)
}

// RenderTitle renders a heading.
func (s Styles) RenderTitle(text string) string { return s.paint(s.Title, text) }

// RenderError renders an error message.
func (s Styles) RenderError(text string) string { return s.paint(s.Error, text) }

// RenderSuccess renders a confirmation message.
func (s Styles) RenderSuccess(text string) string { return s.paint(s.Success, text) }

// RenderMuted renders secondary text.
func (s Styles) RenderMuted(text string) string { return s.paint(s.Muted, text) }
