package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"folio-assistant/internal/adapter/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "Send"
}

// StatusBarModel renders a bottom status bar with keybinding hints, the
// current page of the site and a transient notice.
type StatusBarModel struct {
	Hints    []KeyHint
	Location string // current route, e.g. "/projects?tag=react"
	Extra    string // transient text such as "Thinking…"
	width    int
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View(s theme.Styles) string {
	var hints []string
	for _, h := range m.Hints {
		hints = append(hints, s.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+s.Dim.Render("|")+"  ")

	var right []string
	if m.Extra != "" {
		right = append(right, s.TextInfo.Render(m.Extra))
	}
	if m.Location != "" {
		right = append(right, s.Location.Render(m.Location))
	}
	r := strings.Join(right, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(r) - 2
	if gap < 1 {
		gap = 1
	}
	return s.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + r)
}
