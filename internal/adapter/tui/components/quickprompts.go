package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"folio-assistant/internal/adapter/tui/theme"
)

// QuickPrompts are the canned questions offered under the input.
var QuickPrompts = []string{
	"Show React projects",
	"Open contact form",
	"Open resume PDF",
	"Copy email address",
}

// QuickPromptKey is the key that sends prompt i.
func QuickPromptKey(i int) string {
	return fmt.Sprintf("f%d", i+1)
}

// RenderQuickPrompts draws the prompts as chips, wrapping to width.
func RenderQuickPrompts(s theme.Styles, width int) string {
	var rows []string
	var row []string
	rowW := 0
	for i, p := range QuickPrompts {
		chip := s.Chip.Render(s.ChipKey.Render(strings.ToUpper(QuickPromptKey(i))) + " " + p)
		w := lipgloss.Width(chip)
		if rowW > 0 && rowW+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowW = nil, 0
		}
		row = append(row, chip)
		rowW += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
