// Package theme provides the visual design of the terminal chat. Styles are
// rebuilt from a light or dark palette so the assistant can switch themes at
// runtime.
//
// NO_COLOR (https://no-color.org/) is respected automatically by lipgloss via
// its color profile detection.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"folio-assistant/internal/domain"
)

// Palette is one set of colors.
type Palette struct {
	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Info    lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	BgAlt   lipgloss.Color
	FgDim   lipgloss.Color
}

var (
	// Light suits light terminal backgrounds.
	Light = Palette{
		Success: "#2e7d32",
		Error:   "#c62828",
		Warning: "#e65100",
		Info:    "#0277bd",
		Accent:  "#6a1b9a",
		Muted:   "#757575",
		Border:  "#bdbdbd",
		BgAlt:   "#f5f5f5",
		FgDim:   "#9e9e9e",
	}

	// Dark suits dark terminal backgrounds.
	Dark = Palette{
		Success: "#66bb6a",
		Error:   "#ef5350",
		Warning: "#ffa726",
		Info:    "#4fc3f7",
		Accent:  "#ce93d8",
		Muted:   "#9e9e9e",
		Border:  "#616161",
		BgAlt:   "#2d2d2d",
		FgDim:   "#757575",
	}
)

// Styles is the full set of rendered styles for one palette.
type Styles struct {
	Mode  domain.ThemeMode
	light bool

	Bold lipgloss.Style
	Dim  lipgloss.Style

	TextSuccess lipgloss.Style
	TextError   lipgloss.Style
	TextInfo    lipgloss.Style
	TextMuted   lipgloss.Style

	UserLabel   lipgloss.Style
	BotLabel    lipgloss.Style
	ActionLabel lipgloss.Style
	ErrorLabel  lipgloss.Style
	Timestamp   lipgloss.Style

	Border     lipgloss.Style
	Chip       lipgloss.Style
	ChipKey    lipgloss.Style
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	Location   lipgloss.Style
	Prompt     lipgloss.Style
	Placehold  lipgloss.Style
	ContactBox lipgloss.Style
}

// New builds the styles of mode. System follows the terminal background.
func New(mode domain.ThemeMode) Styles {
	p := Dark
	switch mode {
	case domain.ThemeLight:
		p = Light
	case domain.ThemeSystem:
		if !lipgloss.HasDarkBackground() {
			p = Light
		}
	default:
		mode = domain.ThemeDark
	}

	return Styles{
		Mode:  mode,
		light: p == Light,
		Bold:  lipgloss.NewStyle().Bold(true),
		Dim:   lipgloss.NewStyle().Faint(true),

		TextSuccess: lipgloss.NewStyle().Foreground(p.Success).Bold(true),
		TextError:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		TextInfo:    lipgloss.NewStyle().Foreground(p.Info),
		TextMuted:   lipgloss.NewStyle().Foreground(p.Muted),

		UserLabel:   lipgloss.NewStyle().Foreground(p.Info).Bold(true),
		BotLabel:    lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		ActionLabel: lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		ErrorLabel:  lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		Timestamp:   lipgloss.NewStyle().Foreground(p.FgDim).Faint(true),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),
		Chip: lipgloss.NewStyle().
			Foreground(p.Accent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		ChipKey: lipgloss.NewStyle().Foreground(p.Info).Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.FgDim).
			Background(p.BgAlt).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().Foreground(p.Info).Bold(true),
		Location:  lipgloss.NewStyle().Foreground(p.Success),
		Prompt:    lipgloss.NewStyle().Foreground(p.Info).Bold(true),
		Placehold: lipgloss.NewStyle().Foreground(p.FgDim),
		ContactBox: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.Accent).
			Padding(0, 2),
	}
}

// GlamourStyle names the glamour standard style matching s.
func (s Styles) GlamourStyle() string {
	if s.light {
		return "light"
	}
	return "dark"
}

// Next returns the mode a manual toggle switches to.
func Next(mode domain.ThemeMode) domain.ThemeMode {
	if mode == domain.ThemeLight {
		return domain.ThemeDark
	}
	return domain.ThemeLight
}

// MaxContentWidth is the recommended max width for readable text content.
const MaxContentWidth = 100

// Clamp returns v clamped to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
