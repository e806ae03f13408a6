// Package components holds the reusable pieces of the chat screen.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"folio-assistant/internal/adapter/tui/theme"
	"folio-assistant/internal/domain"
)

// EntryKind identifies how a transcript line is drawn.
type EntryKind string

const (
	KindUser      EntryKind = "user"
	KindAssistant EntryKind = "assistant"
	KindAction    EntryKind = "action" // local side effect of a tool call
	KindError     EntryKind = "error"
)

// Entry is one rendered line of the transcript.
type Entry struct {
	Kind      EntryKind
	Content   string
	Rendered  string // cached glamour output; empty means not yet rendered
	Timestamp time.Time
}

// EntriesFromMessages converts a persisted transcript into entries.
func EntriesFromMessages(msgs []domain.Message) []Entry {
	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		kind := KindAssistant
		if m.Role == domain.RoleUser {
			kind = KindUser
		}
		out = append(out, Entry{Kind: kind, Content: m.Content})
	}
	return out
}

// TranscriptModel is a scrolling view of the conversation. Auto-scroll is
// active while the user is at the bottom.
type TranscriptModel struct {
	Viewport viewport.Model
	Entries  []Entry

	styles   theme.Styles
	renderer *glamour.TermRenderer
	width    int
	ready    bool
	atBottom bool
}

// NewTranscript creates a transcript. The viewport is sized lazily.
func NewTranscript(styles theme.Styles) TranscriptModel {
	return TranscriptModel{styles: styles, atBottom: true}
}

// SetStyles swaps the theme and re-renders everything.
func (m *TranscriptModel) SetStyles(styles theme.Styles) {
	m.styles = styles
	m.invalidate()
	m.refresh()
}

// SetSize sets the viewport dimensions.
func (m *TranscriptModel) SetSize(w, h int) {
	if w != m.width {
		m.width = w
		m.invalidate()
	}
	if !m.ready {
		m.Viewport = viewport.New(w, h)
		m.Viewport.MouseWheelEnabled = true
		m.Viewport.MouseWheelDelta = 3
		m.ready = true
	} else {
		m.Viewport.Width = w
		m.Viewport.Height = h
	}
	m.refresh()
}

// SetEntries replaces the transcript.
func (m *TranscriptModel) SetEntries(entries []Entry) {
	m.Entries = entries
	m.atBottom = true
	m.refresh()
}

// Add appends an entry and scrolls to it when auto-scroll is active.
func (m *TranscriptModel) Add(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	m.Entries = append(m.Entries, e)
	m.refresh()
}

// UpdateLast replaces the content of the newest entry.
func (m *TranscriptModel) UpdateLast(content string) {
	if len(m.Entries) == 0 {
		return
	}
	last := &m.Entries[len(m.Entries)-1]
	last.Content = content
	last.Rendered = ""
	m.refresh()
}

// Update handles viewport scrolling and tracks auto-scroll state.
func (m TranscriptModel) Update(msg tea.Msg) (TranscriptModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	m.atBottom = m.Viewport.AtBottom()
	return m, cmd
}

// View renders the viewport.
func (m TranscriptModel) View() string {
	if !m.ready {
		return "  Initializing..."
	}
	return m.Viewport.View()
}

// Render draws every entry at the current width.
func (m *TranscriptModel) Render() string {
	if len(m.Entries) == 0 {
		return m.styles.TextMuted.Render("  Ask me about projects, skills or experience.")
	}
	width := ContentWidth(m.width)
	var sb strings.Builder
	for i := range m.Entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderEntry(&m.Entries[i], width))
	}
	return sb.String()
}

func (m *TranscriptModel) invalidate() {
	m.renderer = nil
	for i := range m.Entries {
		m.Entries[i].Rendered = ""
	}
}

func (m *TranscriptModel) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.Render())
	if m.atBottom {
		m.Viewport.GotoBottom()
	}
}

func (m *TranscriptModel) renderEntry(e *Entry, width int) string {
	label := m.label(e.Kind)
	switch e.Kind {
	case KindAssistant:
		if e.Rendered == "" {
			e.Rendered = m.renderMarkdown(e.Content, width)
		}
		return label + "\n" + strings.TrimRight(e.Rendered, "\n")
	case KindAction:
		return "  " + label + " " + m.styles.TextMuted.Render(e.Content)
	case KindError:
		return label + " " + m.styles.TextError.Render(wrapText(e.Content, width-2))
	default:
		line := label + "  " + wrapText(e.Content, width-lipgloss.Width(label)-2)
		if ts := RelativeTime(e.Timestamp); ts != "" {
			line += " " + m.styles.TextMuted.Render(theme.SymbolBullet+" "+ts)
		}
		return line
	}
}

func (m *TranscriptModel) label(kind EntryKind) string {
	switch kind {
	case KindUser:
		return m.styles.UserLabel.Render(theme.SymbolUser)
	case KindAssistant:
		return m.styles.BotLabel.Render(theme.SymbolBot)
	case KindAction:
		return m.styles.ActionLabel.Render(theme.SymbolArrowR)
	case KindError:
		return m.styles.ErrorLabel.Render(theme.SymbolError)
	default:
		return m.styles.TextMuted.Render(string(kind))
	}
}

func (m *TranscriptModel) renderMarkdown(content string, width int) string {
	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.styles.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "  " + content
		}
		m.renderer = r
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return "  " + content
	}
	return rendered
}

// RelativeTime returns a human-readable relative time string.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2 15:04")
	}
}

// wrapText wraps text to the given width with a 2-space indent on continuation lines.
// Uses rune-based indexing to safely handle multibyte UTF-8.
func wrapText(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	var lines []string
	for len(runes) > width {
		idx := -1
		for i := width - 1; i > 0; i-- {
			if runes[i] == ' ' {
				idx = i
				break
			}
		}
		if idx <= 0 {
			idx = width
		}
		lines = append(lines, string(runes[:idx]))
		runes = runes[idx:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return strings.Join(lines, "\n  ")
}

// ContentWidth calculates the content width respecting MaxContentWidth.
func ContentWidth(termWidth int) int {
	return theme.Clamp(termWidth-4, 40, theme.MaxContentWidth)
}
