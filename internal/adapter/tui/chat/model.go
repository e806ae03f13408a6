package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"folio-assistant/internal/adapter/tui/components"
	"folio-assistant/internal/adapter/tui/theme"
	"folio-assistant/internal/adapter/tui/uxerror"
	"folio-assistant/internal/domain"
	"folio-assistant/internal/usecase/executor"
)

// Session is the part of a chat session the window drives.
type Session interface {
	Send(ctx context.Context, text string) (domain.ToolCall, error)
	Reset(ctx context.Context) error
	Messages() []domain.Message
}

// Deps are the dependencies injected into the chat model.
type Deps struct {
	Session   Session
	Knowledge domain.KnowledgeSource
	Bus       domain.EventBus    // optional; receives open_contact
	Clipboard executor.Clipboard // optional; copies are only shown when nil
	Logger    *slog.Logger
	Theme     domain.ThemeMode
	Stream    StreamConfig // zero value reveals replies instantly
}

// Model is the root Bubble Tea model of the chat window.
type Model struct {
	deps Deps
	ctx  context.Context

	styles     theme.Styles
	transcript components.TranscriptModel
	input      textinput.Model
	statusBar  components.StatusBarModel
	spinner    spinner.Model

	waiting  bool // a send is in flight
	stream   *reveal
	pending  []components.Entry // action lines shown once the reply is revealed
	contact  bool               // contact card visible
	width    int
	height   int
	quitting bool
}

// NewModel creates the chat model and loads the current transcript.
func NewModel(ctx context.Context, deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Theme == "" {
		deps.Theme = domain.ThemeDark
	}

	styles := theme.New(deps.Theme)

	in := textinput.New()
	in.Placeholder = "Ask about projects, skills, experience…"
	in.CharLimit = 2000
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		deps:       deps,
		ctx:        ctx,
		styles:     styles,
		transcript: components.NewTranscript(styles),
		input:      in,
		spinner:    s,
	}
	m.applyStyles()
	m.statusBar.Hints = defaultHints()
	m.statusBar.Location = "/"
	m.transcript.SetEntries(components.EntriesFromMessages(deps.Session.Messages()))
	return m
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case ResetMsg:
		if msg.Err != nil {
			m.addError(msg.Err)
			return m, nil
		}
		m.pending = nil
		m.statusBar.Location = "/"
		m.transcript.SetEntries(components.EntriesFromMessages(msg.Messages))
		m.transcript.Add(components.Entry{Kind: components.KindAction, Content: theme.SymbolSuccess + " Conversation reset."})
		return m, nil

	case StreamTickMsg:
		return m.handleStreamTick()

	case ContactMsg:
		m.contact = true
		m.layout()
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	if !m.waiting {
		if _, isMouse := msg.(tea.MouseMsg); !isMouse {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the whole window.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	parts := []string{m.header(), m.transcript.View()}
	if m.contact {
		parts = append(parts, m.contactCard())
	}
	parts = append(parts,
		components.RenderQuickPrompts(m.styles, m.width),
		m.styles.Dim.Render(strings.Repeat("─", m.width)),
		m.inputView(),
		m.statusBar.View(m.styles),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) header() string {
	title := "Portfolio assistant"
	if kb := m.snapshot(); kb != nil && kb.Site.Title != "" {
		title = kb.Site.Title
	}
	return m.styles.Bold.Render(title) + "  " + m.styles.TextMuted.Render("assistant")
}

func (m Model) inputView() string {
	if m.waiting || m.stream != nil {
		return m.spinner.View() + " " + m.styles.Dim.Render("Thinking…")
	}
	return m.input.View()
}

func (m Model) contactCard() string {
	var lines []string
	lines = append(lines, m.styles.Bold.Render("Get in touch"))
	if kb := m.snapshot(); kb != nil {
		site := kb.Site
		if site.Email != "" {
			lines = append(lines, "Email     "+site.Email)
		}
		if site.GitHub != "" {
			lines = append(lines, "GitHub    "+site.GitHub)
		}
		if site.LinkedIn != "" {
			lines = append(lines, "LinkedIn  "+site.LinkedIn)
		}
	}
	lines = append(lines, m.styles.TextMuted.Render("Esc to close"))
	return m.styles.ContactBox.Render(strings.Join(lines, "\n"))
}

// layout recalculates sizes for all sub-models.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	fixed := 1 + 1 + 1 + 1 // header, divider, input, status bar
	fixed += lipgloss.Height(components.RenderQuickPrompts(m.styles, m.width))
	if m.contact {
		fixed += lipgloss.Height(m.contactCard())
	}
	contentH := m.height - fixed
	if contentH < 5 {
		contentH = 5
	}
	m.statusBar.SetWidth(m.width)
	m.input.Width = m.width - lipgloss.Width(m.input.Prompt) - 1
	m.transcript.SetSize(m.width, contentH)
}

func (m *Model) applyStyles() {
	m.input.PromptStyle = m.styles.Prompt
	m.input.PlaceholderStyle = m.styles.Placehold
	m.spinner.Style = m.styles.TextInfo
	m.transcript.SetStyles(m.styles)
}

func (m *Model) setTheme(mode domain.ThemeMode) {
	m.deps.Theme = mode
	m.styles = theme.New(mode)
	m.applyStyles()
	m.layout()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "ctrl+t":
		m.setTheme(theme.Next(m.styles.Mode))
		return m, nil
	case "esc":
		if m.contact {
			m.contact = false
			m.layout()
		}
		return m, nil
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	case "enter":
		value := m.input.Value()
		m.input.SetValue("")
		return m.handleSubmit(value)
	}

	for i, prompt := range components.QuickPrompts {
		if msg.String() == components.QuickPromptKey(i) {
			return m.handleSubmit(prompt)
		}
	}

	if m.waiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit sends value or runs it as a slash command.
func (m Model) handleSubmit(value string) (tea.Model, tea.Cmd) {
	value = strings.TrimSpace(value)
	if value == "" {
		return m, nil
	}
	if cmd, args, ok := parseSlashCommand(value); ok {
		return m.handleSlashCommand(cmd, args)
	}
	if m.waiting || m.stream != nil {
		m.addError(domain.ErrSessionBusy)
		return m, nil
	}

	m.transcript.Add(components.Entry{Kind: components.KindUser, Content: value})
	m.waiting = true
	m.input.Blur()
	m.statusBar.Extra = ""
	return m, tea.Batch(sendCmd(m.ctx, m.deps, value), m.spinner.Tick)
}

// handleReply shows the assistant reply and applies its side effects.
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	if domain.IsIgnoredSend(msg.Err) {
		m.transcript.SetEntries(components.EntriesFromMessages(msg.Messages))
		if errors.Is(msg.Err, domain.ErrSessionBusy) {
			m.addError(msg.Err)
		}
		m.input.Focus()
		return m, nil
	}
	if msg.Err != nil {
		m.deps.Logger.Warn("assistant reply failed", "error", msg.Err)
	}

	m.pending = nil
	for _, e := range msg.Effects {
		m.applyEffect(e)
	}
	if msg.ExecErr != nil {
		m.pending = append(m.pending, components.Entry{
			Kind:    components.KindError,
			Content: uxerror.Humanize(msg.ExecErr).Render(),
		})
	}

	reply := lastAssistant(msg.Messages)
	m.transcript.Add(components.Entry{Kind: components.KindAssistant})
	m.stream = newReveal(reply)
	if m.deps.Stream.ChunkSize <= 0 {
		return m.finishStream(reply)
	}
	return m.handleStreamTick()
}

func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.stream == nil {
		return m, nil
	}
	shown, done := m.stream.next(m.deps.Stream.ChunkSize)
	if done {
		return m.finishStream(shown)
	}
	m.transcript.UpdateLast(shown)
	return m, streamTickCmd(m.deps.Stream.TickRate)
}

func (m Model) finishStream(reply string) (tea.Model, tea.Cmd) {
	m.stream = nil
	m.transcript.UpdateLast(reply)
	for _, e := range m.pending {
		m.transcript.Add(e)
	}
	m.pending = nil
	m.input.Focus()
	return m, nil
}

// applyEffect updates local state for one recorded side effect and queues
// the line describing it.
func (m *Model) applyEffect(e Effect) {
	var line string
	switch e.Kind {
	case EffectNavigate:
		m.statusBar.Location = e.Value
		line = "Now viewing " + e.Value
	case EffectScroll:
		base, _, _ := strings.Cut(m.statusBar.Location, "#")
		m.statusBar.Location = base + "#" + e.Value
		line = "Jumped to #" + e.Value
	case EffectTheme:
		m.setTheme(domain.ThemeMode(e.Value))
		line = "Theme set to " + e.Value
	case EffectOpen:
		line = "Opened " + m.siteURL() + e.Value
	case EffectCopy:
		line = fmt.Sprintf("Copied %s to the clipboard", e.Value)
		if m.deps.Clipboard == nil {
			line = "Copy this: " + e.Value
		}
	default:
		return
	}
	m.pending = append(m.pending, components.Entry{Kind: components.KindAction, Content: line})
}

// handleSlashCommand processes a slash command.
func (m Model) handleSlashCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "/help":
		m.transcript.Add(components.Entry{Kind: components.KindAction, Content: helpText})
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/reset", "/clear":
		if m.waiting || m.stream != nil {
			m.addError(domain.ErrSessionBusy)
			return m, nil
		}
		return m, resetCmd(m.ctx, m.deps.Session)

	case "/theme":
		mode := theme.Next(m.styles.Mode)
		if len(args) > 0 {
			mode = domain.ThemeMode(strings.ToLower(args[0]))
			if !mode.Valid() {
				m.addError(fmt.Errorf("unknown theme %q", args[0]))
				return m, nil
			}
		}
		m.setTheme(mode)
		m.transcript.Add(components.Entry{Kind: components.KindAction, Content: "Theme set to " + string(mode)})
		return m, nil

	case "/contact":
		m.contact = true
		m.layout()
		return m, nil

	case "/speed":
		speed := CycleStreamSpeed(m.deps.Stream.Speed)
		m.deps.Stream = StreamConfigForSpeed(speed)
		m.transcript.Add(components.Entry{Kind: components.KindAction, Content: "Reveal speed: " + speed.String()})
		return m, nil

	default:
		m.transcript.Add(components.Entry{
			Kind:    components.KindError,
			Content: fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd),
		})
		return m, nil
	}
}

const helpText = `Commands: /help /reset /theme [light|dark|system] /contact /speed /quit
Keys: Enter send, F1-F4 quick prompts, Ctrl+T theme, PgUp/PgDn scroll, Ctrl+C quit`

func (m *Model) addError(err error) {
	m.transcript.Add(components.Entry{Kind: components.KindError, Content: uxerror.Humanize(err).Render()})
}

func (m Model) snapshot() *domain.KnowledgeBase {
	if m.deps.Knowledge == nil {
		return nil
	}
	return m.deps.Knowledge.Snapshot()
}

func (m Model) siteURL() string {
	if kb := m.snapshot(); kb != nil {
		return strings.TrimRight(kb.Site.SiteURL, "/")
	}
	return ""
}

func lastAssistant(msgs []domain.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == domain.RoleAssistant {
			return msgs[i].Content
		}
	}
	return ""
}

func defaultHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: "Send"},
		{Key: "F1-F4", Desc: "Quick prompts"},
		{Key: "Ctrl+T", Desc: "Theme"},
		{Key: "/help", Desc: "Help"},
		{Key: "Ctrl+C", Desc: "Quit"},
	}
}
