package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/usecase/executor"
)

// sendCmd runs one send in the background, then executes the returned
// ToolCall against a recorder so the model can apply the effects.
func sendCmd(ctx context.Context, deps Deps, text string) tea.Cmd {
	return func() tea.Msg {
		tc, err := deps.Session.Send(ctx, text)
		msg := ReplyMsg{Call: tc, Err: err}
		if tc != nil && !domain.IsIgnoredSend(err) {
			rec := newRecorder(deps.Clipboard)
			exec := executor.New(rec, deps.Knowledge, deps.Bus, deps.Logger)
			msg.ExecErr = exec.Execute(ctx, tc)
			msg.Effects = rec.drain()
		}
		msg.Messages = deps.Session.Messages()
		return msg
	}
}

func resetCmd(ctx context.Context, session Session) tea.Cmd {
	return func() tea.Msg {
		err := session.Reset(ctx)
		return ResetMsg{Messages: session.Messages(), Err: err}
	}
}

// streamTickCmd returns a Cmd that fires a StreamTickMsg after the given delay.
func streamTickCmd(rate time.Duration) tea.Cmd {
	if rate <= 0 {
		rate = 16 * time.Millisecond
	}
	return tea.Tick(rate, func(_ time.Time) tea.Msg {
		return StreamTickMsg{}
	})
}

// parseSlashCommand splits "/theme dark" into "/theme" and ["dark"].
func parseSlashCommand(value string) (string, []string, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "/") || len(value) < 2 {
		return "", nil, false
	}
	fields := strings.Fields(value)
	return strings.ToLower(fields[0]), fields[1:], true
}
