package chat

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"folio-assistant/internal/domain"
)

// Run opens the chat window and blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps Deps) error {
	model := NewModel(ctx, deps)
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// open_contact is published by the executor rather than recorded.
	if deps.Bus != nil {
		unsub := deps.Bus.Subscribe(domain.EventContactOpen, func(_ context.Context, _ domain.Event) {
			program.Send(ContactMsg{})
		})
		defer unsub()
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
