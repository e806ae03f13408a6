package main

import (
	"context"
	"os/signal"
	"syscall"

	"folio-assistant/internal/adapter/tui/chat"
	"folio-assistant/internal/domain"
	"folio-assistant/internal/usecase/executor"
)

// runChat opens the terminal chat on the local transcript.
func runChat() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	cfg, log, cleanup, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	a, closeApp, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeApp()

	if cfg.Knowledge.Watch {
		if err := a.knowledge.Watch(ctx, cfg.Knowledge.Debounce); err != nil {
			log.Warn("knowledge watch disabled", "error", err)
		}
	}

	return chat.Run(ctx, chat.Deps{
		Session:   a.localSession(ctx),
		Knowledge: a.knowledge,
		Bus:       a.bus,
		Clipboard: executor.SystemClipboard{},
		Logger:    log,
		Theme:     domain.ThemeSystem,
		Stream:    chat.StreamConfigForSpeed(chat.StreamNormal),
	})
}
