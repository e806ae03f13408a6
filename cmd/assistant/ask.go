package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/usecase"
	"folio-assistant/internal/usecase/executor"
)

// runAsk sends one message on the local transcript, prints the reply and
// applies its action headlessly.
func runAsk(args []string) error {
	text := strings.TrimSpace(strings.Join(stripFlags(args), " "))
	if text == "" {
		return errors.New("usage: folio-assistant ask TEXT")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, log, cleanup, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	a, closeApp, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeApp()

	a.bus.Subscribe(domain.EventContactOpen, func(context.Context, domain.Event) {
		site := a.knowledge.Snapshot().Site
		fmt.Fprintf(os.Stdout, "Contact: %s\n", site.Email)
	})

	exec := executor.New(&executor.LogSurface{Logger: log, Clipboard: executor.SystemClipboard{}}, a.knowledge, a.bus, log)
	err = ask(ctx, os.Stdout, a.localSession(ctx), exec, text)
	a.bus.Drain()
	return err
}

// ask runs one exchange. Execution failures are reported but do not fail the
// command.
func ask(ctx context.Context, w io.Writer, session *usecase.ChatSession, exec *executor.Executor, text string) error {
	tc, err := session.Send(ctx, text)
	if domain.IsIgnoredSend(err) {
		return err
	}
	msgs := session.Messages()
	fmt.Fprintln(w, msgs[len(msgs)-1].Content)
	if err != nil {
		return err
	}
	if execErr := exec.Execute(ctx, tc); execErr != nil {
		fmt.Fprintf(w, "(action failed: %v)\n", execErr)
	}
	return nil
}
