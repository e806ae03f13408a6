package executor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/atotto/clipboard"

	"folio-assistant/internal/domain"
)

// ErrClipboardUnavailable is returned when no system clipboard exists.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// SystemClipboard copies text to the operating system clipboard.
type SystemClipboard struct{}

// CopyText writes text to the clipboard.
func (SystemClipboard) CopyText(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// Clipboard is the copy half of a Surface.
type Clipboard interface {
	CopyText(ctx context.Context, text string) error
}

// LogSurface is a headless Surface: it logs navigation and theme changes and
// copies through Clipboard when one is set.
type LogSurface struct {
	Logger    *slog.Logger
	Clipboard Clipboard
}

var _ Surface = (*LogSurface)(nil)

func (s *LogSurface) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *LogSurface) Navigate(_ context.Context, path string) error {
	s.log().Info("navigate", "path", path)
	return nil
}

func (s *LogSurface) ScrollTo(_ context.Context, id string) error {
	s.log().Info("scroll", "section", id)
	return nil
}

func (s *LogSurface) SetTheme(_ context.Context, mode domain.ThemeMode) error {
	s.log().Info("theme", "mode", string(mode))
	return nil
}

func (s *LogSurface) Open(_ context.Context, path string) error {
	s.log().Info("open", "path", path)
	return nil
}

func (s *LogSurface) CopyText(ctx context.Context, text string) error {
	if s.Clipboard == nil {
		s.log().Info("copy", "text", text)
		return nil
	}
	return s.Clipboard.CopyText(ctx, text)
}
