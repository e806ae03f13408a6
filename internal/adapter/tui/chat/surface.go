package chat

import (
	"context"
	"sync"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/usecase/executor"
)

// EffectKind names a recorded UI side effect.
type EffectKind string

const (
	EffectNavigate EffectKind = "navigate"
	EffectScroll   EffectKind = "scroll"
	EffectTheme    EffectKind = "theme"
	EffectOpen     EffectKind = "open"
	EffectCopy     EffectKind = "copy"
)

// Effect is one side effect the model applies after a reply.
type Effect struct {
	Kind  EffectKind
	Value string
}

// recorder is the Surface the executor drives from the send command. It
// queues effects for the model and copies through clipboard directly.
type recorder struct {
	clipboard executor.Clipboard

	mu      sync.Mutex
	effects []Effect
}

var _ executor.Surface = (*recorder)(nil)

func newRecorder(cb executor.Clipboard) *recorder {
	return &recorder{clipboard: cb}
}

func (r *recorder) add(kind EffectKind, value string) {
	r.mu.Lock()
	r.effects = append(r.effects, Effect{Kind: kind, Value: value})
	r.mu.Unlock()
}

func (r *recorder) drain() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.effects
	r.effects = nil
	return out
}

func (r *recorder) Navigate(_ context.Context, path string) error {
	r.add(EffectNavigate, path)
	return nil
}

func (r *recorder) ScrollTo(_ context.Context, id string) error {
	r.add(EffectScroll, id)
	return nil
}

func (r *recorder) SetTheme(_ context.Context, mode domain.ThemeMode) error {
	r.add(EffectTheme, string(mode))
	return nil
}

func (r *recorder) Open(_ context.Context, path string) error {
	r.add(EffectOpen, path)
	return nil
}

func (r *recorder) CopyText(ctx context.Context, text string) error {
	if r.clipboard != nil {
		if err := r.clipboard.CopyText(ctx, text); err != nil {
			return err
		}
	}
	r.add(EffectCopy, text)
	return nil
}
