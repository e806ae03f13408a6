package assistant

import (
	"context"
	"log/slog"

	"folio-assistant/internal/domain"
)

// Chain answers locally and consults a remote classifier only when the local
// engine fell through to DefaultHelp. Remote failures keep the local answer.
type Chain struct {
	local  domain.Classifier
	remote domain.Classifier
	logger *slog.Logger
}

var _ domain.Classifier = (*Chain)(nil)

// NewChain creates a Chain. A nil remote makes it equivalent to local.
func NewChain(local, remote domain.Classifier, logger *slog.Logger) *Chain {
	return &Chain{local: local, remote: remote, logger: logger}
}

// Classify implements domain.Classifier.
func (c *Chain) Classify(ctx context.Context, history []domain.Message) (domain.ToolCall, error) {
	tc, err := c.local.Classify(ctx, history)
	if err != nil {
		return nil, err
	}
	if c.remote == nil || !IsDefaultHelp(tc) {
		return tc, nil
	}

	remote, err := c.remote.Classify(ctx, history)
	if err != nil {
		c.logger.Warn("remote assistant failed, keeping local answer", "error", err)
		return tc, nil
	}
	c.logger.Debug("remote assistant answered", "kind", Kind(remote))
	return remote, nil
}
