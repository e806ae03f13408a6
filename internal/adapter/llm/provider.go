package llm

import (
	"fmt"
	"log/slog"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/config"
)

// NewProvider builds the configured model provider, guarded by a circuit
// breaker when enabled. Without an API key it returns ErrRemoteDisabled.
func NewProvider(cfg config.LLMConfig, logger *slog.Logger) (domain.LLMProvider, error) {
	if cfg.Provider.APIKey == "" {
		return nil, domain.ErrRemoteDisabled
	}

	var p domain.LLMProvider
	switch cfg.Provider.Type {
	case "", "gemini":
		p = NewGeminiProvider(cfg.Provider, logger)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, cfg.Provider.Type)
	}

	if cfg.CircuitBreaker.Enabled {
		p = NewGuardedProvider(p, cfg.CircuitBreaker, logger)
	}
	return p, nil
}
