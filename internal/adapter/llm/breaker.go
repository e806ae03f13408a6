package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/config"
)

const (
	breakerMaxFailures uint32 = 5
	breakerOpenFor            = 30 * time.Second
	breakerResetEvery         = time.Minute
)

// GuardedProvider fails fast once the upstream model keeps erroring, so a
// portfolio visitor gets the fallback reply instead of waiting on a dead API.
type GuardedProvider struct {
	inner   domain.LLMProvider
	breaker *gobreaker.CircuitBreaker[*domain.ChatResponse]
}

// NewGuardedProvider wraps inner with a circuit breaker. Zero fields in cfg
// take the package defaults.
func NewGuardedProvider(inner domain.LLMProvider, cfg config.CircuitBreakerConfig, logger *slog.Logger) *GuardedProvider {
	if logger == nil {
		logger = slog.Default()
	}
	trip := orDefault(cfg.MaxFailures, breakerMaxFailures)

	settings := gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1,
		Interval:    orDefault(cfg.Interval, breakerResetEvery),
		Timeout:     orDefault(cfg.Timeout, breakerOpenFor),
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= trip
		},
		// A visitor closing the tab is not the provider's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("llm breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &GuardedProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[*domain.ChatResponse](settings),
	}
}

// Chat implements domain.LLMProvider.
func (p *GuardedProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	resp, err := p.breaker.Execute(func() (*domain.ChatResponse, error) {
		return p.inner.Chat(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s unavailable: %w: %w", p.inner.Name(), domain.ErrProviderError, err)
	}
	return resp, err
}

// Name implements domain.LLMProvider.
func (p *GuardedProvider) Name() string { return p.inner.Name() }

// State reports the breaker state for health checks.
func (p *GuardedProvider) State() gobreaker.State { return p.breaker.State() }

// Counts reports the breaker counters for the current interval.
func (p *GuardedProvider) Counts() gobreaker.Counts { return p.breaker.Counts() }

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
