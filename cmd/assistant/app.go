package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"folio-assistant/internal/adapter/knowledge"
	"folio-assistant/internal/adapter/llm"
	"folio-assistant/internal/adapter/store"
	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/config"
	"folio-assistant/internal/usecase"
	"folio-assistant/internal/usecase/assistant"
	"folio-assistant/internal/usecase/eventbus"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	bus       *eventbus.Bus
	knowledge *knowledge.Store
	store     domain.KVStore
	engine    *assistant.Engine

	// remote is the LLM classifier behind /api/assistant; nil without an
	// API key.
	remote domain.Classifier
	// classifier answers chat sessions: local rules, then the configured
	// fallback.
	classifier domain.Classifier
}

// newApp wires config into components. The returned closer releases the
// store and event bus.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, func(), error) {
	bus := eventbus.New(log)

	kb, err := knowledge.Open(cfg.Knowledge.Path, bus, log)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("knowledge: %w", err)
	}

	kv, err := store.New(ctx, store.Options{
		Backend:     cfg.Store.Backend,
		Path:        cfg.Store.Path,
		RedisURL:    cfg.Store.RedisURL,
		RedisPrefix: cfg.Store.RedisPrefix,
		TTL:         cfg.Store.TTL,
	})
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("store: %w", err)
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		bus:       bus,
		knowledge: kb,
		store:     kv,
		engine:    assistant.NewEngine(kb),
	}

	remote, err := buildRemote(cfg, kb, log)
	if err != nil {
		kv.Close()
		bus.Close()
		return nil, nil, err
	}
	a.remote = remote

	fallback, err := buildFallback(cfg, remote, log)
	if err != nil {
		kv.Close()
		bus.Close()
		return nil, nil, err
	}
	a.classifier = assistant.NewChain(assistant.Local{Engine: a.engine}, fallback, log)

	closer := func() {
		if err := kv.Close(); err != nil {
			log.Warn("store close failed", "error", err)
		}
		bus.Close()
	}
	return a, closer, nil
}

// buildRemote creates the LLM-backed classifier. A missing API key is not an
// error: the remote endpoint then answers 500.
func buildRemote(cfg *config.Config, kb domain.KnowledgeSource, log *slog.Logger) (domain.Classifier, error) {
	provider, err := llm.NewProvider(cfg.LLM, log)
	if errors.Is(err, domain.ErrRemoteDisabled) {
		log.Info("remote assistant disabled", "reason", "no API key")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	ra, err := llm.NewRemoteAssistant(provider, kb, cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	log.Info("remote assistant enabled", "provider", provider.Name(), "model", cfg.LLM.Provider.Model)
	return ra, nil
}

// buildFallback selects the classifier consulted when the local rules fall
// through to the default help text.
func buildFallback(cfg *config.Config, remote domain.Classifier, log *slog.Logger) (domain.Classifier, error) {
	switch cfg.Assistant.Fallback {
	case "", config.FallbackNone:
		return nil, nil
	case config.FallbackProvider:
		if remote == nil {
			log.Warn("fallback provider requested but no API key is configured; answering locally")
			return nil, nil
		}
		return remote, nil
	case config.FallbackRemote:
		if cfg.Assistant.RemoteURL == "" {
			return nil, fmt.Errorf("assistant.remote_url is required for fallback %q", config.FallbackRemote)
		}
		return llm.NewRemoteClient(cfg.Assistant.RemoteURL, nil, log), nil
	default:
		return nil, fmt.Errorf("unknown assistant fallback %q", cfg.Assistant.Fallback)
	}
}

// thinkingDelay converts the configured delay to the session convention where
// zero means the default and negative disables.
func thinkingDelay(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

func (a *app) greeting() string {
	return a.engine.Greeting()
}

// localSession opens the transcript used by the terminal commands.
func (a *app) localSession(ctx context.Context) *usecase.ChatSession {
	return usecase.NewChatSession(ctx, usecase.ChatSessionConfig{
		ID:         "local",
		Key:        a.cfg.Assistant.StorageKey,
		Store:      a.store,
		Classifier: a.classifier,
		Greeting:   a.greeting,
		Delay:      thinkingDelay(a.cfg.Assistant.ThinkingDelay),
		Bus:        a.bus,
		Logger:     a.log,
	})
}

func (a *app) sessionManager() *usecase.SessionManager {
	return usecase.NewSessionManager(usecase.SessionManagerConfig{
		Store:      a.store,
		Classifier: a.classifier,
		Greeting:   a.greeting,
		Delay:      thinkingDelay(a.cfg.Assistant.ThinkingDelay),
		KeyPrefix:  a.cfg.Assistant.StorageKey,
		Bus:        a.bus,
		Logger:     a.log,
	})
}
