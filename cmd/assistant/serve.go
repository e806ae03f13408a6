package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"folio-assistant/internal/adapter/gateway"
	"folio-assistant/internal/infra/middleware"
	"folio-assistant/internal/usecase"
	"folio-assistant/internal/usecase/scheduling"
)

// runServe starts the gateway and housekeeping jobs and blocks until
// SIGINT or SIGTERM.
func runServe() error {
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

	sessions := a.sessionManager()

	if cfg.Knowledge.Watch {
		if err := a.knowledge.Watch(ctx, cfg.Knowledge.Debounce); err != nil {
			log.Warn("knowledge watch disabled", "error", err)
		}
	}

	scheduler, err := newScheduler(a, sessions)
	if err != nil {
		return err
	}
	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Requests:       cfg.Gateway.RateLimit.Requests,
		Window:         cfg.Gateway.RateLimit.Window,
		TrustedProxies: cfg.Gateway.TrustedProxies,
	})
	go limiter.Run(ctx)

	srv := gateway.NewServer(a.bus, gateway.NewAuthenticator(cfg.Gateway.Auth), cfg.Gateway.Addr, log)
	srv.SetAllowedOrigins(cfg.Gateway.AllowedOrigins)
	srv.Use(
		middleware.AccessLog(log),
		middleware.SecurityHeaders,
		middleware.CORS(cfg.Gateway.AllowedOrigins),
	)

	deps := gateway.HandlerDeps{Sessions: sessions, Logger: log}
	gateway.RegisterDefaultHandlers(srv, deps)
	gateway.RegisterChatRoutes(srv, deps)
	gateway.RegisterAssistantRoute(srv, gateway.NewAssistantHandler(a.remote, limiter, log))

	metrics := &gateway.Metrics{}
	unobserve := metrics.Observe(a.bus)
	defer unobserve()
	gateway.RegisterStatusRoutes(srv, deps, metrics, func() string {
		if p := a.knowledge.Path(); p != "" {
			return p
		}
		return "built-in"
	})

	log.Info("folio-assistant serving",
		"addr", cfg.Gateway.Addr,
		"store", cfg.Store.Backend,
		"fallback", cfg.Assistant.Fallback,
		"remote", a.remote != nil,
		"scheduler", scheduler != nil,
	)

	// Start stops the server itself once ctx is cancelled.
	err = srv.Start(ctx)
	a.bus.Drain()
	return err
}

// newScheduler registers the housekeeping actions and the configured tasks.
// It returns nil when the scheduler is disabled.
func newScheduler(a *app, sessions *usecase.SessionManager) (*scheduling.Scheduler, error) {
	if !a.cfg.Scheduler.Enabled {
		return nil, nil
	}
	s := scheduling.NewScheduler(a.log)
	idle := a.cfg.Assistant.SessionIdle
	s.RegisterAction(scheduling.ActionSessionReap, func(context.Context) error {
		if n := sessions.ReapStaleSessions(idle); n > 0 {
			a.log.Info("reaped idle sessions", "count", n)
		}
		return nil
	})
	s.RegisterAction(scheduling.ActionKnowledgeReload, a.knowledge.Reload)

	for _, t := range a.cfg.Scheduler.Tasks {
		err := s.AddTask(scheduling.Task{
			Name:     t.Name,
			Schedule: t.Schedule,
			Action:   scheduling.Action(t.Action),
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}
