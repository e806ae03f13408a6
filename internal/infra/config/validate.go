package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateKnowledge(cfg, ve)
	validateAssistant(cfg, ve)
	validateStore(cfg, ve)
	validateLLM(cfg, ve)
	validateGateway(cfg, ve)
	validateScheduler(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateKnowledge(cfg *Config, ve *ValidationError) {
	if cfg.Knowledge.Watch && cfg.Knowledge.Path == "" {
		ve.Add("knowledge.watch requires knowledge.path")
	}
	if cfg.Knowledge.Debounce < 0 {
		ve.Add("knowledge.debounce must be >= 0")
	}
}

func validateAssistant(cfg *Config, ve *ValidationError) {
	a := cfg.Assistant
	if a.ThinkingDelay < 0 {
		ve.Add("assistant.thinking_delay must be >= 0")
	}
	if a.StorageKey == "" {
		ve.Add("assistant.storage_key must not be empty")
	}
	if strings.Contains(a.StorageKey, ":") {
		ve.Add("assistant.storage_key must not contain ':'")
	}
	switch a.Fallback {
	case FallbackNone, FallbackProvider:
	case FallbackRemote:
		u, err := url.Parse(a.RemoteURL)
		if a.RemoteURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			ve.Add("assistant.remote_url must be an http(s) URL when fallback is %q", FallbackRemote)
		}
	default:
		ve.Add("assistant.fallback %q is invalid (want none, provider or remote)", a.Fallback)
	}
	if a.SessionIdle <= 0 {
		ve.Add("assistant.session_idle must be > 0")
	}
}

var validStoreBackends = map[string]bool{
	"memory": true,
	"file":   true,
	"sqlite": true,
	"redis":  true,
}

func validateStore(cfg *Config, ve *ValidationError) {
	s := cfg.Store
	if !validStoreBackends[s.Backend] {
		ve.Add("store.backend %q is invalid (want memory, file, sqlite or redis)", s.Backend)
		return
	}
	switch s.Backend {
	case "file", "sqlite":
		if s.Path == "" {
			ve.Add("store.path is required for the %s backend", s.Backend)
		}
	case "redis":
		if s.RedisURL == "" {
			ve.Add("store.redis_url is required for the redis backend")
		}
	}
	if s.TTL < 0 {
		ve.Add("store.ttl must be >= 0")
	}
}

var validProviderTypes = map[string]bool{
	"gemini": true,
}

func validateLLM(cfg *Config, ve *ValidationError) {
	p := cfg.LLM.Provider
	if !validProviderTypes[p.Type] {
		ve.Add("llm.provider.type %q is invalid (want gemini)", p.Type)
	}
	if p.Model == "" {
		ve.Add("llm.provider.model must not be empty")
	}
	if p.BaseURL != "" {
		if u, err := url.Parse(p.BaseURL); err != nil || u.Host == "" {
			ve.Add("llm.provider.base_url %q is not a valid URL", p.BaseURL)
		}
	}
	if cfg.LLM.MaxTokens < 0 {
		ve.Add("llm.max_tokens must be >= 0")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		ve.Add("llm.temperature must be between 0 and 2")
	}
	cb := cfg.LLM.CircuitBreaker
	if cb.Enabled && (cb.Timeout < 0 || cb.Interval < 0) {
		ve.Add("llm.circuit_breaker durations must be >= 0")
	}
}

func validateGateway(cfg *Config, ve *ValidationError) {
	g := cfg.Gateway
	if g.Addr == "" {
		ve.Add("gateway.addr is required")
	} else if _, _, err := net.SplitHostPort(g.Addr); err != nil {
		ve.Add("gateway.addr %q is not a valid host:port", g.Addr)
	}
	if g.RateLimit.Requests <= 0 {
		ve.Add("gateway.rate_limit.requests must be > 0")
	}
	if g.RateLimit.Window <= 0 {
		ve.Add("gateway.rate_limit.window must be > 0")
	}
	switch g.Auth.Type {
	case "":
	case "static":
		if len(g.Auth.Tokens) == 0 {
			ve.Add("gateway.auth.tokens must not be empty for static auth")
		}
		for i, t := range g.Auth.Tokens {
			if t.Token == "" {
				ve.Add("gateway.auth.tokens[%d].token is required", i)
			}
		}
	default:
		ve.Add("gateway.auth.type %q is invalid (want static or empty)", g.Auth.Type)
	}
}

var validTaskActions = map[string]bool{
	"session_reap":     true,
	"knowledge_reload": true,
}

func validateScheduler(cfg *Config, ve *ValidationError) {
	if !cfg.Scheduler.Enabled {
		return
	}
	for i, t := range cfg.Scheduler.Tasks {
		if t.Name == "" {
			ve.Add("scheduler.tasks[%d].name is required", i)
		}
		if t.Schedule == "" {
			ve.Add("scheduler.tasks[%d].schedule is required", i)
		}
		if !validTaskActions[t.Action] {
			ve.Add("scheduler.tasks[%d].action %q is invalid", i, t.Action)
		}
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		ve.Add("logger.level %q is invalid", cfg.Logger.Level)
	}
	switch cfg.Logger.Format {
	case "text", "json":
	default:
		ve.Add("logger.format %q is invalid (want text or json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "stdout", "noop":
	default:
		ve.Add("tracer.exporter %q is invalid (want stdout or noop)", cfg.Tracer.Exporter)
	}
}
