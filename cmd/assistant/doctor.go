package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"folio-assistant/internal/adapter/knowledge"
	"folio-assistant/internal/adapter/store"
	"folio-assistant/internal/infra/config"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

// runDoctor executes all health checks and reports results.
func runDoctor() error {
	cfgPath := configPath()
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Knowledge base", Fn: checkKnowledge},
		{Name: "Transcript store", Fn: checkStore},
		{Name: "Remote assistant", Fn: checkRemote},
		{Name: "Gateway address", Fn: checkGatewayAddr},
		{Name: "Clipboard", Fn: checkClipboard},
	}
	return report(os.Stdout, cfg, checks)
}

// report runs checks against cfg and prints one line per result.
func report(w io.Writer, cfg *config.Config, checks []Check) error {
	fmt.Fprintln(w, "folio-assistant doctor")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Fprintf(w, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

var notLoaded = CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}

// checkConfigFile returns a check that verifies the config file parses. A
// missing file is fine: defaults apply.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     "Check config.yaml syntax and permissions (0600)",
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config at %s, using defaults", cfgPath),
			}
		}
		return CheckResult{Status: StatusPass, Message: fmt.Sprintf("config loaded from %s", cfgPath)}
	}
}

// checkKnowledge loads and validates the knowledge file.
func checkKnowledge(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	var err error
	if cfg.Knowledge.Path == "" {
		_, err = knowledge.Default()
	} else {
		_, err = knowledge.LoadFile(cfg.Knowledge.Path)
	}
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: err.Error(),
			Fix:     "Fix the YAML at knowledge.path or unset it to use the built-in content",
		}
	}
	source := cfg.Knowledge.Path
	if source == "" {
		source = "built-in"
	}
	return CheckResult{Status: StatusPass, Message: "loaded " + source}
}

// checkStore opens the transcript backend and round-trips a probe key.
func checkStore(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	kv, err := store.New(ctx, store.Options{
		Backend:     cfg.Store.Backend,
		Path:        cfg.Store.Path,
		RedisURL:    cfg.Store.RedisURL,
		RedisPrefix: cfg.Store.RedisPrefix,
	})
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error(), Fix: "Check the store section of config.yaml"}
	}
	defer kv.Close()

	const probe = "doctor_probe"
	if err := kv.Set(ctx, probe, []byte("ok")); err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("write failed: %v", err)}
	}
	if _, err := kv.Get(ctx, probe); err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("read failed: %v", err)}
	}
	_ = kv.Delete(ctx, probe)

	backend := cfg.Store.Backend
	if backend == "" {
		backend = store.BackendMemory
	}
	if backend == store.BackendMemory {
		return CheckResult{Status: StatusWarn, Message: "memory backend, transcripts are lost on exit"}
	}
	return CheckResult{Status: StatusPass, Message: backend + " backend is writable"}
}

// checkRemote verifies the fallback configuration is usable.
func checkRemote(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	hasKey := cfg.LLM.Provider.APIKey != ""
	switch cfg.Assistant.Fallback {
	case config.FallbackProvider:
		if !hasKey {
			return CheckResult{
				Status:  StatusFail,
				Message: "fallback is provider but no API key is set",
				Fix:     "Set GEMINI_API_KEY or FOLIO_LLM_API_KEY",
			}
		}
	case config.FallbackRemote:
		if cfg.Assistant.RemoteURL == "" {
			return CheckResult{Status: StatusFail, Message: "fallback is remote but assistant.remote_url is empty"}
		}
		return CheckResult{Status: StatusPass, Message: "remote fallback at " + cfg.Assistant.RemoteURL}
	}
	if !hasKey {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no API key, /api/assistant will answer 500",
			Fix:     "Set GEMINI_API_KEY to enable the remote assistant",
		}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%s model %s", cfg.LLM.Provider.Name, cfg.LLM.Provider.Model)}
}

// checkGatewayAddr verifies the gateway port can be bound.
func checkGatewayAddr(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	ln, err := net.Listen("tcp", cfg.Gateway.Addr)
	if err != nil {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s unavailable: %v", cfg.Gateway.Addr, err),
			Fix:     "Stop the other listener or change gateway.addr",
		}
	}
	ln.Close()
	return CheckResult{Status: StatusPass, Message: cfg.Gateway.Addr + " is free"}
}

func checkClipboard(_ *config.Config) CheckResult {
	if clipboard.Unsupported {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no clipboard utility found, copy actions will fail",
			Fix:     "Install xclip, xsel or wl-clipboard",
		}
	}
	return CheckResult{Status: StatusPass, Message: "available"}
}
