package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"folio-assistant/internal/adapter/gateway"
	"folio-assistant/internal/infra/config"
	"folio-assistant/internal/infra/logger"
	"folio-assistant/internal/infra/tracer"
)

func main() {
	if len(os.Args) < 2 {
		exitOn("chat", runChat())
		return
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		showUsage(os.Stdout)
	case "version", "--version":
		fmt.Printf("folio-assistant %s\n", gateway.Version)
	case "serve":
		exitOn("serve", runServe())
	case "chat":
		exitOn("chat", runChat())
	case "ask":
		exitOn("ask", runAsk(os.Args[2:]))
	case "encrypt":
		exitOn("encrypt", runEncrypt(os.Args[2:], os.Stdout))
	case "doctor":
		exitOn("doctor", runDoctor())
	default:
		if strings.HasPrefix(os.Args[1], "-") {
			exitOn("chat", runChat())
			return
		}
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'folio-assistant --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
}

func exitOn(cmd string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func showUsage(w io.Writer) {
	fmt.Fprint(w, `folio-assistant - Portfolio site assistant

USAGE:
    folio-assistant [COMMAND] [FLAGS]

COMMANDS:
    chat        Open the terminal chat (default)
    serve       Run the HTTP/WebSocket gateway
    ask TEXT    Answer one question and apply its action
    encrypt V   Encrypt a secret for config.yaml (needs FOLIO_CONFIG_KEY)
    doctor      Run health checks on your setup
    version     Print the version

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml (optional; defaults are used when missing)
    Environment: FOLIO_* variables override config; GEMINI_API_KEY enables
                 the remote assistant

EXAMPLES:
    folio-assistant                         # Chat in the terminal
    folio-assistant serve --config site.yaml
    folio-assistant ask "show react projects"
    FOLIO_CONFIG_KEY=... folio-assistant encrypt sk-123
`)
}

// configPath returns the --config flag, FOLIO_CONFIG or ./config.yaml.
func configPath() string {
	return configPathFrom(os.Args, os.Getenv(config.EnvPrefix+"CONFIG"))
}

func configPathFrom(args []string, env string) string {
	for i, arg := range args {
		if (arg == "--config" || arg == "-config") && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
		if strings.HasPrefix(arg, "-config=") {
			return strings.TrimPrefix(arg, "-config=")
		}
	}
	if env != "" {
		return env
	}
	return "config.yaml"
}

// stripFlags removes the --config flag and its value from args.
func stripFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" || args[i] == "-config":
			i++
		case strings.HasPrefix(args[i], "--config="), strings.HasPrefix(args[i], "-config="):
		default:
			out = append(out, args[i])
		}
	}
	return out
}

// bootstrap loads config and starts logging and tracing. The returned
// function flushes both. With fullscreen set, terminal log output is moved
// to a file so it cannot draw over the chat window.
func bootstrap(ctx context.Context, fullscreen bool) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	if fullscreen {
		cfg.Logger.Output = fileLogOutput(cfg)
	}

	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		logCloser()
		return nil, nil, nil, fmt.Errorf("tracer: %w", err)
	}

	cleanup := func() {
		if err := tracerShutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
		logCloser()
	}
	return cfg, log, cleanup, nil
}

func fileLogOutput(cfg *config.Config) string {
	switch cfg.Logger.Output {
	case "", "stderr", "stdout":
		return filepath.Join(filepath.Dir(cfg.Store.Path), "assistant.log")
	default:
		return cfg.Logger.Output
	}
}
