// Command tubesage is an interactive CLI agent that answers questions about
// YouTube videos by fetching their transcripts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/tubesage/internal/chat"
	"github.com/MrWong99/tubesage/internal/config"
	"github.com/MrWong99/tubesage/internal/health"
	"github.com/MrWong99/tubesage/internal/mcpserver"
	"github.com/MrWong99/tubesage/internal/observe"
	"github.com/MrWong99/tubesage/internal/runtime"
	"github.com/MrWong99/tubesage/internal/youtube"
	"github.com/MrWong99/tubesage/pkg/provider/llm"
	"github.com/MrWong99/tubesage/pkg/provider/llm/anyllm"
	"github.com/MrWong99/tubesage/pkg/provider/llm/openai"
)

var version = "dev"

// defaultInstructions is the system prompt used when agent.instructions is
// not configured.
const defaultInstructions = "You are a helpful assistant that discusses YouTube videos. " +
	"When the user provides a YouTube URL or asks about a video's content, call the " +
	"fetch_youtube_transcript tool to retrieve the transcript, then answer questions " +
	"grounded in it. Cite timestamps from the transcript where helpful."

// defaultBanner is shown when agent.name is not configured.
const defaultBanner = "== YouTube Transcript Agent =="

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	mcpMode := flag.Bool("mcp", false, "serve the transcript tool over MCP stdio instead of starting the chat loop")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "tubesage: config file %q not found; copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "tubesage: %v\n", err)
		}
		return 1
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	slog.Info("tubesage starting",
		"version", version,
		"config", *configPath,
		"provider", cfg.Provider.Name,
		"model", cfg.Provider.Model,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "tubesage",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	source := youtube.NewSource(youtube.WithLanguages(cfg.Transcript.Languages))
	tool := youtube.NewTranscriptTool(source)

	if *mcpMode {
		server := mcpserver.New(version, tool)
		if err := mcpserver.Serve(ctx, server); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("mcp server error", "err", err)
			return 1
		}
		return 0
	}

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, err := reg.CreateLLM(cfg.Provider)
	if err != nil {
		slog.Error("failed to create LLM provider", "name", cfg.Provider.Name, "err", err)
		return 1
	}
	if caps := provider.Capabilities(); !caps.SupportsToolCalling {
		slog.Warn("configured model does not support tool calling; transcript fetching will be unavailable",
			"model", cfg.Provider.Model)
	}

	instructions := cfg.Agent.Instructions
	if instructions == "" {
		instructions = defaultInstructions
	}
	banner := defaultBanner
	if cfg.Agent.Name != "" {
		banner = "== " + cfg.Agent.Name + " =="
	}

	runner := runtime.NewRunner("tubesage", provider, instructions, []runtime.Tool{tool})
	history := chat.NewHistory()
	loop := chat.NewLoop(os.Stdin, os.Stdout, runner, history, banner)

	// Hot-reload log level, instructions and caption languages on config
	// file changes.
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			levelVar.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level changed", "level", d.NewLogLevel)
		}
		if d.InstructionsChanged {
			in := d.NewInstructions
			if in == "" {
				in = defaultInstructions
			}
			runner.SetInstructions(in)
			slog.Info("agent instructions reloaded")
		}
		if d.LanguagesChanged {
			source.SetLanguages(d.NewLanguages)
			slog.Info("transcript languages reloaded", "languages", d.NewLanguages)
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)

	if addr := cfg.Server.MetricsAddr; addr != "" {
		srv := metricsServer(addr, map[string]health.Probe{
			"youtube": source.Ping,
		})
		g.Go(func() error {
			slog.Info("metrics endpoint listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer stop() // ends the metrics server once the chat session is over
		return loop.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	return 0
}

// registerBuiltinProviders wires all built-in LLM provider factories into reg.
// The native OpenAI SDK backs "openai"; every other provider goes through the
// any-llm abstraction.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(apiKey, entry.Model, opts...)
	})

	// anthropic, gemini, deepseek, mistral, groq, llamacpp and llamafile share
	// the same pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})
}

// metricsServer builds the operational HTTP server exposing Prometheus
// metrics and health probes, instrumented with the observability middleware.
func metricsServer(addr string, probes map[string]health.Probe) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	health.New(probes).Register(mux)
	return &http.Server{
		Addr:              addr,
		Handler:           observe.Middleware(observe.DefaultMetrics())(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
