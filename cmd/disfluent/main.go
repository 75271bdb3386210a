// Command disfluent analyzes speech transcripts for disfluencies. It reads a
// JSON analysis request (transcript text plus optional word timestamps), runs
// the pattern-based detector and, when an LLM provider is configured, the
// classifier-based detector, and writes the combined result as JSON.
//
// In stream mode (-stream) it instead processes newline-delimited JSON
// requests until EOF, reloading analysis settings when the config file
// changes on disk.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/disfluent/internal/config"
	"github.com/MrWong99/disfluent/internal/disfluency"
	"github.com/MrWong99/disfluent/internal/disfluency/classifier"
	"github.com/MrWong99/disfluent/internal/disfluency/llmclassify"
	"github.com/MrWong99/disfluent/internal/disfluency/pattern"
	"github.com/MrWong99/disfluent/internal/health"
	"github.com/MrWong99/disfluent/internal/observe"
	"github.com/MrWong99/disfluent/internal/resilience"
	"github.com/MrWong99/disfluent/internal/strategy"
	"github.com/MrWong99/disfluent/pkg/provider/llm"
	"github.com/MrWong99/disfluent/pkg/provider/llm/anyllm"
	"github.com/MrWong99/disfluent/pkg/provider/llm/openai"
)

// AnalysisRequest is the JSON input shape: the transcript text plus optional
// per-word timestamps for pause detection.
type AnalysisRequest struct {
	Text  string            `json:"text"`
	Words []disfluency.Word `json:"words,omitempty"`
}

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	inputPath := flag.String("input", "-", "path to the JSON analysis request, or - for stdin")
	stream := flag.Bool("stream", false, "read newline-delimited JSON requests until EOF")
	metricsAddr := flag.String("metrics-addr", "", "optional listen address for the Prometheus /metrics endpoint")
	flag.Parse()

	configFlagSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagSet = true
		}
	})

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !configFlagSet {
			// The default config path is optional; run with defaults.
			cfg = &config.Config{}
		} else if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "disfluent: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
			return 1
		} else {
			fmt.Fprintf(os.Stderr, "disfluent: %v\n", err)
			return 1
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Analyzer ──────────────────────────────────────────────────────────────
	an := &analyzer{registry: reg, metrics: metrics}
	if err := an.rebuild(cfg); err != nil {
		slog.Error("failed to build analysis pipeline", "err", err)
		return 1
	}

	if *metricsAddr != "" {
		serveMetrics(ctx, *metricsAddr, metrics, an)
	}

	if *stream {
		return runStream(ctx, an, *configPath, *inputPath, logLevel)
	}
	return runOnce(ctx, an, *inputPath)
}

// ── Single-request mode ───────────────────────────────────────────────────────

func runOnce(ctx context.Context, an *analyzer, inputPath string) int {
	data, err := readInput(inputPath)
	if err != nil {
		slog.Error("failed to read input", "err", err)
		return 1
	}

	var req AnalysisRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.Error("failed to parse analysis request", "err", err)
		return 1
	}

	combined, err := an.analyze(ctx, req)
	if err != nil {
		slog.Error("analysis failed", "err", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(combined); err != nil {
		slog.Error("failed to write result", "err", err)
		return 1
	}
	return 0
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// ── Stream mode ───────────────────────────────────────────────────────────────

// runStream processes newline-delimited JSON requests from the input until
// EOF or cancellation. The config file is watched for changes so analysis
// settings can be tuned between transcripts without restarting; provider
// changes still require a restart.
func runStream(ctx context.Context, an *analyzer, configPath, inputPath string, logLevel *slog.LevelVar) int {
	watcher, err := config.NewWatcher(configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.ProvidersChanged {
			slog.Warn("provider configuration changed — restart to apply")
		}
		if d.AnalysisChanged {
			if err := an.rebuild(new); err != nil {
				slog.Error("failed to apply new analysis settings", "err", err)
				return
			}
			slog.Info("analysis settings reloaded")
		}
	})
	if err != nil {
		// Stream mode can still run without a watchable config file.
		slog.Debug("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	in := os.Stdin
	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			slog.Error("failed to open input", "err", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req AnalysisRequest
		if err := json.Unmarshal(line, &req); err != nil {
			slog.Error("skipping malformed request line", "err", err)
			continue
		}

		combined, err := an.analyze(ctx, req)
		if err != nil {
			slog.Error("analysis failed", "err", err)
			continue
		}
		if err := enc.Encode(combined); err != nil {
			slog.Error("failed to write result", "err", err)
			return 1
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("input read error", "err", err)
		return 1
	}
	return 0
}

// ── Analyzer ─────────────────────────────────────────────────────────────────

// analyzer holds the current strategy and rebuilds it when analysis settings
// change. Safe for use from the stream loop and the watcher callback.
type analyzer struct {
	registry *config.Registry
	metrics  *observe.Metrics

	mu       sync.Mutex
	strategy *strategy.Strategy
}

func (a *analyzer) analyze(ctx context.Context, req AnalysisRequest) (*strategy.Combined, error) {
	a.mu.Lock()
	s := a.strategy
	a.mu.Unlock()
	return s.Analyze(ctx, req.Text, req.Words)
}

// rebuild constructs the detectors and strategy from cfg and swaps them in.
func (a *analyzer) rebuild(cfg *config.Config) error {
	weights := cfg.Analysis.Weights()
	threshold := cfg.Analysis.PauseThreshold()

	patternOpts := []pattern.Option{
		pattern.WithWeights(weights),
		pattern.WithPauseThreshold(threshold),
	}
	if cfg.Analysis.FuzzyPositions {
		patternOpts = append(patternOpts,
			pattern.WithPositionOptions(disfluency.WithFuzzyFallback(cfg.Analysis.FuzzyThreshold)))
	}
	patternDet := pattern.New(patternOpts...)

	var llmDet *classifier.Detector
	if name := cfg.Providers.LLM.Name; name != "" {
		provider, err := a.registry.CreateLLM(cfg.Providers.LLM)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Warn("unknown llm provider — running pattern analysis only", "name", name)
		} else if err != nil {
			return fmt.Errorf("create llm provider %q: %w", name, err)
		} else {
			// Circuit-break the provider so a dead backend is not retried for
			// every remaining sentence of a long transcript.
			guarded := resilience.NewLLMFallback(provider, name, resilience.FallbackConfig{})
			cls := llmclassify.New(guarded, llmclassify.WithMetrics(a.metrics))
			llmDet = classifier.New(cls,
				classifier.WithWeights(weights),
				classifier.WithPauseThreshold(threshold),
				classifier.WithLogger(slog.Default()),
			)
			slog.Info("llm classifier enabled", "provider", name, "model", cfg.Providers.LLM.Model)
		}
	}

	s, err := strategy.New(patternDet, llmDet, strategy.WithMetrics(a.metrics))
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.strategy = s
	a.mu.Unlock()
	return nil
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in LLM provider factories into reg.
// "openai" uses the native client; the remaining backends go through any-llm.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	})

	// anthropic, gemini, deepseek, mistral, groq, llamacpp, llamafile all
	// share the same pattern: optional APIKey + optional BaseURL.
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

// ── Metrics endpoint ─────────────────────────────────────────────────────────

// serveMetrics exposes the Prometheus scrape endpoint plus liveness and
// readiness probes in the background. The server is shut down when ctx is
// cancelled.
func serveMetrics(ctx context.Context, addr string, m *observe.Metrics, an *analyzer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	health.New(health.Checker{
		Name: "pipeline",
		Check: func(context.Context) error {
			an.mu.Lock()
			defer an.mu.Unlock()
			if an.strategy == nil {
				return errors.New("analysis pipeline not built")
			}
			return nil
		},
	}).Register(mux)

	srv := &http.Server{
		Addr:    addr,
		Handler: observe.Middleware(m)(mux),
	}

	go func() {
		slog.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics endpoint error", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// ── Logger ───────────────────────────────────────────────────────────────────

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
