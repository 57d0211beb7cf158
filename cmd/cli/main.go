// Command cli is the mcp-sentry entrypoint: it loads an MCP server
// registry, scans every configured server's tools through the enabled
// analyzers, writes a JSON result document and renders a console
// summary. The process exit code encodes the run outcome for CI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/analyzer/inspect"
	"github.com/mcpsentry/mcpsentry/pkg/analyzer/llm"
	"github.com/mcpsentry/mcpsentry/pkg/analyzer/patterns"
	"github.com/mcpsentry/mcpsentry/pkg/mcpconfig"
	"github.com/mcpsentry/mcpsentry/pkg/output"
	"github.com/mcpsentry/mcpsentry/pkg/output/dispatcher"
	"github.com/mcpsentry/mcpsentry/pkg/output/events"
	"github.com/mcpsentry/mcpsentry/pkg/output/exitcode"
	"github.com/mcpsentry/mcpsentry/pkg/output/hooks"
	"github.com/mcpsentry/mcpsentry/pkg/scan"
	"github.com/mcpsentry/mcpsentry/pkg/ui"
)

const defaultConfigFile = ".mcp.json"

// cliOptions holds the parsed command line.
type cliOptions struct {
	configPath   string
	analyzers    string
	outputPath   string
	apiKey       string
	llmAPIKey    string
	rulesPath    string
	concurrency  int
	timeout      time.Duration
	otelEndpoint string
	metricsPort  int
	silent       bool
	noColor      bool
	verbose      bool
	showVersion  bool
}

func parseFlags() cliOptions {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", defaultConfigFile, "MCP server registry file")
	flag.StringVar(&opts.analyzers, "analyzers", patterns.Name, "Comma-separated analyzers to run (patterns, llm, inspect)")
	flag.StringVar(&opts.outputPath, "output", "mcp_scan_results.json", "Result document path (\"-\" for stdout)")
	flag.StringVar(&opts.apiKey, "api-key", envOrDefault("MCPSENTRY_API_KEY", ""), "API key for the inspect analyzer")
	flag.StringVar(&opts.llmAPIKey, "llm-api-key", envOrDefault("OPENAI_API_KEY", ""), "API key for the llm analyzer")
	flag.StringVar(&opts.rulesPath, "rules", "", "Pattern rule file overriding the built-in rules")
	flag.IntVar(&opts.concurrency, "concurrency", 1, "Parallel server scans (1 = sequential)")
	flag.DurationVar(&opts.timeout, "timeout", 0, "Per-server scan timeout (0 = default)")
	flag.StringVar(&opts.otelEndpoint, "otel-endpoint", "", "OTLP gRPC endpoint for trace export")
	flag.IntVar(&opts.metricsPort, "metrics-port", 0, "Prometheus metrics port (0 = disabled)")
	flag.BoolVar(&opts.silent, "silent", false, "Suppress the console summary")
	flag.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	flag.Parse()
	return opts
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("mcp-sentry %s (built %s, commit %s)\n", ui.Version, ui.BuildDate, ui.Commit)
		os.Exit(int(exitcode.Success))
	}

	ui.SetSilent(opts.silent)
	ui.SetNoColor(opts.noColor)

	os.Exit(int(run(opts)))
}

func run(opts cliOptions) exitcode.Code {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ui.PrintBanner()

	exits := exitcode.New(exitcode.DefaultConfig())

	configPath := resolveConfigPath(opts.configPath)
	cfg, err := mcpconfig.Load(configPath)
	if err != nil {
		switch {
		case errors.Is(err, mcpconfig.ErrNotFound):
			ui.PrintError(fmt.Sprintf("Config file not found: %s", configPath))
		case errors.Is(err, mcpconfig.ErrMalformed):
			ui.PrintError(fmt.Sprintf("Config file is malformed: %v", err))
		default:
			ui.PrintError(fmt.Sprintf("Cannot load config: %v", err))
		}
		exits.SetConfigError()
		code, _ := exits.ExitCode()
		return code
	}

	engine, err := buildEngine(opts, logger)
	if err != nil {
		ui.PrintError(err.Error())
		exits.SetConfigError()
		code, _ := exits.ExitCode()
		return code
	}

	ui.PrintConfigLine("Config", configPath)
	ui.PrintConfigLine("Servers", fmt.Sprintf("%d", len(cfg.Servers)))
	ui.PrintConfigLine("Analyzers", strings.Join(engine.Names(), ", "))
	ui.PrintConfigLine("Output", opts.outputPath)

	disp := dispatcher.New()
	disp.RegisterHook(hooks.NewLoggerHook(logger))
	closers := registerObservability(opts, disp, logger)
	defer func() {
		for _, c := range closers {
			if cerr := c(); cerr != nil {
				logger.Warn("observability shutdown failed", "error", cerr)
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := scan.New(engine, scan.Options{
		Concurrency:   opts.concurrency,
		ServerTimeout: opts.timeout,
		Logger:        logger,
		Events:        disp,
	})

	res := orch.Run(ctx, cfg)

	if ctx.Err() != nil {
		exits.SetInterrupted()
	}
	exits.RecordBlocking(res.Summary.Severities.Critical + res.Summary.Severities.High)
	for range res.Summary.FailedServers {
		exits.RecordFailedServer()
	}

	report := &output.Report{
		RunID:         res.RunID,
		ScanTimestamp: res.Started,
		ConfigFile:    configPath,
		AnalyzersUsed: engine.Names(),
		Servers:       res.Servers,
		Summary:       res.Summary,
	}
	if err := report.WriteFile(opts.outputPath); err != nil {
		ui.PrintError(fmt.Sprintf("Cannot write results: %v", err))
		exits.RecordFailedServer()
	}

	if !ui.IsSilent() {
		fmt.Print(ui.RenderReport(report))
	}

	code, reason := exits.ExitCode()
	disp.Dispatch(context.Background(), events.CompleteEvent{
		BaseEvent:  events.NewBase(events.EventTypeComplete, res.RunID),
		OutputPath: opts.outputPath,
		DurationMS: float64(res.Duration) / float64(time.Millisecond),
		ExitCode:   int(code),
		ExitReason: reason,
	})
	return code
}

// resolveConfigPath falls back to the parent directory when the default
// config name is used and no file exists in the working directory. Tool
// registries commonly live one level above a project subdirectory.
func resolveConfigPath(path string) string {
	if path != defaultConfigFile {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	parent := filepath.Join("..", defaultConfigFile)
	if _, err := os.Stat(parent); err == nil {
		return parent
	}
	return path
}

// buildEngine registers the requested analyzers. Unknown names and
// analyzers missing credentials are warned about and skipped; an empty
// resulting set is an error.
func buildEngine(opts cliOptions, logger *slog.Logger) (*analyzer.Engine, error) {
	engine := analyzer.NewEngine()
	for name := range strings.SplitSeq(opts.analyzers, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch name {
		case patterns.Name:
			a, err := patternsAnalyzer(opts.rulesPath)
			if err != nil {
				return nil, err
			}
			engine.Register(a)
		case llm.Name:
			cfg := llm.DefaultConfig()
			cfg.APIKey = opts.llmAPIKey
			a, err := llm.New(cfg)
			if err != nil {
				ui.PrintWarning(fmt.Sprintf("Skipping %s analyzer: %v", name, err))
				logger.Warn("analyzer skipped", "analyzer", name, "error", err)
				continue
			}
			engine.Register(a)
		case inspect.Name:
			cfg := inspect.DefaultConfig()
			cfg.APIKey = opts.apiKey
			a, err := inspect.New(cfg)
			if err != nil {
				ui.PrintWarning(fmt.Sprintf("Skipping %s analyzer: %v", name, err))
				logger.Warn("analyzer skipped", "analyzer", name, "error", err)
				continue
			}
			engine.Register(a)
		default:
			ui.PrintWarning(fmt.Sprintf("Unknown analyzer %q, skipping", name))
			logger.Warn("unknown analyzer requested", "analyzer", name)
		}
	}
	if engine.Count() == 0 {
		return nil, errors.New("no usable analyzers configured")
	}
	return engine, nil
}

func patternsAnalyzer(rulesPath string) (*patterns.Analyzer, error) {
	if rulesPath == "" {
		return patterns.New(), nil
	}
	rs, err := patterns.LoadRules(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load pattern rules %s: %w", rulesPath, err)
	}
	return patterns.NewWithRules(rs), nil
}

// registerObservability wires the optional Prometheus and OTel hooks.
// Returns close functions to run at shutdown.
func registerObservability(opts cliOptions, disp *dispatcher.Dispatcher, logger *slog.Logger) []func() error {
	var closers []func() error
	if opts.metricsPort > 0 {
		prom, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{Port: opts.metricsPort})
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("Prometheus metrics disabled: %v", err))
		} else {
			disp.RegisterHook(prom)
			closers = append(closers, prom.Close)
			logger.Info("prometheus metrics enabled", "port", opts.metricsPort)
		}
	}
	if opts.otelEndpoint != "" {
		otl, err := hooks.NewOTelHook(hooks.OTelOptions{
			Endpoint:       opts.otelEndpoint,
			ServiceVersion: ui.Version,
			Insecure:       true,
		})
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("Trace export disabled: %v", err))
		} else {
			disp.RegisterHook(otl)
			closers = append(closers, otl.Close)
			logger.Info("trace export enabled", "endpoint", opts.otelEndpoint)
		}
	}
	return closers
}
