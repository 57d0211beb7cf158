package hooks

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mcpsentry/mcpsentry/pkg/duration"
	"github.com/mcpsentry/mcpsentry/pkg/output/dispatcher"
	"github.com/mcpsentry/mcpsentry/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*OTelHook)(nil)

// OTelHook exports scan telemetry to an OpenTelemetry collector. Each
// run gets a root span; each server scan becomes a child span carrying
// status, tool and finding attributes.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	mu       sync.Mutex
	rootSpan trace.Span
	rootCtx  context.Context
	closed   bool
}

// OTelOptions configures the OpenTelemetry hook behavior.
type OTelOptions struct {
	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string

	// ServiceName is the service name for traces (default: "mcp-sentry").
	ServiceName string

	// ServiceVersion stamps the service.version resource attribute.
	ServiceVersion string

	// Insecure uses an insecure connection (no TLS).
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration

	// ConnectionTimeout is the timeout for establishing connection.
	ConnectionTimeout time.Duration
}

// NewOTelHook creates an OpenTelemetry hook. The exporter connects
// immediately but handles collector outages gracefully without blocking
// scans.
func NewOTelHook(opts OTelOptions) (*OTelHook, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "mcp-sentry"
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "localhost:4317"
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = duration.TelemetryFlush
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = duration.TelemetryConnect
	}

	grpcOpts := []grpc.DialOption{}
	if opts.Insecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(grpcOpts...),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	// Fresh resource, not merged with Default, to avoid schema conflicts.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.ServiceVersion),
		attribute.String("service.component", "scanner"),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)

	return &OTelHook{
		opts:           opts,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer("mcpsentry/scan"),
	}, nil
}

// EventTypes returns nil: the hook inspects every event.
func (h *OTelHook) EventTypes() []events.EventType { return nil }

// OnEvent exports telemetry for the event.
func (h *OTelHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case events.StartEvent:
		h.handleStart(ctx, e)
	case events.ServerResultEvent:
		h.handleServerResult(e)
	case events.SummaryEvent:
		h.handleSummary(e)
	case events.CompleteEvent:
		h.handleComplete(e)
	}
	return nil
}

func (h *OTelHook) handleStart(ctx context.Context, start events.StartEvent) {
	spanCtx, span := h.tracer.Start(ctx, "mcpsentry.run",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("run_id", start.RunID()),
			attribute.String("config_file", start.ConfigFile),
			attribute.Int("servers", start.Servers),
			attribute.StringSlice("analyzers", start.Analyzers),
			attribute.Int("concurrency", start.Concurrency),
		),
	)
	h.rootSpan = span
	h.rootCtx = spanCtx
}

func (h *OTelHook) handleServerResult(result events.ServerResultEvent) {
	if h.rootSpan == nil {
		return
	}

	_, span := h.tracer.Start(h.rootCtx, "mcpsentry.server_scan",
		trace.WithAttributes(
			attribute.String("server", result.Server),
			attribute.String("transport", result.Transport),
			attribute.String("status", string(result.Status)),
			attribute.Int("tools", result.Tools),
			attribute.Int("findings", result.Findings),
		),
	)
	if result.Status == "failed" {
		span.SetStatus(codes.Error, result.Error)
	}
	span.End()
}

func (h *OTelHook) handleSummary(summary events.SummaryEvent) {
	if h.rootSpan == nil {
		return
	}

	h.rootSpan.SetAttributes(
		attribute.Int("servers_scanned", summary.Summary.ScannedServers),
		attribute.Int("servers_failed", summary.Summary.FailedServers),
		attribute.Int("servers_skipped", summary.Summary.SkippedServers),
		attribute.Int("tools_total", summary.Summary.TotalTools),
		attribute.Int("tools_unsafe", summary.Summary.UnsafeTools),
		attribute.Int("findings_total", summary.Summary.TotalFindings),
		attribute.Bool("has_blocking_findings", summary.Blocking),
	)
	if summary.Blocking {
		h.rootSpan.SetStatus(codes.Error, "blocking findings recorded")
	}
}

func (h *OTelHook) handleComplete(complete events.CompleteEvent) {
	if h.rootSpan == nil {
		return
	}

	h.rootSpan.AddEvent("run_complete", trace.WithAttributes(
		attribute.Int("exit_code", complete.ExitCode),
		attribute.String("exit_reason", complete.ExitReason),
		attribute.Float64("duration_ms", complete.DurationMS),
	))
	h.rootSpan.End()
	h.rootSpan = nil
}

// Close ends any open span and flushes the exporter.
func (h *OTelHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	if h.rootSpan != nil {
		h.rootSpan.End()
		h.rootSpan = nil
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.ShutdownTimeout)
	defer cancel()
	return h.tracerProvider.Shutdown(ctx)
}
