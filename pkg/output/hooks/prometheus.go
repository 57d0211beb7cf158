package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcpsentry/mcpsentry/pkg/duration"
	"github.com/mcpsentry/mcpsentry/pkg/output/dispatcher"
	"github.com/mcpsentry/mcpsentry/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*PrometheusHook)(nil)

// PrometheusHook exposes scan metrics for Prometheus scraping. It starts
// an HTTP server serving metrics at the configured path and runs until
// Close is called.
type PrometheusHook struct {
	server   *http.Server
	registry *prometheus.Registry
	opts     PrometheusOptions

	serversTotal  *prometheus.CounterVec
	toolsTotal    *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
	runDuration   *prometheus.GaugeVec

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook behavior.
type PrometheusOptions struct {
	// Port for the metrics server (default: 9090).
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	// ReadTimeout for the HTTP server.
	ReadTimeout time.Duration

	// WriteTimeout for the HTTP server.
	WriteTimeout time.Duration
}

// NewPrometheusHook creates a Prometheus hook and starts its metrics
// server immediately.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Port == 0 {
		opts.Port = 9090
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = duration.TelemetryFlush
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = duration.Shutdown
	}

	// Custom registry, don't pollute the default.
	hook := &PrometheusHook{
		registry: prometheus.NewRegistry(),
		opts:     opts,
	}
	if err := hook.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	hook.startServer()
	return hook, nil
}

func (h *PrometheusHook) initMetrics() error {
	h.serversTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpsentry_servers_total",
			Help: "Total number of MCP servers scanned, by terminal status",
		},
		[]string{"status", "transport"},
	)

	h.toolsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpsentry_tools_total",
			Help: "Total number of tools analyzed, by verdict",
		},
		[]string{"verdict"},
	)

	h.findingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpsentry_findings_total",
			Help: "Total number of findings recorded, by severity",
		},
		[]string{"severity"},
	)

	h.runDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mcpsentry_run_duration_seconds",
			Help: "Duration of the last completed scan run in seconds",
		},
		[]string{"run_id"},
	)

	for _, c := range []prometheus.Collector{
		h.serversTotal,
		h.toolsTotal,
		h.findingsTotal,
		h.runDuration,
	} {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (h *PrometheusHook) startServer() {
	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	h.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", h.opts.Port),
		Handler:      mux,
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
	}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
}

// EventTypes limits the hook to the events that move counters.
func (h *PrometheusHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeServerResult,
		events.EventTypeSummary,
		events.EventTypeComplete,
	}
}

// OnEvent updates metrics from scan events.
func (h *PrometheusHook) OnEvent(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case events.ServerResultEvent:
		h.serversTotal.WithLabelValues(string(e.Status), e.Transport).Inc()

	case events.SummaryEvent:
		h.toolsTotal.WithLabelValues("safe").Add(float64(e.Summary.SafeTools))
		h.toolsTotal.WithLabelValues("unsafe").Add(float64(e.Summary.UnsafeTools))
		sev := e.Summary.Severities
		h.findingsTotal.WithLabelValues("critical").Add(float64(sev.Critical))
		h.findingsTotal.WithLabelValues("high").Add(float64(sev.High))
		h.findingsTotal.WithLabelValues("medium").Add(float64(sev.Medium))
		h.findingsTotal.WithLabelValues("low").Add(float64(sev.Low))
		h.findingsTotal.WithLabelValues("info").Add(float64(sev.Info))

	case events.CompleteEvent:
		h.runDuration.WithLabelValues(e.RunID()).Set(e.DurationMS / 1000.0)
	}
	return nil
}

// Close shuts down the metrics server.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), duration.Shutdown)
	defer cancel()
	return h.server.Shutdown(ctx)
}
