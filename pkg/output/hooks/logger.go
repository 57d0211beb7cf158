// Package hooks provides the built-in event consumers: structured
// logging, Prometheus metrics and OpenTelemetry traces.
package hooks

import (
	"context"
	"log/slog"

	"github.com/mcpsentry/mcpsentry/pkg/output/dispatcher"
	"github.com/mcpsentry/mcpsentry/pkg/output/events"
)

// orDefault returns l if non-nil, otherwise slog.Default().
func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// Compile-time interface check.
var _ dispatcher.Hook = (*LoggerHook)(nil)

// LoggerHook writes scan events to a structured logger.
type LoggerHook struct {
	logger *slog.Logger
}

// NewLoggerHook creates a logging hook. A nil logger uses slog.Default.
func NewLoggerHook(logger *slog.Logger) *LoggerHook {
	return &LoggerHook{logger: orDefault(logger)}
}

// EventTypes returns nil: the logger receives every event.
func (h *LoggerHook) EventTypes() []events.EventType { return nil }

// OnEvent logs the event at a level matching its significance.
func (h *LoggerHook) OnEvent(_ context.Context, event events.Event) error {
	log := h.logger.With("run_id", event.RunID())

	switch e := event.(type) {
	case events.StartEvent:
		log.Info("scan started",
			"config", e.ConfigFile,
			"servers", e.Servers,
			"analyzers", e.Analyzers,
			"concurrency", e.Concurrency)

	case events.ServerResultEvent:
		attrs := []any{
			"server", e.Server,
			"transport", e.Transport,
			"status", e.Status,
			"tools", e.Tools,
			"findings", e.Findings,
		}
		switch e.Status {
		case "failed":
			log.Error("server scan failed", append(attrs, "error", e.Error)...)
		case "skipped":
			log.Warn("server skipped", append(attrs, "error", e.Error)...)
		default:
			log.Info("server scanned", attrs...)
		}

	case events.SummaryEvent:
		log.Info("scan summary",
			"servers_total", e.Summary.TotalServers,
			"servers_scanned", e.Summary.ScannedServers,
			"servers_failed", e.Summary.FailedServers,
			"servers_skipped", e.Summary.SkippedServers,
			"tools_total", e.Summary.TotalTools,
			"tools_unsafe", e.Summary.UnsafeTools,
			"findings_total", e.Summary.TotalFindings,
			"blocking", e.Blocking)

	case events.CompleteEvent:
		log.Info("scan complete",
			"output", e.OutputPath,
			"duration_ms", e.DurationMS,
			"exit_code", e.ExitCode,
			"exit_reason", e.ExitReason)
	}
	return nil
}
