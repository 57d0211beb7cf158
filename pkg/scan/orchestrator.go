package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcpsentry/mcpsentry/pkg/aggregate"
	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/duration"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
	"github.com/mcpsentry/mcpsentry/pkg/mcpconfig"
	"github.com/mcpsentry/mcpsentry/pkg/normalize"
	"github.com/mcpsentry/mcpsentry/pkg/output/dispatcher"
	"github.com/mcpsentry/mcpsentry/pkg/output/events"
)

// Options configures a scan run.
type Options struct {
	// Concurrency bounds parallel server scans. Values <= 1 scan
	// sequentially in configuration order.
	Concurrency int

	// ServerTimeout bounds one server's whole scan. Zero uses the
	// default.
	ServerTimeout time.Duration

	// Logger receives orchestration logs. Nil uses slog.Default.
	Logger *slog.Logger

	// Events receives scan events. Nil drops them.
	Events *dispatcher.Dispatcher

	// Dial overrides session establishment for the built-in strategies.
	// Tests use this with in-memory transports.
	Dial Dialer
}

// Orchestrator drives a scan run: it dispatches each configured server
// to the strategy matching its transport kind, isolates per-server
// failures, and folds terminal results into the summary exactly once.
type Orchestrator struct {
	strategies map[mcpconfig.Kind]Strategy
	engine     *analyzer.Engine
	opts       Options
	logger     *slog.Logger
}

// New builds an orchestrator with the stdio and HTTP strategies
// registered.
func New(engine *analyzer.Engine, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ServerTimeout <= 0 {
		opts.ServerTimeout = duration.ServerScan
	}

	norm := normalize.New(logger)
	o := &Orchestrator{
		strategies: make(map[mcpconfig.Kind]Strategy),
		engine:     engine,
		opts:       opts,
		logger:     logger,
	}
	o.Register(NewStdioStrategy(engine, norm, opts.Dial))
	o.Register(NewHTTPStrategy(engine, norm, opts.Dial))
	return o
}

// Register adds a strategy, replacing any registered for the same kind.
func (o *Orchestrator) Register(s Strategy) {
	o.strategies[s.Kind()] = s
}

// Result is the outcome of one run. Servers appear in configuration
// document order regardless of scan interleaving.
type Result struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Servers  []finding.ServerScanResult
	Summary  aggregate.Summary
}

// Run scans every configured server. It always returns a Result, even
// when every server failed: per-server errors are isolated into failed
// results and never abort sibling scans. When ctx is cancelled mid-run,
// in-flight scans stop and the partial summary stays consistent; servers
// never reached are recorded as pending.
func (o *Orchestrator) Run(ctx context.Context, cfg *mcpconfig.Config) *Result {
	res := &Result{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Servers: make([]finding.ServerScanResult, len(cfg.Servers)),
	}

	o.opts.Events.Dispatch(ctx, events.StartEvent{
		BaseEvent:   events.NewBase(events.EventTypeStart, res.RunID),
		ConfigFile:  cfg.Path,
		Servers:     len(cfg.Servers),
		Analyzers:   o.engine.Names(),
		Concurrency: o.opts.Concurrency,
	})

	// The fold is serialized: the summary is the only shared mutable
	// state across concurrent server scans, and each terminal result is
	// folded exactly once.
	var mu sync.Mutex
	scanOne := func(i int, srv mcpconfig.Server) {
		r := o.scanServer(ctx, srv)
		mu.Lock()
		res.Servers[i] = r
		res.Summary = aggregate.Fold(res.Summary, r)
		mu.Unlock()

		o.opts.Events.Dispatch(ctx, events.ServerResultEvent{
			BaseEvent: events.NewBase(events.EventTypeServerResult, res.RunID),
			Server:    r.Name,
			Transport: r.Transport,
			Status:    r.Status,
			Tools:     len(r.Tools),
			Findings:  countFindings(r),
			Error:     r.Error,
		})
	}

	if o.opts.Concurrency <= 1 {
		o.runSequential(ctx, cfg.Servers, res, scanOne)
	} else {
		o.runConcurrent(ctx, cfg.Servers, res, scanOne)
	}

	res.Duration = time.Since(res.Started)

	o.opts.Events.Dispatch(ctx, events.SummaryEvent{
		BaseEvent: events.NewBase(events.EventTypeSummary, res.RunID),
		Summary:   res.Summary,
		Blocking:  res.Summary.HasBlockingFindings(),
	})
	return res
}

func (o *Orchestrator) runSequential(ctx context.Context, servers []mcpconfig.Server, res *Result, scanOne func(int, mcpconfig.Server)) {
	for i, srv := range servers {
		if ctx.Err() != nil {
			o.markUnscanned(ctx, res, servers, i)
			return
		}
		scanOne(i, srv)
	}
}

func (o *Orchestrator) runConcurrent(ctx context.Context, servers []mcpconfig.Server, res *Result, scanOne func(int, mcpconfig.Server)) {
	sem := make(chan struct{}, o.opts.Concurrency)
	var wg sync.WaitGroup

	next := len(servers)
	for i, srv := range servers {
		if ctx.Err() != nil {
			next = i
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, srv mcpconfig.Server) {
			defer wg.Done()
			defer func() { <-sem }()
			scanOne(i, srv)
		}(i, srv)
	}
	wg.Wait()

	if next < len(servers) {
		o.markUnscanned(ctx, res, servers, next)
	}
}

// markUnscanned records servers the run never reached after cancellation.
// Pending is not terminal, so they contribute only to the server total.
func (o *Orchestrator) markUnscanned(ctx context.Context, res *Result, servers []mcpconfig.Server, from int) {
	for i := from; i < len(servers); i++ {
		r := finding.ServerScanResult{
			Name:      servers[i].Name,
			Transport: transportLabel(servers[i]),
			Status:    finding.StatusPending,
			Error:     "scan cancelled",
		}
		res.Servers[i] = r
		res.Summary = aggregate.Fold(res.Summary, r)
		o.opts.Events.Dispatch(ctx, events.ServerResultEvent{
			BaseEvent: events.NewBase(events.EventTypeServerResult, res.RunID),
			Server:    r.Name,
			Transport: r.Transport,
			Status:    r.Status,
			Error:     r.Error,
		})
	}
}

// scanServer is the per-server failure boundary: any error or panic from
// a strategy is converted into a failed result so no server's scan can
// terminate the scan of its siblings.
func (o *Orchestrator) scanServer(ctx context.Context, srv mcpconfig.Server) (result finding.ServerScanResult) {
	result = finding.ServerScanResult{
		Name:      srv.Name,
		Transport: transportLabel(srv),
		Status:    finding.StatusPending,
	}

	strategy, ok := o.strategies[srv.Kind]
	if !ok {
		result.Status = finding.StatusSkipped
		result.Error = fmt.Sprintf("unsupported transport type %q", srv.DeclaredType)
		o.logger.Warn("skipping server", "server", srv.Name, "type", srv.DeclaredType)
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = finding.StatusFailed
			result.Tools = nil
			result.Error = fmt.Sprintf("panic: %v", r)
			o.logger.Error("server scan panicked", "server", srv.Name, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, o.opts.ServerTimeout)
	defer cancel()

	o.logger.Debug("scanning server", "server", srv.Name, "kind", srv.Kind)
	tools, err := strategy.Scan(ctx, srv)
	if err != nil {
		result.Status = finding.StatusFailed
		result.Error = err.Error()
		return result
	}

	result.Status = finding.StatusCompleted
	result.Tools = tools
	return result
}

func transportLabel(srv mcpconfig.Server) string {
	if srv.DeclaredType != "" {
		return srv.DeclaredType
	}
	return string(srv.Kind)
}

func countFindings(r finding.ServerScanResult) int {
	n := 0
	for _, t := range r.Tools {
		n += len(t.Findings)
	}
	return n
}
