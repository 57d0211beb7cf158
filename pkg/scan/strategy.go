// Package scan contains the run's control loop: transport strategies
// that fetch a server's tool catalog and analyze it, and the orchestrator
// that dispatches servers to strategies, isolates per-server failures and
// folds results into the run summary.
package scan

import (
	"context"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
	"github.com/mcpsentry/mcpsentry/pkg/mcpclient"
	"github.com/mcpsentry/mcpsentry/pkg/mcpconfig"
	"github.com/mcpsentry/mcpsentry/pkg/normalize"
)

// Session is the slice of an MCP session the strategies consume.
type Session interface {
	ListTools(ctx context.Context) ([]analyzer.Tool, error)
	Close() error
}

// Dialer establishes a session for a server. Tests substitute dialers
// backed by in-memory transports.
type Dialer func(ctx context.Context, srv mcpconfig.Server) (Session, error)

// DefaultDialer connects through the real MCP client.
func DefaultDialer() Dialer {
	var client mcpclient.Client
	return func(ctx context.Context, srv mcpconfig.Server) (Session, error) {
		return client.Connect(ctx, srv)
	}
}

// Strategy scans one server of its transport kind, returning one result
// per advertised tool. A scan either fully completes or fully fails;
// strategies never return partial tool lists alongside an error.
// Adding a transport means adding a Strategy, not editing the
// orchestrator.
type Strategy interface {
	Kind() mcpconfig.Kind
	Scan(ctx context.Context, srv mcpconfig.Server) ([]finding.ToolScanResult, error)
}

// scanSession enumerates the session's tools and runs every analyzer on
// each. Tool enumeration completes before any analysis begins. An
// analyzer failure aborts the whole server scan.
func scanSession(ctx context.Context, session Session, engine *analyzer.Engine, norm *normalize.Normalizer) ([]finding.ToolScanResult, error) {
	tools, err := session.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]finding.ToolScanResult, 0, len(tools))
	for _, tool := range tools {
		reports, err := engine.AnalyzeTool(ctx, tool)
		if err != nil {
			return nil, err
		}
		results = append(results, norm.Tool(tool, reports))
	}
	return results, nil
}
