package scan

import (
	"context"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
	"github.com/mcpsentry/mcpsentry/pkg/mcpconfig"
	"github.com/mcpsentry/mcpsentry/pkg/normalize"
)

// StdioStrategy scans servers spawned as local subprocesses speaking MCP
// over their standard input/output. The subprocess is terminated before
// Scan returns, on every exit path.
type StdioStrategy struct {
	engine *analyzer.Engine
	norm   *normalize.Normalizer
	dial   Dialer
}

// NewStdioStrategy builds the strategy. A nil dialer uses the real MCP
// client.
func NewStdioStrategy(engine *analyzer.Engine, norm *normalize.Normalizer, dial Dialer) *StdioStrategy {
	if dial == nil {
		dial = DefaultDialer()
	}
	return &StdioStrategy{engine: engine, norm: norm, dial: dial}
}

// Kind implements Strategy.
func (s *StdioStrategy) Kind() mcpconfig.Kind { return mcpconfig.KindStdio }

// Scan spawns the server, enumerates its tools and analyzes each one.
func (s *StdioStrategy) Scan(ctx context.Context, srv mcpconfig.Server) ([]finding.ToolScanResult, error) {
	session, err := s.dial(ctx, srv)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return scanSession(ctx, session, s.engine, s.norm)
}
