package scan

import (
	"context"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
	"github.com/mcpsentry/mcpsentry/pkg/mcpconfig"
	"github.com/mcpsentry/mcpsentry/pkg/normalize"
)

// HTTPStrategy scans servers reachable over a streamable HTTP endpoint.
// A bearer credential is presented when the server's header map declares
// one in the `Authorization: Bearer <token>` form; any other scheme is
// treated as absent authentication.
type HTTPStrategy struct {
	engine *analyzer.Engine
	norm   *normalize.Normalizer
	dial   Dialer
}

// NewHTTPStrategy builds the strategy. A nil dialer uses the real MCP
// client.
func NewHTTPStrategy(engine *analyzer.Engine, norm *normalize.Normalizer, dial Dialer) *HTTPStrategy {
	if dial == nil {
		dial = DefaultDialer()
	}
	return &HTTPStrategy{engine: engine, norm: norm, dial: dial}
}

// Kind implements Strategy.
func (s *HTTPStrategy) Kind() mcpconfig.Kind { return mcpconfig.KindHTTP }

// Scan connects to the endpoint, enumerates its tools and analyzes each
// one.
func (s *HTTPStrategy) Scan(ctx context.Context, srv mcpconfig.Server) ([]finding.ToolScanResult, error) {
	session, err := s.dial(ctx, srv)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return scanSession(ctx, session, s.engine, s.norm)
}
