// Package mcpclient establishes MCP protocol sessions against configured
// tool-providing servers and retrieves their tool listings. It wraps the
// official MCP Go SDK so the rest of the scanner works with plain tool
// descriptors instead of SDK types.
package mcpclient

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/duration"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
	"github.com/mcpsentry/mcpsentry/pkg/httpclient"
	"github.com/mcpsentry/mcpsentry/pkg/jsonutil"
	"github.com/mcpsentry/mcpsentry/pkg/mcpconfig"
)

const (
	clientName    = "mcp-sentry"
	clientVersion = "1.0.0"
)

// Client builds MCP sessions. The zero value is usable.
type Client struct {
	// ConnectTimeout bounds session establishment. Zero uses the default.
	ConnectTimeout time.Duration
}

// Session is an established MCP session. Close releases the underlying
// transport; for stdio servers that terminates the subprocess.
type Session struct {
	session *mcp.ClientSession
}

// Connect builds the transport described by srv and establishes a
// session over it. Connection failures map to finding.ErrServerUnreachable
// and credential rejections to finding.ErrAuthRejected.
func (c *Client) Connect(ctx context.Context, srv mcpconfig.Server) (*Session, error) {
	transport, err := buildTransport(srv)
	if err != nil {
		return nil, err
	}
	return c.ConnectTransport(ctx, transport)
}

// ConnectTransport establishes a session over a caller-supplied
// transport. Tests use this with in-memory transports.
func (c *Client) ConnectTransport(ctx context.Context, transport mcp.Transport) (*Session, error) {
	timeout := c.ConnectTimeout
	if timeout <= 0 {
		timeout = duration.Connect
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, classifyConnectError(err)
	}
	return &Session{session: session}, nil
}

// ListTools retrieves the server's advertised tools as analyzer inputs.
// Tool input schemas are serialized to JSON so analyzers can match
// against them without depending on SDK types.
func (s *Session) ListTools(ctx context.Context) ([]analyzer.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, duration.ListTools)
	defer cancel()

	result, err := s.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("%w: list tools: %v", finding.ErrProtocol, err)
	}

	tools := make([]analyzer.Tool, 0, len(result.Tools))
	for _, t := range result.Tools {
		tool := analyzer.Tool{
			Name:        t.Name,
			Description: t.Description,
		}
		if t.InputSchema != nil {
			if schema, err := jsonutil.Marshal(t.InputSchema); err == nil {
				tool.Schema = schema
			}
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// Close shuts down the session and its transport.
func (s *Session) Close() error {
	return s.session.Close()
}

func buildTransport(srv mcpconfig.Server) (mcp.Transport, error) {
	switch srv.Kind {
	case mcpconfig.KindStdio:
		if srv.Command == "" {
			return nil, fmt.Errorf("%w: server %q has no command", finding.ErrServerUnreachable, srv.Name)
		}
		cmd := exec.Command(srv.Command, srv.Args...)
		if len(srv.Env) > 0 {
			cmd.Env = os.Environ()
			for k, v := range srv.Env {
				cmd.Env = append(cmd.Env, k+"="+v)
			}
		}
		return &mcp.CommandTransport{Command: cmd}, nil

	case mcpconfig.KindHTTP:
		if srv.URL == "" {
			return nil, fmt.Errorf("%w: server %q has no url", finding.ErrServerUnreachable, srv.Name)
		}
		cfg := httpclient.Config{Timeout: duration.ServerScan}
		if token, ok := srv.BearerToken(); ok {
			cfg.BearerToken = token
		}
		return &mcp.StreamableClientTransport{
			Endpoint:   srv.URL,
			HTTPClient: httpclient.New(cfg),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", finding.ErrUnsupportedTransport, srv.DeclaredType)
	}
}

// classifyConnectError maps SDK connection failures onto the scanner's
// sentinel errors. The SDK does not expose typed HTTP status errors, so
// auth rejection is recognized from the message text.
func classifyConnectError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "Unauthorized") || strings.Contains(msg, "Forbidden") {
		return fmt.Errorf("%w: %v", finding.ErrAuthRejected, err)
	}
	return fmt.Errorf("%w: %v", finding.ErrServerUnreachable, err)
}
