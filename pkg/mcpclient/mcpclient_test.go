package mcpclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpsentry/mcpsentry/pkg/finding"
	"github.com/mcpsentry/mcpsentry/pkg/mcpconfig"
)

// newTestTransport runs an in-process MCP server advertising the given
// tools and returns the client side of the transport pair.
func newTestTransport(t *testing.T, tools ...*mcp.Tool) mcp.Transport {
	t.Helper()

	srv := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "0.0.1"}, nil)
	for _, tool := range tools {
		srv.AddTool(tool, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{}, nil
		})
	}

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	go func() {
		// Client-side assertions surface any real failures.
		_ = srv.Run(context.Background(), serverTransport)
	}()
	return clientTransport
}

func TestConnectTransportAndListTools(t *testing.T) {
	transport := newTestTransport(t,
		&mcp.Tool{
			Name:        "get_weather",
			Description: "Returns the weather.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"city": map[string]any{"type": "string"},
				},
			},
		},
		&mcp.Tool{
			Name:        "run_shell",
			Description: "Executes shell commands.",
			InputSchema: map[string]any{"type": "object"},
		},
	)

	var c Client
	session, err := c.ConnectTransport(context.Background(), transport)
	if err != nil {
		t.Fatalf("ConnectTransport: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("got %d tools, want 2", len(tools))
	}

	byName := map[string]bool{}
	for _, tool := range tools {
		byName[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("tool %q has empty description", tool.Name)
		}
		if len(tool.Schema) == 0 {
			t.Errorf("tool %q has no serialized schema", tool.Name)
		}
	}
	for _, want := range []string{"get_weather", "run_shell"} {
		if !byName[want] {
			t.Errorf("missing tool %q", want)
		}
	}
}

func TestConnectStdioNonexistentExecutable(t *testing.T) {
	t.Parallel()

	var c Client
	_, err := c.Connect(context.Background(), mcpconfig.Server{
		Name:    "ghost",
		Kind:    mcpconfig.KindStdio,
		Command: "/nonexistent/mcp-server-binary",
	})
	if !errors.Is(err, finding.ErrServerUnreachable) {
		t.Fatalf("err = %v, want ErrServerUnreachable", err)
	}
}

func TestConnectStdioMissingCommand(t *testing.T) {
	t.Parallel()

	var c Client
	_, err := c.Connect(context.Background(), mcpconfig.Server{
		Name: "empty",
		Kind: mcpconfig.KindStdio,
	})
	if !errors.Is(err, finding.ErrServerUnreachable) {
		t.Fatalf("err = %v, want ErrServerUnreachable", err)
	}
}

func TestConnectUnknownKind(t *testing.T) {
	t.Parallel()

	var c Client
	_, err := c.Connect(context.Background(), mcpconfig.Server{
		Name:         "ws",
		Kind:         mcpconfig.KindUnknown,
		DeclaredType: "websocket",
	})
	if !errors.Is(err, finding.ErrUnsupportedTransport) {
		t.Fatalf("err = %v, want ErrUnsupportedTransport", err)
	}
}

func TestConnectHTTPMissingURL(t *testing.T) {
	t.Parallel()

	var c Client
	_, err := c.Connect(context.Background(), mcpconfig.Server{
		Name: "api",
		Kind: mcpconfig.KindHTTP,
	})
	if !errors.Is(err, finding.ErrServerUnreachable) {
		t.Fatalf("err = %v, want ErrServerUnreachable", err)
	}
}

func TestClassifyConnectError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unauthorized status", fmt.Errorf("unexpected status: 401 Unauthorized"), finding.ErrAuthRejected},
		{"forbidden status", fmt.Errorf("request failed: 403 Forbidden"), finding.ErrAuthRejected},
		{"refused", fmt.Errorf("dial tcp: connection refused"), finding.ErrServerUnreachable},
		{"timeout", fmt.Errorf("context deadline exceeded"), finding.ErrServerUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyConnectError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("classifyConnectError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
