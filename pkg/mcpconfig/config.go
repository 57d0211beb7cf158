// Package mcpconfig loads the declarative MCP server registry consumed by
// the scan orchestrator. The document format is the `.mcp.json` shape shared
// by Cursor, Windsurf and Claude: a top-level "mcpServers" object mapping
// server name to transport configuration.
//
// Servers are returned in document order; the orchestrator scans them in
// that order. Parsing walks the object with a token decoder instead of a
// Go map so the order survives.
package mcpconfig

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/mcpsentry/mcpsentry/pkg/jsonutil"
)

// Kind is the transport mechanism by which a tool-providing server is
// reached. Dispatch happens on this tag; adding a transport means adding a
// Kind and a strategy, not editing the orchestrator.
type Kind string

const (
	// KindStdio reaches the server by spawning it as a subprocess and
	// speaking MCP over its standard input/output.
	KindStdio Kind = "stdio"

	// KindHTTP reaches the server over a streamable HTTP endpoint,
	// optionally bearer-authenticated.
	KindHTTP Kind = "http"

	// KindUnknown marks a declared type no strategy handles. The server
	// is recorded as skipped, never treated as a configuration error.
	KindUnknown Kind = "unknown"
)

// Server describes one configured MCP server. Immutable once loaded; the
// orchestrator owns the slice for the duration of a run.
type Server struct {
	Name string
	Kind Kind

	// DeclaredType is the raw `type` value from the document, kept for
	// reporting on skipped servers.
	DeclaredType string

	// Stdio transport parameters.
	Command string
	Args    []string
	Env     map[string]string

	// HTTP transport parameters.
	URL     string
	Headers map[string]string
}

// BearerToken extracts a bearer credential from the server's header map.
// Only the `Authorization: Bearer <token>` form is recognized; any other
// scheme is treated as absent authentication.
func (s *Server) BearerToken() (string, bool) {
	auth, ok := s.Headers["Authorization"]
	if !ok {
		return "", false
	}
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Config is a loaded server registry.
type Config struct {
	// Path is the document the registry was loaded from.
	Path string

	// Servers in document order.
	Servers []Server
}

type rawServer struct {
	Type    string            `json:"type,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Load reads and parses the registry document at path.
// Returns ErrNotFound when the path does not exist and ErrMalformed when
// the document is not well-formed JSON or lacks the "mcpServers" key.
// Configuration errors are fatal to the run; no partial config is usable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	servers, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &Config{Path: path, Servers: servers}, nil
}

// Parse parses a registry document from raw bytes, preserving the
// document order of the "mcpServers" object.
func Parse(data []byte) ([]Server, error) {
	dec := jsonutil.NewDecoder(bytes.NewReader(data))

	tok, err := dec.ReadToken()
	if err != nil || tok.Kind() != '{' {
		return nil, fmt.Errorf("%w: document is not a JSON object", ErrMalformed)
	}

	var servers []Server
	found := false
	for {
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if tok.Kind() == '}' {
			break
		}
		if tok.String() != "mcpServers" {
			if err := dec.SkipValue(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			continue
		}
		found = true

		tok, err = dec.ReadToken()
		if err != nil || tok.Kind() != '{' {
			return nil, fmt.Errorf("%w: mcpServers is not an object", ErrMalformed)
		}
		for {
			tok, err := dec.ReadToken()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			if tok.Kind() == '}' {
				break
			}
			name := tok.String()
			var raw rawServer
			if err := jsonutil.UnmarshalNext(dec, &raw); err != nil {
				return nil, fmt.Errorf("%w: server %q: %v", ErrMalformed, name, err)
			}
			servers = append(servers, raw.toServer(name))
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: missing %q key", ErrMalformed, "mcpServers")
	}
	return servers, nil
}

func (r rawServer) toServer(name string) Server {
	return Server{
		Name:         name,
		Kind:         classify(r.Type),
		DeclaredType: r.Type,
		Command:      r.Command,
		Args:         r.Args,
		Env:          r.Env,
		URL:          r.URL,
		Headers:      r.Headers,
	}
}

// classify maps a declared transport type to a Kind. Unrecognized values
// (including an absent type) classify as KindUnknown so the orchestrator
// records the server as skipped instead of rejecting the whole document.
func classify(declared string) Kind {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "stdio":
		return KindStdio
	case "http":
		return KindHTTP
	default:
		return KindUnknown
	}
}
