// Package inspect implements the hosted inspection API analyzer. Tools
// are posted to a remote scanning service which replies with a verdict
// document in the loose report schema.
package inspect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/duration"
	"github.com/mcpsentry/mcpsentry/pkg/httpclient"
	"github.com/mcpsentry/mcpsentry/pkg/jsonutil"
	"github.com/mcpsentry/mcpsentry/pkg/retry"
)

// Name is the analyzer's registration name.
const Name = "inspect"

const defaultBaseURL = "https://api.mcpsentry.dev"

// Config controls the inspection client.
type Config struct {
	// APIKey authenticates to the inspection service. Required.
	APIKey string
	// BaseURL overrides the service endpoint.
	BaseURL string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// Retry controls backoff for transient failures.
	Retry retry.Config
}

// DefaultConfig returns the hosted service defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: defaultBaseURL,
		Timeout: duration.AnalyzerHTTP,
		Retry:   retry.DefaultConfig(),
	}
}

// Analyzer posts tools to the inspection service.
type Analyzer struct {
	cfg     Config
	client  *http.Client
	scanURL string
}

// New builds the analyzer, validating credential and endpoint up front.
func New(cfg Config) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, analyzer.ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("inspect: invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = duration.AnalyzerHTTP
	}
	return &Analyzer{
		cfg: cfg,
		client: httpclient.New(httpclient.Config{
			Timeout:     cfg.Timeout,
			BearerToken: cfg.APIKey,
		}),
		scanURL: u.JoinPath("v1", "inspect").String(),
	}, nil
}

// Name implements analyzer.Analyzer.
func (a *Analyzer) Name() string { return Name }

// Analyze submits the tool for inspection, retrying transient failures.
func (a *Analyzer) Analyze(ctx context.Context, tool analyzer.Tool) (*analyzer.RawReport, error) {
	var report *analyzer.RawReport
	err := retry.Do(ctx, a.cfg.Retry, func() error {
		r, err := a.submit(ctx, tool)
		if err != nil {
			return err
		}
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (a *Analyzer) submit(ctx context.Context, tool analyzer.Tool) (*analyzer.RawReport, error) {
	body, err := jsonutil.Marshal(tool)
	if err != nil {
		return nil, retry.Stop(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.scanURL, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Stop(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analyzer.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, retry.Stop(fmt.Errorf("%w: status %d", analyzer.ErrAPIRejected, resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", analyzer.ErrBackendUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Stop(fmt.Errorf("%w: status %d", analyzer.ErrMalformedResponse, resp.StatusCode))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analyzer.ErrBackendUnavailable, err)
	}

	var report analyzer.RawReport
	if err := jsonutil.Unmarshal(payload, &report); err != nil {
		return nil, retry.Stop(fmt.Errorf("%w: %v", analyzer.ErrMalformedResponse, err))
	}
	return &report, nil
}
