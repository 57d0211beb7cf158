// Package exitcode provides semantic exit codes for CI/CD integration.
// Exit codes communicate scan outcomes to automation pipelines.
//
// Exit codes:
//   - 0: Success (no blocking findings)
//   - 1: Blocking findings (critical or high severity)
//   - 2: Too many failed servers
//   - 3: Invalid configuration
//   - 5: Scan interrupted
package exitcode

import (
	"fmt"
	"sync"
)

// Code represents a semantic exit code for CI/CD pipelines.
type Code int

const (
	// Success indicates the scan completed with no blocking findings.
	Success Code = 0
	// Findings indicates critical or high severity findings were recorded.
	Findings Code = 1
	// Errors indicates too many servers failed to scan.
	Errors Code = 2
	// Configuration indicates invalid configuration was provided.
	Configuration Code = 3
	// Interrupted indicates the scan was interrupted (e.g., SIGINT).
	Interrupted Code = 5
)

// codeStrings maps exit codes to short machine-readable names.
var codeStrings = map[Code]string{
	Success:       "success",
	Findings:      "blocking_findings",
	Errors:        "too_many_failures",
	Configuration: "invalid_configuration",
	Interrupted:   "scan_interrupted",
}

// codeDescriptions provides detailed descriptions for exit codes.
var codeDescriptions = map[Code]string{
	Success:       "Scan completed with no critical or high severity findings",
	Findings:      "Critical or high severity findings were recorded",
	Errors:        "Scan terminated with too many failed servers",
	Configuration: "Invalid configuration provided",
	Interrupted:   "Scan was interrupted by user or signal",
}

// String returns the short name of the exit code.
func (c Code) String() string {
	if s, ok := codeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown_%d", int(c))
}

// Config holds configuration for the exit code manager.
type Config struct {
	// ExitOnFailures determines whether failed servers can fail the run.
	ExitOnFailures bool

	// FailureThreshold is the number of failed servers that triggers an
	// error exit. Default: 10.
	FailureThreshold int
}

// DefaultConfig returns the default exit code configuration.
func DefaultConfig() Config {
	return Config{
		ExitOnFailures:   true,
		FailureThreshold: 10,
	}
}

// Manager tracks scan outcomes and determines the appropriate exit code.
// Safe for concurrent use.
type Manager struct {
	cfg Config

	mu        sync.Mutex
	blocking  int
	failures  int
	configErr bool
	interrupt bool
}

// New creates an exit code manager with the given configuration.
func New(cfg Config) *Manager {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 10
	}
	return &Manager{cfg: cfg}
}

// RecordBlocking counts critical or high severity findings.
func (m *Manager) RecordBlocking(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocking += n
}

// RecordFailedServer increments the failed server counter.
func (m *Manager) RecordFailedServer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

// SetConfigError marks that a configuration error occurred.
func (m *Manager) SetConfigError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configErr = true
}

// SetInterrupted marks that the scan was interrupted.
func (m *Manager) SetInterrupted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interrupt = true
}

// ExitCode returns the appropriate exit code based on recorded outcomes.
// The returned string provides a human-readable reason for the code.
//
// Priority order (highest to lowest):
//  1. Interrupted
//  2. Configuration error
//  3. Too many failed servers (if ExitOnFailures enabled)
//  4. Blocking findings
//  5. Success
func (m *Manager) ExitCode() (Code, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interrupt {
		return Interrupted, codeDescriptions[Interrupted]
	}
	if m.configErr {
		return Configuration, codeDescriptions[Configuration]
	}
	if m.cfg.ExitOnFailures && m.failures >= m.cfg.FailureThreshold {
		return Errors, fmt.Sprintf("%s (threshold: %d, actual: %d)",
			codeDescriptions[Errors], m.cfg.FailureThreshold, m.failures)
	}
	if m.blocking > 0 {
		return Findings, fmt.Sprintf("%s (count: %d)",
			codeDescriptions[Findings], m.blocking)
	}
	return Success, codeDescriptions[Success]
}
