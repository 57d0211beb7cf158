// Package ui renders the console summary of a scan run. Output is
// severity-colored on capable terminals and degrades to plain text when
// piped or when color is disabled.
package ui

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Version information - can be overridden at build time via ldflags:
// go build -ldflags "-X github.com/mcpsentry/mcpsentry/pkg/ui.Version=1.0.0"
var (
	Version   = "1.0.0"
	BuildDate = "2026-08-30"
	Commit    = "dev"
)

// UserAgent returns the standard User-Agent string for outbound requests.
func UserAgent() string {
	return fmt.Sprintf("mcp-sentry/%s", Version)
}

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses the rendered
// summary; the JSON report is still written).
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled.
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled.
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}
