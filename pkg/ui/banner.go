package ui

import (
	"fmt"
	"os"
)

const miniBanner = "mcp-sentry v%s"

// PrintBanner writes the one-line banner to stderr.
func PrintBanner() {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, TitleStyle.Render(fmt.Sprintf(miniBanner, Version)))
	fmt.Fprintln(os.Stderr)
}

// PrintConfigLine writes one "key: value" line of run configuration.
func PrintConfigLine(key, value string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s\n",
		MutedStyle.Render(key+":"),
		value,
	)
}

// PrintError writes an error line to stderr. Not silenced: errors are
// reported even in silent mode.
func PrintError(message string) {
	fmt.Fprintln(os.Stderr, FailedStyle.Render("  [X] "+message))
}

// PrintWarning writes a warning line to stderr.
func PrintWarning(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, SkippedStyle.Render("  [!] "+message))
}

// PrintSuccess writes a success line to stderr.
func PrintSuccess(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, SafeStyle.Render("  [+] "+message))
}
