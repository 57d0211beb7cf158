package ui

import (
	"os"
	"sync"

	"golang.org/x/term"
)

var (
	ttyOnce sync.Once
	ttyOK   bool
)

// InteractiveTerminal reports whether stdout is a terminal capable of
// styled output. Returns false when output is piped, redirected, or TERM
// is "dumb".
func InteractiveTerminal() bool {
	ttyOnce.Do(func() {
		if os.Getenv("TERM") == "dumb" {
			return
		}
		ttyOK = term.IsTerminal(int(os.Stdout.Fd()))
	})
	return ttyOK
}

// Styled reports whether rendered output should carry color and
// decoration. Piped output and -no-color both force plain text.
func Styled() bool {
	return InteractiveTerminal() && !IsNoColor()
}
