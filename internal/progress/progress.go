// Package progress shows activity on stderr while genia waits on a
// generation backend.
package progress

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// IsTerminalFunc is the function used to check if a file descriptor is a terminal.
// It can be overridden for testing.
var IsTerminalFunc = term.IsTerminal

// ShouldShowProgress returns true if progress should be animated.
// Progress is drawn on stderr, so that is the stream checked.
func ShouldShowProgress() bool {
	return IsTerminalFunc(int(os.Stderr.Fd()))
}

// formatDuration formats elapsed time for display
func formatDuration(d time.Duration) string {
	seconds := d.Seconds()
	if seconds < 60 {
		return fmt.Sprintf("%.0fs", seconds)
	}
	minutes := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%dm%02ds", minutes, secs)
}
