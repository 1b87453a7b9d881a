package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames defines the animation characters for the spinner.
var spinnerFrames = []string{"|", "/", "-", "\\"}

// spinnerInterval is the time between spinner frame updates.
const spinnerInterval = 100 * time.Millisecond

// lineWidth is the width cleared when the spinner line is redrawn.
const lineWidth = 80

// Spinner displays an animated spinner with a message and the elapsed time
// while a request is in flight. In non-TTY environments, it prints each
// message once without animation.
type Spinner struct {
	mu      sync.Mutex
	output  io.Writer
	message string
	started time.Time
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool
	isTTY   bool
}

// NewSpinner creates a new spinner that writes to the given output.
// If output is nil, os.Stderr is used.
func NewSpinner(output io.Writer) *Spinner {
	if output == nil {
		output = os.Stderr
	}
	return &Spinner{
		output: output,
		done:   make(chan struct{}),
		isTTY:  ShouldShowProgress(),
	}
}

// Start begins the spinner animation with the given message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	s.message = message
	s.started = time.Now()
	s.stopped = false
	s.mu.Unlock()

	if !s.isTTY {
		fmt.Fprintf(s.output, "%s\n", message)
		return
	}

	s.wg.Add(1)
	go s.animate()
}

// SetMessage updates the spinner message while it's running. Without a
// terminal the new message is printed on its own line.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.message == message {
		return
	}
	s.message = message
	if !s.isTTY {
		fmt.Fprintf(s.output, "%s\n", message)
	}
}

// Stop halts the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if !s.halt() {
		return
	}
	if s.isTTY {
		fmt.Fprintf(s.output, "\r%s\r", strings.Repeat(" ", lineWidth))
	}
}

// StopWithMessage halts the spinner and prints a final message followed
// by the elapsed time.
func (s *Spinner) StopWithMessage(message string) {
	if !s.halt() {
		return
	}

	s.mu.Lock()
	elapsed := formatDuration(time.Since(s.started))
	s.mu.Unlock()

	if s.isTTY {
		fmt.Fprintf(s.output, "\r%s\r%s (%s)\n", strings.Repeat(" ", lineWidth), message, elapsed)
	} else {
		fmt.Fprintf(s.output, "%s (%s)\n", message, elapsed)
	}
}

// halt stops the animation goroutine and waits for it. It reports false
// when the spinner was already stopped.
func (s *Spinner) halt() bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
	return true
}

// animate runs the spinner animation loop.
func (s *Spinner) animate() {
	defer s.wg.Done()

	frame := 0
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			elapsed := formatDuration(time.Since(s.started))
			s.mu.Unlock()

			char := spinnerFrames[frame%len(spinnerFrames)]
			line := fmt.Sprintf("\r%s %s %s", char, msg, elapsed)
			// Pad to clear previous content
			if len(line) < lineWidth {
				line += strings.Repeat(" ", lineWidth-len(line))
			}
			fmt.Fprint(s.output, line)

			frame++
		}
	}
}
