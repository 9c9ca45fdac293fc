package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/stackbom/pkg/observability"
)

// Spinner is a progress indicator for pack and unpack runs. It doubles as
// an observability.ArchiveHooks so the message follows the entries being
// written or read.
type Spinner struct {
	observability.NoopArchiveHooks

	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string

	stopOnce sync.Once

	mu      sync.Mutex
	message string
	width   int
	started bool
	entries int
	nodes   int
}

// newSpinner creates a spinner writing to w that stops when ctx is cancelled.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				line := s.line()
				if len(line) > s.width {
					s.width = len(line)
				}
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
				s.mu.Unlock()
				i++
			}
		}
	}()
}

func (s *Spinner) line() string {
	if s.entries == 0 {
		return s.message
	}
	return fmt.Sprintf("%s %d entries, %d nodes", s.message, s.entries, s.nodes)
}

// OnEntryWritten counts an appended archive entry.
func (s *Spinner) OnEntryWritten(_ string, nodes, _ int, _ time.Duration) {
	s.count(nodes)
}

// OnEntryRead counts a decoded archive entry.
func (s *Spinner) OnEntryRead(_ string, nodes, _ int, _ time.Duration) {
	s.count(nodes)
}

func (s *Spinner) count(nodes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries++
	s.nodes += nodes
}

// Stop stops the spinner and clears the line. Stop is idempotent and may
// be called from several goroutines.
func (s *Spinner) Stop() {
	s.cancel()
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.done) })
	if started {
		<-s.stopped
	}
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", max(s.width, len(s.message))+4))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess(s.w, "%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError(s.w, "%s", message)
}

// Cancelled reports whether the spinner was stopped by its context.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
