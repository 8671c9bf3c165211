package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a message on a terminal while a slow operation runs.
// On anything but a terminal it stays silent.
type spinner struct {
	w        io.Writer
	message  string
	interval time.Duration

	quit     chan struct{}
	finished chan struct{}
	once     sync.Once
}

// startSpinner starts a spinner on w. It stops on its own when ctx ends.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	return runSpinner(ctx, w, message, isTerminal(w), 80*time.Millisecond)
}

func runSpinner(ctx context.Context, w io.Writer, message string, animate bool, interval time.Duration) *spinner {
	s := &spinner{
		w:        w,
		message:  message,
		interval: interval,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	if !animate {
		close(s.finished)
		return s
	}
	go s.loop(ctx)
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (s *spinner) loop(ctx context.Context) {
	defer close(s.finished)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.quit:
			s.clear()
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleSpinner.Render(frame), StyleDim.Render(s.message))
		}
	}
}

func (s *spinner) clear() {
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// stop ends the animation and waits for the line to be cleared. It may be
// called more than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.finished
}

func (s *spinner) succeed(p printer, format string, args ...any) {
	s.stop()
	p.success(format, args...)
}

func (s *spinner) fail(p printer, format string, args ...any) {
	s.stop()
	p.fail(format, args...)
}
