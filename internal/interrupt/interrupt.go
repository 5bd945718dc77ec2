// Package interrupt implements graceful shutdown with double Ctrl+C
// detection. The first interrupt cancels the run context so the
// pipeline stops at the next clip boundary; a second interrupt aborts
// the process immediately.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitInterrupt is the exit code for interrupt (130 = 128 + SIGINT).
const ExitInterrupt = 130

// abortMessage is displayed when the user aborts via double Ctrl+C.
const abortMessage = "\nAborted."

// stopMessage is displayed after the first Ctrl+C.
const stopMessage = "\nStopping after the current clip (Ctrl+C again to abort)..."

// Handler manages graceful interrupt handling.
type Handler struct {
	mu          sync.Mutex
	interrupted bool
	stopped     bool
	cancel      context.CancelFunc
	done        chan struct{}

	// Injected dependencies (for testing)
	onAbort  func()
	exitFunc func(int)
	stderr   io.Writer
}

// Options configures a Handler. The zero value listens for real
// process signals and exits via os.Exit.
type Options struct {
	// SigCh overrides the signal source (for testing). When nil the
	// handler registers for SIGINT and SIGTERM itself.
	SigCh <-chan os.Signal

	// OnAbort runs before the process exits on a second interrupt.
	// Used to remove temp files that deferred cleanups would miss.
	OnAbort func()

	ExitFunc func(int)

	// Stderr is the writer for user-facing messages. Must be safe for
	// concurrent writes; os.Stderr is.
	Stderr io.Writer
}

// NewHandler creates a handler and returns it with a context that is
// canceled on the first interrupt.
func NewHandler(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	exitFunc := opts.ExitFunc
	if exitFunc == nil {
		exitFunc = os.Exit
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	sigCh := opts.SigCh
	if sigCh == nil {
		ch := make(chan os.Signal, 2)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sigCh = ch
	}

	h := &Handler{
		cancel:   cancel,
		done:     make(chan struct{}),
		onAbort:  opts.OnAbort,
		exitFunc: exitFunc,
		stderr:   stderr,
	}
	go h.listen(sigCh)
	return h, ctx
}

// listen handles incoming signals.
func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return
			}

			h.mu.Lock()
			if h.stopped {
				h.mu.Unlock()
				return
			}
			if !h.interrupted {
				h.interrupted = true
				h.cancel()
				h.mu.Unlock()
				fmt.Fprintln(h.stderr, stopMessage)
				continue
			}
			h.mu.Unlock()

			fmt.Fprintln(h.stderr, abortMessage)
			if h.onAbort != nil {
				h.onAbort()
			}
			h.exitFunc(ExitInterrupt)
			return // in case exitFunc doesn't exit (tests)
		}
	}
}

// WasInterrupted reports whether at least one interrupt was received.
func (h *Handler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// Stop releases the handler. Safe to call multiple times.
func (h *Handler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	close(h.done)
	h.cancel()
}
