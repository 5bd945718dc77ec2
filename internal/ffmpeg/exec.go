package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// operationTimeout bounds every individual ffmpeg invocation. A single
// clip extraction or burn-in never legitimately takes longer.
const operationTimeout = 300 * time.Second

// runOutputFn is the function type for running a command and capturing
// its stderr output.
type runOutputFn func(ctx context.Context, path string, args []string) (string, error)

// Executor runs ffmpeg commands with injectable dependencies.
type Executor struct {
	runOutput runOutputFn
	timeout   time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunOutput sets a custom runOutput function (for testing).
func WithRunOutput(fn runOutputFn) ExecutorOption {
	return func(e *Executor) { e.runOutput = fn }
}

// WithTimeout overrides the per-operation timeout.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		runOutput: defaultRunOutput,
		timeout:   operationTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes ffmpeg and fails on non-zero exit. The stderr tail is
// folded into the error since ffmpeg reports diagnostics there.
func (e *Executor) Run(ctx context.Context, ffmpegPath string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	output, err := e.runOutput(ctx, ffmpegPath, args)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %v", ErrTimeout, e.timeout)
		}
		return fmt.Errorf("%w: %v: %s", ErrExecFailed, err, tail(output, 512))
	}
	return nil
}

// RunOutput executes ffmpeg and captures its combined output. The
// output is returned even on failure: probes rely on ffmpeg's
// diagnostic output, which it writes regardless of the exit status.
func (e *Executor) RunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.runOutput(ctx, ffmpegPath, args)
}

// defaultRunOutput is the production implementation. Stdout and stderr
// are interleaved into one buffer: probe data arrives on stderr, the
// version banner on stdout.
func defaultRunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}

// tail returns the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
