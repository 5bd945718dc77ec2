// Package workspace manages the run-scoped temporary directory that
// holds extracted audio, intermediate clips, and rendered overlay
// frames. Every file created here belongs exclusively to one pipeline
// run and is removed on completion, cancellation, and error paths.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// prefix marks directories owned by clipforge. Cleanup refuses to
// remove a root that does not carry it.
const prefix = "clipforge-"

// active tracks workspaces that have not been cleaned up yet. Abort
// paths exit without unwinding deferred cleanups, so they call
// CleanupAll instead.
var (
	activeMu sync.Mutex
	active   = map[*Workspace]struct{}{}
)

// CleanupAll removes every workspace that is still live.
func CleanupAll() {
	activeMu.Lock()
	list := make([]*Workspace, 0, len(active))
	for w := range active {
		list = append(list, w)
	}
	activeMu.Unlock()

	for _, w := range list {
		_ = w.Cleanup()
	}
}

// Workspace is a temporary directory registry for one pipeline run.
type Workspace struct {
	mu     sync.Mutex
	runID  string
	root   string
	closed bool
}

// New creates a workspace under baseDir. An empty baseDir uses the
// system temp directory.
func New(baseDir string) (*Workspace, error) {
	runID := uuid.NewString()

	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create temp base %s: %w", baseDir, err)
		}
	}

	root, err := os.MkdirTemp(baseDir, prefix+runID[:8]+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	w := &Workspace{runID: runID, root: root}
	activeMu.Lock()
	active[w] = struct{}{}
	activeMu.Unlock()
	return w, nil
}

// RunID returns the unique identifier of this run.
func (w *Workspace) RunID() string {
	return w.runID
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// CreateFile creates an empty file inside the workspace and returns
// its path. The pattern follows os.CreateTemp semantics.
func (w *Workspace) CreateFile(pattern string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return "", fmt.Errorf("workspace already cleaned up")
	}

	f, err := os.CreateTemp(w.root, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return path, nil
}

// Dir creates (or reuses) a named subdirectory inside the workspace.
// Used for per-chunk overlay frame sequences.
func (w *Workspace) Dir(name string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return "", fmt.Errorf("workspace already cleaned up")
	}

	path := filepath.Join(w.root, name)
	if err := os.MkdirAll(path, 0o750); err != nil {
		return "", fmt.Errorf("failed to create workspace dir %s: %w", name, err)
	}
	return path, nil
}

// Cleanup removes the workspace and everything in it.
// Safe to call multiple times and from a defer on every exit path.
func (w *Workspace) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	activeMu.Lock()
	delete(active, w)
	activeMu.Unlock()

	// Refuse to remove anything that does not look like ours.
	if !strings.Contains(filepath.Base(w.root), prefix) {
		return fmt.Errorf("refusing to remove non-workspace dir %s", w.root)
	}
	return os.RemoveAll(w.root)
}
