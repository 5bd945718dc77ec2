// Package watch monitors a directory for new video files and feeds
// them to the clip pipeline one at a time.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lucasmne/clipforge/internal/logger"
)

// defaultSettleDelay is how long a newly created file gets to finish
// being written before processing starts.
const defaultSettleDelay = 500 * time.Millisecond

// videoExts are the file extensions treated as processable video.
var videoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
}

// Handler processes one detected video file.
type Handler func(ctx context.Context, path string) error

// Watcher monitors one directory and runs the handler sequentially:
// a new file detected while a run is in progress waits its turn.
type Watcher struct {
	dir     string
	handler Handler
	log     logger.Logger
	settle  time.Duration
	fsw     *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the operational logger.
func WithLogger(log logger.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithSettleDelay overrides the write-settle delay (for testing).
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// New creates a Watcher on dir.
func New(dir string, handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		handler: handler,
		log:     logger.Nop{},
		settle:  defaultSettleDelay,
		fsw:     fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks, dispatching new video files to the handler until the
// context is canceled. Handler errors are logged, not fatal: one bad
// file must not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Infof("watching %s for new videos", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.log.Infof("watch stopped")
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isVideoFile(event.Name) {
				w.log.Debugf("ignoring %s", event.Name)
				continue
			}

			w.log.Infof("new video detected: %s", event.Name)
			if !w.sleep(ctx) {
				return ctx.Err()
			}
			if err := w.handler(ctx, event.Name); err != nil {
				w.log.Errorf("failed to process %s: %v", event.Name, err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			w.log.Errorf("watch error: %v", err)
		}
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// sleep waits the settle delay, reporting false on cancellation.
func (w *Watcher) sleep(ctx context.Context) bool {
	timer := time.NewTimer(w.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// isVideoFile reports whether path has a supported video extension.
func isVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}
