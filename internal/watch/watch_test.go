package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lucasmne/clipforge/internal/watch"
)

func startWatcher(t *testing.T, dir string, handler watch.Handler) (context.CancelFunc, <-chan error) {
	t.Helper()

	w, err := watch.New(dir, handler, watch.WithSettleDelay(time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return cancel, done
}

func TestWatcher_DispatchesNewVideo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seen := make(chan string, 1)
	cancel, done := startWatcher(t, dir, func(_ context.Context, path string) error {
		seen <- path
		return nil
	})
	defer cancel()

	path := filepath.Join(dir, "episode.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-seen:
		if got != path {
			t.Errorf("handler got %q, want %q", got, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler never called for new video")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestWatcher_IgnoresNonVideoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seen := make(chan string, 2)
	cancel, done := startWatcher(t, dir, func(_ context.Context, path string) error {
		seen <- path
		return nil
	})
	defer cancel()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	video := filepath.Join(dir, "talk.MOV")
	if err := os.WriteFile(video, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	// The video arrives; the text file never does.
	select {
	case got := <-seen:
		if got != video {
			t.Errorf("handler got %q, want only %q", got, video)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler never called for video")
	}

	cancel()
	<-done
}

func TestWatcher_HandlerErrorDoesNotStopWatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seen := make(chan string, 2)
	cancel, done := startWatcher(t, dir, func(_ context.Context, path string) error {
		seen <- path
		return errors.New("transcode failed")
	})
	defer cancel()

	for _, name := range []string{"a.mp4", "b.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-seen:
		case <-time.After(5 * time.Second):
			t.Fatalf("handler called %d time(s), want 2", i)
		}
	}

	cancel()
	<-done
}

func TestNew_MissingDirectory(t *testing.T) {
	t.Parallel()

	if _, err := watch.New(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Error("New() error = nil, want error for missing directory")
	}
}
