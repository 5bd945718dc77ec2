package workspace_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasmne/clipforge/internal/workspace"
)

func TestNew_CreatesRootUnderBase(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	ws, err := workspace.New(base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = ws.Cleanup() }()

	if filepath.Dir(ws.Root()) != base {
		t.Errorf("Root() = %s, want under %s", ws.Root(), base)
	}
	if !strings.Contains(filepath.Base(ws.Root()), "clipforge-") {
		t.Errorf("Root() = %s, missing clipforge- prefix", ws.Root())
	}
	if ws.RunID() == "" {
		t.Error("RunID() is empty")
	}
}

func TestCreateFile_AndDir(t *testing.T) {
	t.Parallel()

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = ws.Cleanup() }()

	path, err := ws.CreateFile("audio_*.wav")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("created file missing: %v", err)
	}
	if !strings.HasSuffix(path, ".wav") {
		t.Errorf("CreateFile path = %s, want .wav suffix", path)
	}

	dir, err := ws.Dir("frames_000")
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("Dir did not create directory: %v", err)
	}
}

func TestCleanup_RemovesEverythingAndIsIdempotent(t *testing.T) {
	t.Parallel()

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := ws.CreateFile("clip_*.mp4"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(ws.Root()); !os.IsNotExist(err) {
		t.Errorf("workspace root still exists after Cleanup")
	}

	// Second call is a no-op.
	if err := ws.Cleanup(); err != nil {
		t.Errorf("second Cleanup: %v", err)
	}

	// Creation after cleanup fails.
	if _, err := ws.CreateFile("late_*.tmp"); err == nil {
		t.Error("CreateFile after Cleanup: expected error")
	}
}

func TestCleanupAll_RemovesLiveWorkspaces(t *testing.T) {
	a, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.CreateFile("clip_*.mp4"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	workspace.CleanupAll()

	for _, ws := range []*workspace.Workspace{a, b} {
		if _, err := os.Stat(ws.Root()); !os.IsNotExist(err) {
			t.Errorf("workspace root %s still exists after CleanupAll", ws.Root())
		}
		// Already-cleaned workspaces stay cleaned.
		if err := ws.Cleanup(); err != nil {
			t.Errorf("Cleanup after CleanupAll: %v", err)
		}
	}
}
