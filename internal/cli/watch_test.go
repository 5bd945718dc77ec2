package cli_test

import (
	"errors"
	"testing"

	"github.com/lucasmne/clipforge/internal/cli"
	"github.com/lucasmne/clipforge/internal/pipeline"
)

func executeWatch(t *testing.T, te *testEnv, args ...string) error {
	t.Helper()
	cmd := cli.WatchCmd(te.env)
	cmd.SetArgs(args)
	cmd.SetOut(te.stdout)
	cmd.SetErr(te.stderr)
	return cmd.Execute()
}

func TestWatchCmd_ProcessesDetectedFiles(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, testSettings(t), "sk-test")
	te.watchers.watcher.paths = []string{"/videos/a.mp4", "/videos/b.mp4"}
	te.runner.events = nil

	dir := t.TempDir()
	if err := executeWatch(t, te, dir); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if te.watchers.dir != dir {
		t.Errorf("watched dir = %q, want %q", te.watchers.dir, dir)
	}
	if len(te.runner.inputs) != 2 {
		t.Fatalf("runner processed %d files, want 2", len(te.runner.inputs))
	}
	if te.runner.inputs[0] != "/videos/a.mp4" || te.runner.inputs[1] != "/videos/b.mp4" {
		t.Errorf("runner inputs = %v, want detected files in order", te.runner.inputs)
	}
}

func TestWatchCmd_DirFromConfig(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Paths.Input = t.TempDir()

	te := newTestEnv(t, settings, "sk-test")
	if err := executeWatch(t, te); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if te.watchers.dir != settings.Paths.Input {
		t.Errorf("watched dir = %q, want paths.input %q", te.watchers.dir, settings.Paths.Input)
	}
}

func TestWatchCmd_NoDirConfigured(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, testSettings(t), "sk-test")
	err := executeWatch(t, te)
	if !errors.Is(err, cli.ErrNoInputDir) {
		t.Errorf("Execute() error = %v, want ErrNoInputDir", err)
	}
}

func TestWatchCmd_RunnerFailureKeepsWatching(t *testing.T) {
	t.Parallel()

	// One failed file does not abort the watch loop.
	te := newTestEnv(t, testSettings(t), "sk-test")
	te.watchers.watcher.paths = []string{"/videos/bad.mp4", "/videos/good.mp4"}
	te.runner.err = pipeline.ErrNoClips

	if err := executeWatch(t, te, t.TempDir()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(te.runner.inputs) != 2 {
		t.Errorf("runner processed %d files, want 2", len(te.runner.inputs))
	}
}
