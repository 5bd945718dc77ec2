package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasmne/clipforge/internal/cli"
)

func executeConfig(t *testing.T, te *testEnv, args ...string) error {
	t.Helper()
	cmd := cli.ConfigCmd(te.env)
	cmd.SetArgs(args)
	cmd.SetOut(te.stdout)
	cmd.SetErr(te.stderr)
	return cmd.Execute()
}

func TestConfigCmd_ShowsEffectiveSettings(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, testSettings(t), "")
	if err := executeConfig(t, te, "-c", "/tmp/any.yaml"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := te.stdout.String()
	for _, want := range []string{"detection:", "captions:", "silence_threshold_db: -40", "duration_s: 45"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCmd_InitWritesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	te := newTestEnv(t, testSettings(t), "")

	if err := executeConfig(t, te, "init", "-c", path); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "silence_threshold_db") {
		t.Errorf("written config missing defaults:\n%s", data)
	}

	// A second init must refuse to overwrite.
	if err := executeConfig(t, te, "init", "-c", path); err == nil {
		t.Error("second init did not fail on existing file")
	}
}
