package cli_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/lucasmne/clipforge/internal/cli"
	"github.com/lucasmne/clipforge/internal/config"
	"github.com/lucasmne/clipforge/internal/ffmpeg"
	"github.com/lucasmne/clipforge/internal/logger"
	"github.com/lucasmne/clipforge/internal/pipeline"
	"github.com/lucasmne/clipforge/internal/transcribe"
	"github.com/lucasmne/clipforge/internal/watch"
)

// mockResolver resolves to a fixed ffmpeg path.
type mockResolver struct {
	path    string
	err     error
	warning string
}

func (m mockResolver) Resolve() (string, error) { return m.path, m.err }

func (m mockResolver) CheckVersion(context.Context, string) (string, error) {
	return m.warning, nil
}

// mockConfigLoader serves fixed settings.
type mockConfigLoader struct {
	settings config.Settings
	err      error
}

func (m mockConfigLoader) Load(string) (config.Settings, error) {
	return m.settings, m.err
}

func (m mockConfigLoader) DefaultPath() (string, error) {
	return "/tmp/clipforge-test-config.yaml", nil
}

// mockTranscriberFactory records whether a transcriber was requested.
type mockTranscriberFactory struct {
	created int
}

func (m *mockTranscriberFactory) NewTranscriber(string) transcribe.Transcriber {
	m.created++
	return nil
}

// nopProcessor satisfies pipeline.VideoProcessor without doing anything.
type nopProcessor struct{}

func (nopProcessor) ExtractClip(context.Context, string, string, float64, float64) error { return nil }
func (nopProcessor) ExtractAudio(context.Context, string, string) error                  { return nil }
func (nopProcessor) ProbeDuration(context.Context, string) (float64, error)              { return 0, nil }
func (nopProcessor) ProbeVideoSize(context.Context, string) (int, int, bool) {
	return 1280, 720, true
}
func (nopProcessor) BurnOverlays(context.Context, string, string, []ffmpeg.Overlay) error {
	return nil
}

// mockProcessorFactory returns the nop processor.
type mockProcessorFactory struct{}

func (mockProcessorFactory) NewProcessor(string) pipeline.VideoProcessor {
	return nopProcessor{}
}

// mockRunner records run inputs and replays canned events.
type mockRunner struct {
	events []pipeline.Event
	err    error
	inputs []string
}

func (m *mockRunner) Run(_ context.Context, input string, events chan<- pipeline.Event) error {
	defer close(events)
	m.inputs = append(m.inputs, input)
	for _, e := range m.events {
		events <- e
	}
	return m.err
}

// mockRunnerFactory hands out one mockRunner, recording the settings
// it was built with.
type mockRunnerFactory struct {
	runner   *mockRunner
	settings config.Settings
}

func (m *mockRunnerFactory) NewRunner(settings config.Settings, _ pipeline.VideoProcessor, _ transcribe.Transcriber) cli.PipelineRunner {
	m.settings = settings
	return m.runner
}

// mockWatcher feeds fixed paths to the handler, then stops.
type mockWatcher struct {
	paths   []string
	handler watch.Handler
	runErr  error
}

func (m *mockWatcher) Run(ctx context.Context) error {
	for _, p := range m.paths {
		_ = m.handler(ctx, p)
	}
	return m.runErr
}

func (m *mockWatcher) Close() error { return nil }

// mockWatcherFactory records the watched directory.
type mockWatcherFactory struct {
	watcher *mockWatcher
	dir     string
}

func (m *mockWatcherFactory) NewWatcher(dir string, handler watch.Handler, _ logger.Logger) (cli.WatchRunner, error) {
	m.dir = dir
	m.watcher.handler = handler
	return m.watcher, nil
}

// testEnv assembles an Env of mocks plus capture buffers.
type testEnv struct {
	env      *cli.Env
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	runner   *mockRunner
	runners  *mockRunnerFactory
	trans    *mockTranscriberFactory
	watchers *mockWatcherFactory
}

func newTestEnv(t *testing.T, settings config.Settings, apiKey string) *testEnv {
	t.Helper()

	te := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		runner:   &mockRunner{},
		trans:    &mockTranscriberFactory{},
		watchers: &mockWatcherFactory{watcher: &mockWatcher{}},
	}
	te.runners = &mockRunnerFactory{runner: te.runner}

	te.env = cli.NewEnv(
		cli.WithStdout(te.stdout),
		cli.WithStderr(te.stderr),
		cli.WithGetenv(func(key string) string {
			if key == "OPENAI_API_KEY" {
				return apiKey
			}
			return ""
		}),
		cli.WithFFmpegResolver(mockResolver{path: "/usr/bin/ffmpeg"}),
		cli.WithConfigLoader(mockConfigLoader{settings: settings}),
		cli.WithTranscriberFactory(te.trans),
		cli.WithProcessorFactory(mockProcessorFactory{}),
		cli.WithRunnerFactory(te.runners),
		cli.WithWatcherFactory(te.watchers),
	)
	return te
}

func testSettings(t *testing.T) config.Settings {
	t.Helper()
	s := config.Default()
	s.Paths.Output = t.TempDir()
	return s
}
