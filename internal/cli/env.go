// Package cli wires the cobra commands to the pipeline.
package cli

import (
	"context"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lucasmne/clipforge/internal/config"
	"github.com/lucasmne/clipforge/internal/ffmpeg"
	"github.com/lucasmne/clipforge/internal/logger"
	"github.com/lucasmne/clipforge/internal/pipeline"
	"github.com/lucasmne/clipforge/internal/transcribe"
	"github.com/lucasmne/clipforge/internal/watch"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing commands in
// isolation. All fields have production defaults via DefaultEnv.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	TranscriberFactory TranscriberFactory
	ProcessorFactory   ProcessorFactory
	RunnerFactory      RunnerFactory
	WatcherFactory     WatcherFactory
}

// FFmpegResolver locates the ffmpeg binary.
type FFmpegResolver interface {
	Resolve() (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string) (warning string, err error)
}

// ConfigLoader loads pipeline settings.
type ConfigLoader interface {
	Load(path string) (config.Settings, error)
	DefaultPath() (string, error)
}

// TranscriberFactory creates transcribers.
type TranscriberFactory interface {
	NewTranscriber(apiKey string) transcribe.Transcriber
}

// ProcessorFactory creates video processors around a resolved binary.
type ProcessorFactory interface {
	NewProcessor(ffmpegPath string) pipeline.VideoProcessor
}

// PipelineRunner executes one pipeline run.
type PipelineRunner interface {
	Run(ctx context.Context, input string, events chan<- pipeline.Event) error
}

// RunnerFactory creates pipeline runners.
type RunnerFactory interface {
	NewRunner(settings config.Settings, proc pipeline.VideoProcessor, tr transcribe.Transcriber) PipelineRunner
}

// WatchRunner is a running directory watch.
type WatchRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// WatcherFactory creates directory watchers.
type WatcherFactory interface {
	NewWatcher(dir string, handler watch.Handler, log logger.Logger) (WatchRunner, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithFFmpegResolver sets the ffmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) { e.FFmpegResolver = r }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) { e.TranscriberFactory = f }
}

// WithProcessorFactory sets the processor factory.
func WithProcessorFactory(f ProcessorFactory) EnvOption {
	return func(e *Env) { e.ProcessorFactory = f }
}

// WithRunnerFactory sets the pipeline runner factory.
func WithRunnerFactory(f RunnerFactory) EnvOption {
	return func(e *Env) { e.RunnerFactory = f }
}

// WithWatcherFactory sets the watcher factory.
func WithWatcherFactory(f WatcherFactory) EnvOption {
	return func(e *Env) { e.WatcherFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		FFmpegResolver:     &defaultFFmpegResolver{},
		ConfigLoader:       &defaultConfigLoader{},
		TranscriberFactory: &defaultTranscriberFactory{},
		ProcessorFactory:   &defaultProcessorFactory{},
		RunnerFactory:      &defaultRunnerFactory{},
		WatcherFactory:     &defaultWatcherFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// defaultFFmpegResolver delegates to the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve() (string, error) {
	return ffmpeg.NewResolver().Resolve()
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) (string, error) {
	return ffmpeg.CheckVersion(ctx, ffmpeg.NewExecutor(), ffmpegPath)
}

// defaultConfigLoader delegates to the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load(path string) (config.Settings, error) {
	return config.Load(path)
}

func (defaultConfigLoader) DefaultPath() (string, error) {
	return config.DefaultPath()
}

// defaultTranscriberFactory creates OpenAI transcribers.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey string) transcribe.Transcriber {
	return transcribe.NewOpenAITranscriber(openai.NewClient(apiKey))
}

// defaultProcessorFactory creates ffmpeg processors.
type defaultProcessorFactory struct{}

func (defaultProcessorFactory) NewProcessor(ffmpegPath string) pipeline.VideoProcessor {
	return ffmpeg.NewProcessor(ffmpegPath, ffmpeg.NewExecutor())
}

// defaultRunnerFactory creates pipeline runners.
type defaultRunnerFactory struct{}

func (defaultRunnerFactory) NewRunner(settings config.Settings, proc pipeline.VideoProcessor, tr transcribe.Transcriber) PipelineRunner {
	return pipeline.New(settings, proc, tr)
}

// defaultWatcherFactory creates directory watchers.
type defaultWatcherFactory struct{}

func (defaultWatcherFactory) NewWatcher(dir string, handler watch.Handler, log logger.Logger) (WatchRunner, error) {
	return watch.New(dir, handler, watch.WithLogger(log))
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ ProcessorFactory   = (*defaultProcessorFactory)(nil)
	_ RunnerFactory      = (*defaultRunnerFactory)(nil)
	_ WatcherFactory     = (*defaultWatcherFactory)(nil)
)
