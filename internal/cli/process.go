package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lucasmne/clipforge/internal/config"
	"github.com/lucasmne/clipforge/internal/lang"
	"github.com/lucasmne/clipforge/internal/pipeline"
	"github.com/lucasmne/clipforge/internal/transcribe"
)

// supportedFormats lists the video container formats accepted as input.
var supportedFormats = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
}

// supportedFormatsList returns a sorted, comma-separated list for
// error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// processFlags holds the flag overrides shared by process and watch.
type processFlags struct {
	configPath string
	output     string
	language   string
	duration   float64
	noCaptions bool
	static     bool
}

// register adds the shared flags to cmd.
func (f *processFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Config file path (default: ~/.config/clipforge/config.yaml)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output directory for finished clips")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Audio language hint (ISO 639-1 code, e.g., pt, en)")
	cmd.Flags().Float64VarP(&f.duration, "duration", "d", 0, "Clip duration in seconds (default: from config)")
	cmd.Flags().BoolVar(&f.noCaptions, "no-captions", false, "Skip transcription and caption burn-in")
	cmd.Flags().BoolVar(&f.static, "static", false, "Burn static captions instead of animated word reveal")
}

// ProcessCmd creates the process command.
// The env parameter provides injectable dependencies for testing.
func ProcessCmd(env *Env) *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "process <video-file>",
		Short: "Cut a video into clips with animated captions",
		Long: `Cut a video into clips and burn in animated captions.

Clip boundaries follow the natural pauses in the audio; when no usable
pauses exist the video is sliced at a fixed interval. Each clip is
transcribed, captioned word by word in sync with the speech, and named
after the keywords of what is said in it.

Supported formats: ` + supportedFormatsList(),
		Example: `  clipforge process podcast.mp4
  clipforge process interview.mkv -o clips/ -l pt -d 60
  clipforge process talk.mp4 --no-captions
  clipforge process talk.mp4 --static`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), env, args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// runProcess executes one pipeline run for a single input file.
func runProcess(ctx context.Context, env *Env, inputPath string, flags processFlags) error {
	if err := validateInput(inputPath); err != nil {
		return err
	}

	settings, err := loadSettings(env, flags)
	if err != nil {
		return err
	}

	runner, err := buildRunner(ctx, env, settings)
	if err != nil {
		return err
	}
	return executeRun(ctx, env, runner, inputPath)
}

// validateInput checks the input file exists and is a supported format.
func validateInput(inputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, supportedFormatsList())
	}
	return nil
}

// loadSettings loads the config file and applies flag overrides.
func loadSettings(env *Env, flags processFlags) (config.Settings, error) {
	path := flags.configPath
	if path == "" {
		var err error
		path, err = env.ConfigLoader.DefaultPath()
		if err != nil {
			return config.Settings{}, err
		}
	}

	settings, err := env.ConfigLoader.Load(path)
	if err != nil {
		return settings, err
	}

	if flags.output != "" {
		settings.Paths.Output = flags.output
	}
	if flags.language != "" {
		if _, err := lang.Parse(flags.language); err != nil {
			return settings, err
		}
		settings.Whisper.Language = flags.language
	}
	if flags.duration > 0 {
		settings.Clips.DurationS = flags.duration
	}
	if flags.noCaptions {
		settings.Captions.Enabled = false
	}
	if flags.static {
		settings.Captions.Animation = false
	}
	return settings, settings.Validate()
}

// buildRunner resolves ffmpeg, checks the API key when captions are
// on, and assembles a pipeline runner.
func buildRunner(ctx context.Context, env *Env, settings config.Settings) (PipelineRunner, error) {
	ffmpegPath, err := env.FFmpegResolver.Resolve()
	if err != nil {
		return nil, err
	}
	if warning, err := env.FFmpegResolver.CheckVersion(ctx, ffmpegPath); err != nil {
		return nil, err
	} else if warning != "" {
		fmt.Fprintf(env.Stderr, "Warning: %s\n", warning)
	}

	var transcriber transcribe.Transcriber
	if settings.Captions.Enabled {
		apiKey := env.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, transcribe.ErrAPIKeyMissing
		}
		transcriber = env.TranscriberFactory.NewTranscriber(apiKey)
	}

	proc := env.ProcessorFactory.NewProcessor(ffmpegPath)
	return env.RunnerFactory.NewRunner(settings, proc, transcriber), nil
}

// executeRun drives one pipeline run, printing its events as they
// arrive. The consumer and the run are joined so no event is lost.
func executeRun(ctx context.Context, env *Env, runner PipelineRunner, inputPath string) error {
	events := make(chan pipeline.Event, 64)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(ctx, inputPath, events)
	})
	g.Go(func() error {
		for e := range events {
			printEvent(env, e)
		}
		return nil
	})
	return g.Wait()
}

// printEvent renders one pipeline event for the terminal.
func printEvent(env *Env, e pipeline.Event) {
	switch e.Kind {
	case pipeline.EventLog:
		if e.Level == pipeline.LevelInfo {
			fmt.Fprintln(env.Stdout, e.Message)
		} else {
			fmt.Fprintf(env.Stderr, "Warning: %s\n", e.Message)
		}
	case pipeline.EventFailed:
		// The error itself is returned by Run and reported once by main.
	default:
		fmt.Fprintln(env.Stdout, e.String())
	}
}
