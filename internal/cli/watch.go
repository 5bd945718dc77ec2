package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasmne/clipforge/internal/logger"
)

// WatchCmd creates the watch command.
func WatchCmd(env *Env) *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a directory and process new videos as they arrive",
		Long: `Watch a directory for new video files and run the clip pipeline on
each one, sequentially. The directory defaults to paths.input from the
config file.`,
		Example: `  clipforge watch ~/Videos/inbox
  clipforge watch -o clips/ --static`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd.Context(), env, dir, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// runWatch blocks, processing every new video until interrupted.
func runWatch(ctx context.Context, env *Env, dir string, flags processFlags) error {
	settings, err := loadSettings(env, flags)
	if err != nil {
		return err
	}

	if dir == "" {
		dir = settings.Paths.Input
	}
	if dir == "" {
		return fmt.Errorf("%w: pass a directory or set paths.input", ErrNoInputDir)
	}

	runner, err := buildRunner(ctx, env, settings)
	if err != nil {
		return err
	}

	log := logger.New(env.Stderr, logger.ParseLevel(settings.Logging.Level))
	watcher, err := env.WatcherFactory.NewWatcher(dir, func(ctx context.Context, path string) error {
		return executeRun(ctx, env, runner, path)
	}, log)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}
