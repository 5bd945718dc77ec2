package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lucasmne/clipforge/internal/config"
)

// ConfigCmd creates the config command.
func ConfigCmd(env *Env) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration: built-in defaults merged with the
config file and environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(env, configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(env, configPath)
		},
	})
	return cmd
}

// runConfigShow prints the effective settings as YAML.
func runConfigShow(env *Env, configPath string) error {
	if configPath == "" {
		var err error
		configPath, err = env.ConfigLoader.DefaultPath()
		if err != nil {
			return err
		}
	}

	settings, err := env.ConfigLoader.Load(configPath)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	fmt.Fprintf(env.Stdout, "# %s\n%s", configPath, out)
	return nil
}

// runConfigInit writes the built-in defaults to the config path,
// refusing to overwrite an existing file.
func runConfigInit(env *Env, configPath string) error {
	if configPath == "" {
		var err error
		configPath, err = env.ConfigLoader.DefaultPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	out, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, out, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(env.Stdout, "wrote %s\n", configPath)
	return nil
}
