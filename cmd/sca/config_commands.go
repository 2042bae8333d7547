package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/request"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the sca configuration",
	}
	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(ctx),
		newConfigShowCommand(ctx),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := configTarget(path)
			if err != nil {
				return err
			}
			if !force {
				_, statErr := os.Stat(target)
				if statErr == nil {
					return fmt.Errorf("%s already exists; pass --force to replace it", target)
				}
				if !errors.Is(statErr, fs.ErrNotExist) {
					return fmt.Errorf("check %s: %w", target, statErr)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set acquisition.source = \"serial\" and acquisition.device to acquire from the board.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Where to write the file (default ~/.config/sca/config.toml)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing file")
	return cmd
}

// configTarget expands path, or returns the default location when empty.
func configTarget(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("default config path: %w", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configExists {
				source += " (missing, defaults used)"
			}
			fmt.Fprintf(out, "Config path: %s\n", source)
			fmt.Fprintf(out, "Dataset: %s from %s\n", request.FromConfig(cfg).Base(), cfg.Acquisition.Source)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
