package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/oadesk/internal/config"
	"github.com/idilsaglam/oadesk/internal/ui"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	var theme string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		// Must work even when the existing file no longer parses.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat config: %w", err)
			}
			cfg := config.DefaultConfig()
			if theme != "" {
				cfg.Theme = theme
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			ui.OK(out(cmd), "wrote "+path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&theme, "theme", "", "output theme: classic, neon or mono")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cfg.Server.Token != "" {
				cfg.Server.Token = maskToken(cfg.Server.Token)
			}
			b, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = out(cmd).Write(b)
			return err
		},
	}

	cmd.AddCommand(initCmd, show)
	return cmd
}

func (a *app) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultPath()
}
