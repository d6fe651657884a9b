package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pictomancers/shaded/pkg/shaded/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage shaded configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/shaded/config.yaml (if set)
  2. ~/.config/shaded/config.yaml

Environment variables override config file settings using the SHADED_ prefix:
  SHADED_LOGGING_LEVEL=debug
  SHADED_HISTORY_ENABLED=false
  SHADED_BUILD_ALLOW_OVERWRITE=true`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	cfg := appConfig

	file := appViper.ConfigFileUsed()
	if _, err := os.Stat(file); file == "" || err != nil {
		file = "(using defaults, no file found)"
	}
	fmt.Fprintf(w, "Config file: %s\n\n", file)

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "logging.level:                  %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.path:                   %s\n", orDefault(cfg.Logging.Path, "(default)"))
	fmt.Fprintf(w, "logging.console_level:          %s\n", cfg.Logging.ConsoleLevel)
	fmt.Fprintf(w, "logging.rotation.max_size:      %s\n", cfg.Logging.Rotation.MaxSize)
	fmt.Fprintf(w, "logging.rotation.max_backups:   %d\n", cfg.Logging.Rotation.MaxBackups)
	fmt.Fprintf(w, "logging.rotation.max_age:       %d days\n", cfg.Logging.Rotation.MaxAge)

	components := make([]string, 0, len(cfg.Logging.Components))
	for name := range cfg.Logging.Components {
		components = append(components, name)
	}
	sort.Strings(components)
	for _, name := range components {
		fmt.Fprintf(w, "logging.components.%-12s %s\n", name+":", cfg.Logging.Components[name])
	}

	fmt.Fprintf(w, "history.enabled:                %t\n", cfg.History.Enabled)
	fmt.Fprintf(w, "history.path:                   %s\n", cfg.History.Path)
	fmt.Fprintf(w, "history.retention_days:         %d\n", cfg.History.RetentionDays)
	fmt.Fprintf(w, "build.allow_overwrite:          %t\n", cfg.Build.AllowOverwrite)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	var overrides []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix+"_") {
			overrides = append(overrides, kv)
		}
	}
	sort.Strings(overrides)
	if len(overrides) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, kv := range overrides {
		fmt.Fprintln(w, kv)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}

	written, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	if !written {
		printInfo(cmd, "Config file already exists: %s", path)
		return nil
	}
	printInfo(cmd, "Created default config file: %s", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
