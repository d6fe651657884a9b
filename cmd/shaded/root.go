package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pictomancers/shaded/pkg/shaded/config"
	"github.com/pictomancers/shaded/pkg/shaded/logging"
)

var (
	cfgFile   string
	appConfig *config.Config
	appViper  *viper.Viper

	rootCmd = &cobra.Command{
		Use:   "shaded",
		Short: "Package ReShade shaderpacks into distributable archives",
		Long: `Shaded validates shaderpack manifests and packs shaderpacks, alone or as a
collection, into a single zip archive with an aggregate manifest.

Examples:
  shaded validate ./MyPack/shaded-manifest.json
  shaded format ./MyPack/shaded-manifest.json
  shaded build --input ./MyPack --output ./dist
  shaded collection build --configuration ./collection.toml --output ./dist
  shaded history`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: initApp,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/shaded/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "errors only")
	rootCmd.PersistentFlags().Bool("plain", false, "disable colors and framing")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("plain", rootCmd.PersistentFlags().Lookup("plain"))
}

// initApp loads the application config and starts logging before any
// command runs. Settings load into a fresh viper so each run sees only its
// own config file; the global instance carries the root flags.
func initApp(cmd *cobra.Command, args []string) error {
	v := viper.New()
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	opts, err := cfg.LoggingOptions()
	if err != nil {
		return err
	}
	switch {
	case getQuiet():
		opts.ConsoleLevel = "error"
	case getVerbose():
		opts.ConsoleLevel = "debug"
	}
	opts.Console = cmd.ErrOrStderr()

	if err := logging.Init(opts); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	appConfig = cfg
	appViper = v
	return nil
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := rootCmd.Execute()
	_ = logging.Close()
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func getVerbose() bool {
	return viper.GetBool("verbose")
}

func getQuiet() bool {
	return viper.GetBool("quiet")
}

func getPlain() bool {
	return viper.GetBool("plain")
}

// printInfo prints a message unless quiet mode is enabled.
func printInfo(cmd *cobra.Command, format string, args ...any) {
	if !getQuiet() {
		fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}
