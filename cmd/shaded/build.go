package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pictomancers/shaded/pkg/shaded/build"
	"github.com/pictomancers/shaded/pkg/shaded/history"
	"github.com/pictomancers/shaded/pkg/shaded/logging"
	"github.com/pictomancers/shaded/pkg/shaded/output"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a single shaderpack archive",
	Long: `Pack the shaderpack whose manifest sits in --input into --output.

Declared shaders, textures, presets and addons are copied into a staging
directory under --output together with the license file and an aggregate
manifest, and the staging directory is zipped into shaders.zip.

A non-empty output directory is an error unless --clean is given or
build.allow_overwrite is set.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var (
	buildInput    string
	buildOutput   string
	buildClean    bool
	buildMaxDepth int
)

func init() {
	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "shaderpack directory containing the manifest")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output directory")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "delete the output directory contents first")
	buildCmd.Flags().IntVar(&buildMaxDepth, "max-depth", 0, "accepted for older scripts; has no effect")

	_ = buildCmd.MarkFlagRequired("input")
	_ = buildCmd.MarkFlagRequired("output")
	_ = buildCmd.Flags().MarkDeprecated("max-depth", "a single shaderpack build never searches for manifests")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p := build.New(build.Options{
		OutputDir:      buildOutput,
		AllowOverwrite: buildClean || appConfig.Build.AllowOverwrite,
	})

	res, err := p.BuildShaderpack(buildInput)
	if err != nil {
		return err
	}

	return finishBuild(cmd, history.KindShaderpack, buildInput, res)
}

// finishBuild prints the build summary and records the build in history.
func finishBuild(cmd *cobra.Command, kind history.Kind, source string, res *build.Result) error {
	recordHistory(kind, source, res)

	if getQuiet() {
		return nil
	}
	return output.WriteBuildSummary(cmd.OutOrStdout(), res, getPlain())
}

// recordHistory never fails the build; the archive already exists.
func recordHistory(kind history.Kind, source string, res *build.Result) {
	if !appConfig.History.Enabled {
		return
	}

	logger := logging.Get("history")
	if abs, err := filepath.Abs(source); err == nil {
		source = abs
	}

	store, err := history.New(appConfig.History.Path)
	if err != nil {
		logger.Warn("history disabled", "err", err)
		return
	}
	rec, err := store.Add(kind, source, res)
	if err != nil {
		logger.Warn("failed to record build", "err", err)
		return
	}
	logger.Debug("build recorded", "id", rec.ID)
}
