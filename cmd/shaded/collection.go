package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pictomancers/shaded/pkg/shaded/build"
	"github.com/pictomancers/shaded/pkg/shaded/collection"
	"github.com/pictomancers/shaded/pkg/shaded/history"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Work with shaderpack collections",
}

var collectionBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a collection archive",
	Long: `Pack every shaderpack found under the configuration's search directory into
one collection.zip.

The search directory is resolved against the configuration file's own
directory. Shaderpacks are found up to max_depth directories below it and
are packed in path order.

Example configuration:

  configuration_version = 1
  reshade_version = 5
  name = "My Collection"
  description = "Optional"

  [search_directory]
  path = "packs"
  max_depth = 2`,
	Args: cobra.NoArgs,
	RunE: runCollectionBuild,
}

var (
	collectionConfiguration  string
	collectionOutput         string
	collectionDeleteExisting bool
)

func init() {
	collectionBuildCmd.Flags().StringVarP(&collectionConfiguration, "configuration", "c", "", "collection configuration file (TOML)")
	collectionBuildCmd.Flags().StringVarP(&collectionOutput, "output", "o", "", "output directory")
	collectionBuildCmd.Flags().BoolVar(&collectionDeleteExisting, "delete-existing", false, "delete the output directory contents first")

	_ = collectionBuildCmd.MarkFlagRequired("configuration")
	_ = collectionBuildCmd.MarkFlagRequired("output")

	collectionCmd.AddCommand(collectionBuildCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionBuild(cmd *cobra.Command, args []string) error {
	cfg, err := collection.LoadConfiguration(collectionConfiguration)
	if err != nil {
		return err
	}

	p := build.New(build.Options{
		OutputDir:      collectionOutput,
		AllowOverwrite: collectionDeleteExisting || appConfig.Build.AllowOverwrite,
	})

	res, err := p.BuildCollection(cfg, filepath.Dir(collectionConfiguration))
	if err != nil {
		return err
	}

	return finishBuild(cmd, history.KindCollection, collectionConfiguration, res)
}
