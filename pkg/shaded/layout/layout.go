// Package layout holds the on-disk names that form the contract between
// shaded and every tool that reads its artifacts.
//
// Changing any value returned by Default is a breaking change: existing
// shaderpacks stop being discovered and archive consumers stop finding
// their manifests.
package layout

// Layout is the immutable set of well-known file and directory names used by
// discovery and the build pipeline.
type Layout struct {
	// ShaderpackManifest is the filename of a shaderpack manifest.
	ShaderpackManifest string

	// CollectionManifest is the filename of the aggregate manifest written
	// at the root of every archive.
	CollectionManifest string

	// ShaderArchive is the archive filename produced by a single-pack build.
	ShaderArchive string

	// CollectionArchive is the archive filename produced by a collection build.
	CollectionArchive string

	// StagingDir is the directory created under the output directory to
	// assemble files before archiving.
	StagingDir string

	// Category directories relative to the staging root.
	ShaderDir  string
	TextureDir string
	PresetDir  string
	AddonDir   string
	LicenseDir string

	// LicensePrefix is prepended to a member name to form its license filename.
	LicensePrefix string
}

// Default returns the layout every released version of shaded has used.
func Default() Layout {
	return Layout{
		ShaderpackManifest: "shaded-manifest.json",
		CollectionManifest: "collection.json",
		ShaderArchive:      "shaders.zip",
		CollectionArchive:  "collection.zip",
		StagingDir:         ".build",
		ShaderDir:          "Shaders",
		TextureDir:         "Textures",
		PresetDir:          "Presets",
		AddonDir:           "Addons",
		LicenseDir:         "Licenses",
		LicensePrefix:      "LICENSE-",
	}
}
