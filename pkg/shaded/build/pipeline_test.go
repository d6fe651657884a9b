package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pictomancers/shaded/pkg/shaded/collection"
	"github.com/pictomancers/shaded/pkg/shaded/layout"
	"github.com/pictomancers/shaded/pkg/shaded/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writePack creates a shaderpack at dir declaring one shader named after it.
func writePack(t *testing.T, dir, name string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, name+".fx"), "// "+name)
	writeFile(t, filepath.Join(dir, "shaded-manifest.json"), `{
  "ManifestVersion": 1,
  "ReShadeVersion": 6,
  "Name": "`+name+`",
  "Authors": ["Ada"],
  "Description": "`+name+` effects",
  "Shaders": [{"Source": "`+name+`.fx", "Output": "`+name+`.fx"}]
}`)
}

func searchConfig(path string, depth int) *collection.Configuration {
	desc := "test collection"
	return &collection.Configuration{
		ConfigurationVersion: 1,
		ReShadeVersion:       6,
		Name:                 "Everything",
		Description:          &desc,
		SearchDirectory:      collection.SearchDirectory{Path: path, MaxDepth: depth},
	}
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestBuildCollection_TwoPacks(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writePack(t, filepath.Join(src, "packs", "alpha"), "Alpha")
	writePack(t, filepath.Join(src, "packs", "beta"), "Beta")
	out := filepath.Join(t.TempDir(), "out")

	p := New(Options{OutputDir: out})
	res, err := p.BuildCollection(searchConfig("packs", 2), src)
	require.NoError(t, err)
	assert.Equal(t, StateDone, p.State())

	staging := filepath.Join(out, ".build")
	assert.Equal(t, staging, res.StagingDir)
	shaders, err := os.ReadDir(filepath.Join(staging, "Shaders"))
	require.NoError(t, err)
	assert.Len(t, shaders, 2)

	agg, err := collection.ReadManifest(filepath.Join(staging, "collection.json"))
	require.NoError(t, err)
	require.Len(t, agg.ShaderPacks, 2)
	for _, m := range agg.ShaderPacks {
		assert.Equal(t, 1, m.ShaderCount)
		assert.Zero(t, m.TextureCount)
		assert.Zero(t, m.PresetCount)
		assert.Zero(t, m.AddonCount)
	}
	assert.Equal(t, "Everything", agg.Name)
	assert.Equal(t, uint8(1), agg.ManifestVersion)

	assert.Equal(t, filepath.Join(out, "collection.zip"), res.ArchivePath)
	assert.FileExists(t, res.ArchivePath)
	assert.Positive(t, res.ArchiveSize)
	assert.Equal(t, []string{"Shaders/Alpha.fx", "Shaders/Beta.fx", "collection.json"}, archiveNames(t, res.ArchivePath))
}

func TestBuildCollection_Deterministic(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		writePack(t, filepath.Join(src, strings.ToLower(name)), name)
	}

	var manifests []*collection.Manifest
	for i := 0; i < 2; i++ {
		res, err := New(Options{OutputDir: filepath.Join(t.TempDir(), "out")}).BuildCollection(searchConfig(".", 1), src)
		require.NoError(t, err)
		manifests = append(manifests, res.Manifest)
	}

	if diff := cmp.Diff(manifests[0], manifests[1]); diff != "" {
		t.Errorf("repeated builds differ (-first +second):\n%s", diff)
	}
	names := []string{}
	for _, m := range manifests[0].ShaderPacks {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, names)
}

func TestBuildCollection_StrayFile(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writePack(t, filepath.Join(src, "alpha"), "Alpha")
	out := t.TempDir()
	stray := filepath.Join(out, "stray.txt")
	writeFile(t, stray, "left over")

	p := New(Options{OutputDir: out})
	_, err := p.BuildCollection(searchConfig(".", 1), src)
	require.ErrorIs(t, err, ErrOutputNotEmpty)
	assert.Equal(t, StateFailed, p.State())
	assert.NoFileExists(t, filepath.Join(out, "collection.zip"))
	assert.FileExists(t, stray)

	p = New(Options{OutputDir: out, AllowOverwrite: true})
	res, err := p.BuildCollection(searchConfig(".", 1), src)
	require.NoError(t, err)
	assert.NoFileExists(t, stray)
	assert.FileExists(t, res.ArchivePath)
}

func TestBuildCollection_NoManifests(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writePack(t, filepath.Join(src, "a", "b", "c"), "TooDeep")

	p := New(Options{OutputDir: t.TempDir()})
	_, err := p.BuildCollection(searchConfig(".", 2), src)
	require.ErrorIs(t, err, ErrNoManifestsFound)
	assert.Equal(t, StateFailed, p.State())
}

func TestBuildCollection_MissingSearchDir(t *testing.T) {
	t.Parallel()

	_, err := New(Options{OutputDir: t.TempDir()}).BuildCollection(searchConfig("nowhere", 1), t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildCollection_ParseFailureIsFatal(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writePack(t, filepath.Join(src, "alpha"), "Alpha")
	writeFile(t, filepath.Join(src, "broken", "shaded-manifest.json"), "{ nope")
	out := t.TempDir()

	_, err := New(Options{OutputDir: out}).BuildCollection(searchConfig(".", 1), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing shaderpack manifest")
	assert.NoFileExists(t, filepath.Join(out, "collection.zip"))
}

func TestBuildCollection_CopyFailureLeavesPartialStaging(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writePack(t, filepath.Join(src, "alpha"), "Alpha")
	writeFile(t, filepath.Join(src, "beta", "shaded-manifest.json"), `{
  "Name": "Beta",
  "Shaders": [{"Source": "missing.fx", "Output": "missing.fx"}]
}`)
	out := t.TempDir()

	p := New(Options{OutputDir: out})
	_, err := p.BuildCollection(searchConfig(".", 1), src)
	require.Error(t, err)
	assert.Equal(t, StateFailed, p.State())

	assert.FileExists(t, filepath.Join(out, ".build", "Shaders", "Alpha.fx"), "earlier members stay staged")
	assert.NoFileExists(t, filepath.Join(out, "collection.zip"))
}

func TestBuildShaderpack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "LICENSE"), "MIT")
	writeFile(t, filepath.Join(dir, "src", "Glow.fx"), "glow")
	writeFile(t, filepath.Join(dir, "tex", "noise.png"), "png")
	writeFile(t, filepath.Join(dir, "Glow.ini"), "preset")
	writeFile(t, filepath.Join(dir, "shaded-manifest.json"), `{
  "ManifestVersion": 1,
  "ReShadeVersion": 5,
  "Name": "Glow/Extra",
  "Authors": ["Ada"],
  "Description": "Bloom",
  "LicenseFile": "LICENSE",
  "Shaders": [{"Source": "src/Glow.fx", "Output": "Glow.fx"}],
  "Textures": [{"Source": "tex/noise.png", "Output": "Glow/noise.png"}],
  "Presets": [{"Source": "Glow.ini", "Output": "Glow.ini"}]
}`)
	// A nested pack must not be picked up by a single build.
	writePack(t, filepath.Join(dir, "nested"), "Nested")

	out := filepath.Join(t.TempDir(), "out")
	res, err := New(Options{OutputDir: out}).BuildShaderpack(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "shaders.zip"), res.ArchivePath)
	assert.Equal(t, []string{
		"Licenses/LICENSE-Glow_Extra",
		"Presets/Glow.ini",
		"Shaders/Glow.fx",
		"Textures/Glow/noise.png",
		"collection.json",
	}, archiveNames(t, res.ArchivePath))

	want := collection.MemberSummary{
		Name:         "Glow/Extra",
		Authors:      []string{"Ada"},
		Description:  "Bloom",
		ShaderCount:  1,
		TextureCount: 1,
		PresetCount:  1,
	}
	require.Len(t, res.Manifest.ShaderPacks, 1)
	if diff := cmp.Diff(want, res.Manifest.ShaderPacks[0]); diff != "" {
		t.Errorf("member mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint8(5), res.Manifest.ReShadeVersion)
}

func TestBuildShaderpack_MissingManifest(t *testing.T) {
	t.Parallel()

	_, err := New(Options{OutputDir: t.TempDir()}).BuildShaderpack(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_RunsOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePack(t, dir, "Once")

	p := New(Options{OutputDir: filepath.Join(t.TempDir(), "out")})
	_, err := p.BuildShaderpack(dir)
	require.NoError(t, err)

	_, err = p.BuildShaderpack(dir)
	assert.ErrorIs(t, err, ErrPipelineUsed)
}

func TestPipeline_CustomLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePack(t, dir, "Custom")

	l := layout.Default()
	l.ShaderDir = "fx"
	l.ShaderArchive = "custom.zip"
	l.StagingDir = "stage"

	out := t.TempDir()
	res, err := New(Options{OutputDir: out, Layout: l}).BuildShaderpack(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "custom.zip"), res.ArchivePath)
	assert.FileExists(t, filepath.Join(out, "stage", "fx", "Custom.fx"))
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(42)", State(42).String())
}

// Uses the global logger, so it does not run in parallel.
func TestBuildShaderpack_LogsKeyValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "shaded.log")
	require.NoError(t, logging.Init(logging.Config{
		Level:    "info",
		Path:     logPath,
		Rotation: logging.DefaultRotationConfig(),
	}))
	t.Cleanup(func() { _ = logging.Close() })

	src := t.TempDir()
	writePack(t, src, "Glow")

	_, err := New(Options{OutputDir: filepath.Join(t.TempDir(), "out")}).BuildShaderpack(src)
	require.NoError(t, err)
	require.NoError(t, logging.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	log := string(data)
	assert.Contains(t, log, "packing")
	assert.Contains(t, log, "pack=Glow")
	assert.Contains(t, log, "kind=shader")
	assert.Contains(t, log, "source=Glow.fx")
	assert.Contains(t, log, "shaderpacks=1")
}
