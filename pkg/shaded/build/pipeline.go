// Package build turns shaderpacks into archives.
//
// A Pipeline runs once. It prepares the output directory, stages every
// member's declared files under a category directory, writes the aggregate
// manifest at the staging root and zips the staging tree. Failures abort the
// run and leave whatever was staged on disk.
package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pictomancers/shaded/pkg/shaded/collection"
	"github.com/pictomancers/shaded/pkg/shaded/discovery"
	"github.com/pictomancers/shaded/pkg/shaded/layout"
	"github.com/pictomancers/shaded/pkg/shaded/logging"
	"github.com/pictomancers/shaded/pkg/shaded/shaderpack"
)

var (
	// ErrOutputNotEmpty is returned when the output directory holds files
	// and overwriting was not allowed.
	ErrOutputNotEmpty = errors.New("output directory is not empty")

	// ErrNoManifestsFound is returned when a collection search finds nothing.
	ErrNoManifestsFound = errors.New("no shaderpack manifests found")

	// ErrPipelineUsed is returned when a Pipeline is run a second time.
	ErrPipelineUsed = errors.New("pipeline has already run")
)

// State is a step of the build.
type State int

const (
	StateInit State = iota
	StateOutputPrepared
	StateDiscovered
	StateLoaded
	StateStaged
	StateAggregated
	StateArchived
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:           "init",
	StateOutputPrepared: "output-prepared",
	StateDiscovered:     "discovered",
	StateLoaded:         "loaded",
	StateStaged:         "staged",
	StateAggregated:     "aggregated",
	StateArchived:       "archived",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options configures a Pipeline.
type Options struct {
	// OutputDir receives the staging directory and the archive.
	OutputDir string

	// AllowOverwrite deletes a non-empty OutputDir instead of failing.
	AllowOverwrite bool

	// Layout supplies every well-known name. The zero value means
	// layout.Default().
	Layout layout.Layout
}

// Result describes a finished build.
type Result struct {
	ArchivePath string
	StagingDir  string
	Manifest    *collection.Manifest
	ArchiveSize int64
	Duration    time.Duration
}

// Pipeline builds one archive.
type Pipeline struct {
	opts    Options
	logger  *logging.Logger
	state   State
	staging string
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	if opts.Layout == (layout.Layout{}) {
		opts.Layout = layout.Default()
	}
	return &Pipeline{
		opts:   opts,
		logger: logging.Get("build"),
		state:  StateInit,
	}
}

// State returns the step the pipeline reached. After a failure it is
// StateFailed.
func (p *Pipeline) State() State {
	return p.state
}

// BuildShaderpack packs the single shaderpack in dir. No discovery runs:
// dir must hold the manifest itself.
func (p *Pipeline) BuildShaderpack(dir string) (*Result, error) {
	res, err := p.run(p.opts.Layout.ShaderArchive, func() (*collection.Manifest, []string, error) {
		path := filepath.Join(dir, p.opts.Layout.ShaderpackManifest)
		m, err := shaderpack.Load(path)
		if err != nil {
			return nil, nil, err
		}
		desc := m.Description
		return collection.NewManifest(m.Name, &desc, m.ReShadeVersion), []string{dir}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("building shaderpack %s: %w", dir, err)
	}
	return res, nil
}

// BuildCollection packs every shaderpack found under the configuration's
// search directory, resolved against cfgDir.
func (p *Pipeline) BuildCollection(cfg *collection.Configuration, cfgDir string) (*Result, error) {
	res, err := p.run(p.opts.Layout.CollectionArchive, func() (*collection.Manifest, []string, error) {
		root, err := shaderpack.Canonicalize(cfg.SearchRoot(cfgDir))
		if err != nil {
			return nil, nil, fmt.Errorf("resolving search directory: %w", err)
		}

		dirs, err := discovery.New(p.opts.Layout).Discover(root, cfg.SearchDirectory.MaxDepth)
		if err != nil {
			return nil, nil, err
		}
		if len(dirs) == 0 {
			return nil, nil, fmt.Errorf("%w in %s or up to %d directories below it",
				ErrNoManifestsFound, root, cfg.SearchDirectory.MaxDepth)
		}

		p.logger.Debug("discovered shaderpacks", "root", root, "count", len(dirs))
		return collection.NewManifest(cfg.Name, cfg.Description, cfg.ReShadeVersion), dirs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("building collection %s: %w", cfg.Name, err)
	}
	return res, nil
}

// members yields the aggregate manifest to fill and the member directories
// in order.
type members func() (*collection.Manifest, []string, error)

func (p *Pipeline) run(archiveName string, find members) (*Result, error) {
	if p.state != StateInit {
		return nil, ErrPipelineUsed
	}
	start := time.Now()

	res, err := p.steps(archiveName, find)
	if err != nil {
		p.logger.Error("build failed", "state", p.state, "err", err)
		p.state = StateFailed
		return nil, err
	}

	res.Duration = time.Since(start)
	p.state = StateDone
	return res, nil
}

func (p *Pipeline) steps(archiveName string, find members) (*Result, error) {
	if err := p.prepareOutput(); err != nil {
		return nil, err
	}
	p.state = StateOutputPrepared

	agg, dirs, err := find()
	if err != nil {
		return nil, err
	}
	p.state = StateDiscovered

	for _, dir := range dirs {
		member, err := p.stageMember(dir)
		if err != nil {
			return nil, err
		}
		agg.Add(member)
	}

	p.logger.Info("writing aggregate manifest", "file", p.opts.Layout.CollectionManifest, "shaderpacks", len(agg.ShaderPacks))
	if err := agg.Write(filepath.Join(p.staging, p.opts.Layout.CollectionManifest)); err != nil {
		return nil, err
	}
	p.state = StateAggregated

	archive := filepath.Join(p.opts.OutputDir, archiveName)
	size, err := WriteArchive(p.staging, archive)
	if err != nil {
		return nil, err
	}
	p.state = StateArchived
	p.logger.Info("wrote archive", "path", archive, "bytes", size)

	return &Result{
		ArchivePath: archive,
		StagingDir:  p.staging,
		Manifest:    agg,
		ArchiveSize: size,
	}, nil
}

// prepareOutput empties (or refuses to touch) the output directory and
// creates the staging directory inside it.
func (p *Pipeline) prepareOutput() error {
	entries, err := os.ReadDir(p.opts.OutputDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading output directory: %w", err)
	case len(entries) > 0:
		if !p.opts.AllowOverwrite {
			return fmt.Errorf("%w: %s", ErrOutputNotEmpty, p.opts.OutputDir)
		}
		p.logger.Debug("removing existing output", "dir", p.opts.OutputDir)
		if err := os.RemoveAll(p.opts.OutputDir); err != nil {
			return fmt.Errorf("removing output directory: %w", err)
		}
	}

	p.staging = filepath.Join(p.opts.OutputDir, p.opts.Layout.StagingDir)
	if err := os.MkdirAll(p.staging, 0o755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	return nil
}

// stageMember loads the manifest in dir and copies its files into staging.
func (p *Pipeline) stageMember(dir string) (collection.MemberSummary, error) {
	m, err := shaderpack.Load(filepath.Join(dir, p.opts.Layout.ShaderpackManifest))
	if err != nil {
		return collection.MemberSummary{}, err
	}
	p.state = StateLoaded
	p.logger.Info("loaded shaderpack", "pack", m.Name, "authors", strings.Join(m.Authors, ", "), "reshade", m.ReShadeVersion)

	for _, c := range shaderpack.Categories {
		out := filepath.Join(p.staging, p.categoryDir(c))
		for _, d := range m.Declarations(c) {
			p.logger.Info("packing", "pack", m.Name, "kind", c, "source", d.Source)
			if err := shaderpack.CopyToOutput(d, dir, out); err != nil {
				return collection.MemberSummary{}, fmt.Errorf("staging %s: %w", m.Name, err)
			}
		}
	}

	if m.LicenseFile != nil {
		p.logger.Info("writing license", "pack", m.Name, "source", *m.LicenseFile)
		license := shaderpack.FileDeclaration{
			Source: *m.LicenseFile,
			Output: p.opts.Layout.LicensePrefix + licenseName(m.Name),
		}
		out := filepath.Join(p.staging, p.opts.Layout.LicenseDir)
		if err := shaderpack.CopyToOutput(license, dir, out); err != nil {
			return collection.MemberSummary{}, fmt.Errorf("staging %s license: %w", m.Name, err)
		}
	}

	p.state = StateStaged
	return collection.Summarize(m), nil
}

func (p *Pipeline) categoryDir(c shaderpack.Category) string {
	switch c {
	case shaderpack.CategoryShaders:
		return p.opts.Layout.ShaderDir
	case shaderpack.CategoryTextures:
		return p.opts.Layout.TextureDir
	case shaderpack.CategoryPresets:
		return p.opts.Layout.PresetDir
	default:
		return p.opts.Layout.AddonDir
	}
}

// licenseName keeps a member name from introducing directories.
func licenseName(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
