// Package discovery finds shaderpack directories below a search root.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/pictomancers/shaded/pkg/shaded/layout"
	"github.com/pictomancers/shaded/pkg/shaded/logging"
)

// ErrNotDirectory is returned when the search root is not a directory.
var ErrNotDirectory = errors.New("search root is not a directory")

// Discoverer walks a tree looking for directories that hold a shaderpack
// manifest.
type Discoverer struct {
	layout layout.Layout
	logger *logging.Logger
}

// matches collects qualifying directories from walk callbacks.
type matches struct {
	mu   sync.Mutex
	dirs []string
}

func (m *matches) add(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

func (m *matches) sorted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.dirs)
	slices.Sort(out)
	if out == nil {
		out = []string{}
	}
	return out
}

// New creates a Discoverer using the manifest filename from l.
func New(l layout.Layout) *Discoverer {
	return &Discoverer{
		layout: l,
		logger: logging.Get("discovery"),
	}
}

// Discover returns every directory at most maxDepth levels below root that
// contains a shaderpack manifest. The root itself is depth 0. Results are
// sorted lexically so repeated runs over an unchanged tree agree.
//
// Entries that cannot be read are skipped. Only a missing or non-directory
// root is an error.
func (d *Discoverer) Discover(root string, maxDepth int) ([]string, error) {
	root, err := d.validateRoot(root)
	if err != nil {
		return nil, err
	}

	found := &matches{}

	// fastwalk treats MaxDepth 0 as unlimited; depth 0 here means the root only.
	if maxDepth <= 0 {
		d.check(found, root)
		return found.sorted(), nil
	}

	conf := fastwalk.Config{
		Follow:     false,
		Sort:       fastwalk.SortLexical,
		NumWorkers: 1,
		MaxDepth:   maxDepth,
	}

	if err := fastwalk.Walk(&conf, root, d.walkCallback(found, root, maxDepth)); err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return found.sorted(), nil
}

func (d *Discoverer) validateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving search root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("search root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return abs, nil
}

func (d *Discoverer) walkCallback(found *matches, root string, maxDepth int) fs.WalkDirFunc {
	return func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			d.logger.Debug("skipping unreadable entry", "path", path, "err", err)
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if depth(root, path) > maxDepth {
			return fastwalk.SkipDir
		}
		d.check(found, path)
		return nil
	}
}

// check records dir when it holds a manifest that is not itself a directory.
func (d *Discoverer) check(found *matches, dir string) {
	info, err := os.Stat(filepath.Join(dir, d.layout.ShaderpackManifest))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			d.logger.Debug("skipping unreadable manifest", "dir", dir, "err", err)
		}
		return
	}
	if info.IsDir() {
		return
	}

	d.logger.Debug("found shaderpack", "dir", dir)
	found.add(dir)
}

// depth counts path separators between root and path.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	n := 1
	for _, r := range rel {
		if r == filepath.Separator {
			n++
		}
	}
	return n
}
