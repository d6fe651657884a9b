// Package shaderpack provides the shaderpack manifest model along with the
// operations that act on a single manifest: loading, saving, formatting and
// copying declared files into a staging tree.
package shaderpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest is the in-memory form of a shaderpack manifest file.
//
// Nil slices mean the list was absent (or null) in the file; an empty
// non-nil slice means it was present but empty.
type Manifest struct {
	ManifestVersion uint8             `json:"ManifestVersion"`
	ReShadeVersion  uint8             `json:"ReShadeVersion"`
	Name            string            `json:"Name"`
	Authors         []string          `json:"Authors"`
	Description     string            `json:"Description"`
	LicenseFile     *string           `json:"LicenseFile"`
	Images          []string          `json:"Images"`
	Shaders         []FileDeclaration `json:"Shaders"`
	Textures        []FileDeclaration `json:"Textures"`
	Presets         []FileDeclaration `json:"Presets"`
	Addons          []FileDeclaration `json:"Addons"`
}

// FileDeclaration pairs a source path, relative to the manifest directory,
// with an output path, relative to the category directory of the staging tree.
type FileDeclaration struct {
	Source string `json:"Source"`
	Output string `json:"Output"`
}

// Less orders declarations by source path, then output path.
func (d FileDeclaration) Less(other FileDeclaration) bool {
	if d.Source != other.Source {
		return d.Source < other.Source
	}
	return d.Output < other.Output
}

// Category identifies one of the four declaration lists.
type Category int

// Declaration list categories in manifest order.
const (
	CategoryShaders Category = iota
	CategoryTextures
	CategoryPresets
	CategoryAddons
)

// Categories lists every category in the order they are processed.
var Categories = []Category{CategoryShaders, CategoryTextures, CategoryPresets, CategoryAddons}

// String returns the singular, lower-case category name.
func (c Category) String() string {
	switch c {
	case CategoryShaders:
		return "shader"
	case CategoryTextures:
		return "texture"
	case CategoryPresets:
		return "preset"
	case CategoryAddons:
		return "addon"
	default:
		return "unknown"
	}
}

// Title returns the plural, capitalized category name used in reports.
func (c Category) Title() string {
	switch c {
	case CategoryShaders:
		return "Shaders"
	case CategoryTextures:
		return "Textures"
	case CategoryPresets:
		return "Presets"
	case CategoryAddons:
		return "Addons"
	default:
		return "Unknown"
	}
}

// Declarations returns the declaration list for c. A nil result means the
// list is absent from the manifest.
func (m *Manifest) Declarations(c Category) []FileDeclaration {
	if list := m.list(c); list != nil {
		return *list
	}
	return nil
}

func (m *Manifest) list(c Category) *[]FileDeclaration {
	switch c {
	case CategoryShaders:
		return &m.Shaders
	case CategoryTextures:
		return &m.Textures
	case CategoryPresets:
		return &m.Presets
	case CategoryAddons:
		return &m.Addons
	default:
		return nil
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shaderpack manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing shaderpack manifest %s: %w", path, err)
	}
	return &m, nil
}

// Save writes m to path as indented JSON, replacing any existing file.
func (m *Manifest) Save(path string) error {
	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding shaderpack manifest: %w", err)
	}
	return WriteFileAtomic(path, data)
}

// Marshal encodes v as two-space indented JSON without HTML escaping,
// terminated by a newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFileAtomic writes data next to path and renames it into place. An
// existing file keeps its permission bits; a new one gets 0644.
func WriteFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting temp file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Canonicalize resolves path to an absolute path with every symlink
// evaluated. It fails if any component does not exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
