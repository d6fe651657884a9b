package collection

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pictomancers/shaded/pkg/shaded/shaderpack"
)

// ManifestVersion is the only aggregate manifest version ever written.
const ManifestVersion uint8 = 1

// Manifest is the aggregate manifest written at the root of an archive.
// Members keep the order in which their shaderpacks were discovered.
type Manifest struct {
	ManifestVersion uint8           `json:"ManifestVersion"`
	ReShadeVersion  uint8           `json:"ReShadeVersion"`
	Name            string          `json:"Name"`
	Description     *string         `json:"Description"`
	ShaderPacks     []MemberSummary `json:"ShaderPacks"`
}

// MemberSummary describes one shaderpack included in an archive.
type MemberSummary struct {
	Name         string   `json:"Name"`
	Authors      []string `json:"Authors"`
	Description  string   `json:"Description"`
	Images       []string `json:"Images"`
	ShaderCount  int      `json:"ShaderCount"`
	TextureCount int      `json:"TextureCount"`
	PresetCount  int      `json:"PresetCount"`
	AddonCount   int      `json:"AddonCount"`
}

// NewManifest starts an empty aggregate manifest.
func NewManifest(name string, description *string, reshadeVersion uint8) *Manifest {
	return &Manifest{
		ManifestVersion: ManifestVersion,
		ReShadeVersion:  reshadeVersion,
		Name:            name,
		Description:     description,
		ShaderPacks:     []MemberSummary{},
	}
}

// Summarize builds the member summary for a loaded shaderpack manifest.
func Summarize(m *shaderpack.Manifest) MemberSummary {
	authors := m.Authors
	if authors == nil {
		authors = []string{}
	}
	return MemberSummary{
		Name:         m.Name,
		Authors:      authors,
		Description:  m.Description,
		Images:       m.Images,
		ShaderCount:  len(m.Shaders),
		TextureCount: len(m.Textures),
		PresetCount:  len(m.Presets),
		AddonCount:   len(m.Addons),
	}
}

// Add appends a member. Callers add members in discovery order.
func (m *Manifest) Add(member MemberSummary) {
	m.ShaderPacks = append(m.ShaderPacks, member)
}

// Write serializes the manifest to path.
func (m *Manifest) Write(path string) error {
	data, err := shaderpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding collection manifest: %w", err)
	}
	if err := shaderpack.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing collection manifest: %w", err)
	}
	return nil
}

// ReadManifest parses an aggregate manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading collection manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing collection manifest %s: %w", path, err)
	}
	return &m, nil
}
