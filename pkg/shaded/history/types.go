// Package history records finished builds as JSON files so past archives can
// be listed and inspected.
package history

import "time"

// Kind is the type of build a record describes.
type Kind string

const (
	// KindShaderpack is a single-shaderpack build.
	KindShaderpack Kind = "shaderpack"
	// KindCollection is a collection build.
	KindCollection Kind = "collection"
)

// Record is one finished build.
type Record struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Kind        Kind          `json:"kind"`
	Name        string        `json:"name"`
	Source      string        `json:"source"`
	ArchivePath string        `json:"archive_path"`
	ArchiveSize int64         `json:"archive_size"`
	Duration    time.Duration `json:"duration"`
	Members     []Member      `json:"members"`
}

// Member summarizes one shaderpack included in a build.
type Member struct {
	Name         string `json:"name"`
	ShaderCount  int    `json:"shader_count"`
	TextureCount int    `json:"texture_count"`
	PresetCount  int    `json:"preset_count"`
	AddonCount   int    `json:"addon_count"`
}

// Files returns the total number of declared files across members.
func (r *Record) Files() int {
	n := 0
	for _, m := range r.Members {
		n += m.ShaderCount + m.TextureCount + m.PresetCount + m.AddonCount
	}
	return n
}
