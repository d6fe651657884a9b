// Package collection provides the collection configuration read before a
// collection build and the aggregate manifest written into every archive.
package collection

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Configuration describes how to build a collection. It is read from a TOML
// file and never written into the artifact.
type Configuration struct {
	ConfigurationVersion uint8           `toml:"configuration_version"`
	ReShadeVersion       uint8           `toml:"reshade_version"`
	Name                 string          `toml:"name"`
	Description          *string         `toml:"description"`
	SearchDirectory      SearchDirectory `toml:"search_directory"`
}

// SearchDirectory is where shaderpacks are discovered, relative to the
// directory holding the configuration file.
type SearchDirectory struct {
	Path     string `toml:"path"`
	MaxDepth int    `toml:"max_depth"`
}

// LoadConfiguration reads and parses the TOML configuration at path.
// Unknown keys are rejected so typos surface as errors.
func LoadConfiguration(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading collection configuration: %w", err)
	}

	var cfg Configuration
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing collection configuration %s: %w", path, err)
	}

	if cfg.SearchDirectory.MaxDepth < 0 {
		return nil, fmt.Errorf("parsing collection configuration %s: search_directory.max_depth must not be negative", path)
	}

	return &cfg, nil
}

// SearchRoot returns the search directory resolved against configDir.
func (c *Configuration) SearchRoot(configDir string) string {
	if filepath.IsAbs(c.SearchDirectory.Path) {
		return filepath.Clean(c.SearchDirectory.Path)
	}
	return filepath.Join(configDir, c.SearchDirectory.Path)
}
