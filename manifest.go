package labframe

import (
	"fmt"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/labframe/internal/fsutil"
)

// maxManifestSize caps manifest files at 1MB.
const maxManifestSize = 1 * 1024 * 1024

// Manifest is a declarative scan configuration kept next to a data
// directory: the filename glob measurement files match and the coordinate
// extraction rules to apply. It lets a script say
//
//	man, _ := labframe.LoadManifest("data/scan.yaml")
//	m, _ := man.Load("data")
//
// instead of repeating patterns inline.
type Manifest struct {
	// Pattern is the filename glob; DefaultPattern when empty.
	Pattern string `yaml:"pattern"`

	// Coordinates maps new coordinate names to filename extraction
	// patterns.
	Coordinates map[string]string `yaml:"coordinates"`
}

// LoadManifest reads and validates a YAML scan manifest.
func LoadManifest(path string) (*Manifest, error) {
	return LoadManifestFS(fsutil.OSFileSystem{}, path)
}

// LoadManifestFS is LoadManifest over an explicit filesystem.
func LoadManifestFS(fsys fsutil.FileSystem, path string) (*Manifest, error) {
	if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("manifest must have .yaml or .yml extension, got %q", ext)
	}
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat manifest %s: %w", path, err)
	}
	if info.Size() > maxManifestSize {
		return nil, fmt.Errorf("manifest %s too large: %d bytes (max %d)", path, info.Size(), maxManifestSize)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var man Manifest
	if err := yaml.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := man.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &man, nil
}

// Validate checks that coordinate names are non-empty and every extraction
// pattern compiles.
func (man *Manifest) Validate() error {
	if man.Pattern != "" {
		if _, err := filepath.Match(man.Pattern, "probe"); err != nil {
			return fmt.Errorf("bad pattern %q: %w", man.Pattern, err)
		}
	}
	for name, pattern := range man.Coordinates {
		if name == "" {
			return fmt.Errorf("coordinate rule with empty name")
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("coordinate %q: bad pattern %q: %w", name, pattern, err)
		}
	}
	return nil
}

// Load assembles the given directory using the manifest's pattern and
// coordinate rules. Extra options are appended after the manifest-derived
// ones, so callers can still supply instructions or a filesystem.
func (man *Manifest) Load(dir string, opts ...Option) (*Measurement, error) {
	pattern := man.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	all := append([]Option{WithPattern(pattern)}, opts...)
	return LoadMany(dir, man.Coordinates, all...)
}
