// Package capability evaluates the feature registry against an anchor set.
//
// The registry is an immutable, versioned table mapping feature ids to the
// anchors they require. It is loaded from YAML (an embedded default or a
// user-supplied file) and injected into a Resolver; nothing here is global
// mutable state.
package capability

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultRegistryYAML []byte

// ErrInvalidRegistry is returned when a registry document fails validation.
var ErrInvalidRegistry = errors.New("invalid capability registry")

// Feature is one registry entry.
type Feature struct {
	ID              string   `yaml:"id"`
	RequiredAnchors []string `yaml:"requiredAnchors"`
}

// registryFile is the on-disk registry layout.
type registryFile struct {
	Version  string    `yaml:"version"`
	Features []Feature `yaml:"features"`
}

// Registry is an immutable, ordered feature table.
type Registry struct {
	version  string
	features []Feature
}

// NewRegistry validates and copies the given features.
func NewRegistry(version string, features []Feature) (*Registry, error) {
	if version == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidRegistry)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: at least one feature is required", ErrInvalidRegistry)
	}

	seen := make(map[string]bool, len(features))
	copied := make([]Feature, 0, len(features))
	for i, f := range features {
		if f.ID == "" {
			return nil, fmt.Errorf("%w: features[%d]: id is required", ErrInvalidRegistry, i)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("%w: features[%d]: duplicate id %q", ErrInvalidRegistry, i, f.ID)
		}
		seen[f.ID] = true
		if len(f.RequiredAnchors) == 0 {
			return nil, fmt.Errorf("%w: feature %q: requiredAnchors must be non-empty", ErrInvalidRegistry, f.ID)
		}
		for j, anchorID := range f.RequiredAnchors {
			if anchorID == "" {
				return nil, fmt.Errorf("%w: feature %q: requiredAnchors[%d] is empty", ErrInvalidRegistry, f.ID, j)
			}
		}
		copied = append(copied, Feature{ID: f.ID, RequiredAnchors: slices.Clone(f.RequiredAnchors)})
	}
	return &Registry{version: version, features: copied}, nil
}

// ParseRegistry decodes a registry YAML document. Unknown fields are
// rejected.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}
	return NewRegistry(file.Version, file.Features)
}

// LoadRegistry reads a registry file. An empty path selects the default.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capability registry: %w", err)
	}
	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// DefaultRegistry returns the embedded registry.
func DefaultRegistry() *Registry {
	reg, err := ParseRegistry(defaultRegistryYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded capability registry: %v", err))
	}
	return reg
}

// Version returns the registry version.
func (r *Registry) Version() string {
	return r.version
}

// Features returns a copy of the features in registry order.
func (r *Registry) Features() []Feature {
	out := make([]Feature, len(r.features))
	for i, f := range r.features {
		out[i] = Feature{ID: f.ID, RequiredAnchors: slices.Clone(f.RequiredAnchors)}
	}
	return out
}
