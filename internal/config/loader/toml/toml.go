package toml

import (
	"fmt"

	"github.com/atlanticdynamic/mcpregistry/internal/interpolation"
	gotoml "github.com/pelletier/go-toml/v2"
)

// SupportedVersion is the only config version this loader accepts.
const SupportedVersion = "v1"

// TomlLoader loads TOML configuration into a document tree.
type TomlLoader struct {
	source []byte
	lookup interpolation.LookupFunc
}

// NewTomlLoader creates a new TOML configuration loader that interpolates against the
// process environment.
func NewTomlLoader(source []byte) *TomlLoader {
	return &TomlLoader{source: source}
}

// WithLookup replaces the environment used for ${VAR} interpolation.
func (l *TomlLoader) WithLookup(lookup interpolation.LookupFunc) *TomlLoader {
	l.lookup = lookup
	return l
}

// Load parses the source, checks the version and expands environment references.
func (l *TomlLoader) Load() (map[string]any, error) {
	if len(l.source) == 0 {
		return nil, ErrNoSourceData
	}

	var tree map[string]any
	if err := gotoml.Unmarshal(l.source, &tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseToml, err)
	}

	version, _ := tree["version"].(string)
	if version == "" {
		version = SupportedVersion
		tree["version"] = version
	}
	if version != SupportedVersion {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigVer, version)
	}

	if err := interpolation.ExpandTree(tree, l.lookup); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInterpolation, err)
	}

	return tree, nil
}
