// Package loader reads configuration sources into a generic document tree, applying version
// checks and environment interpolation before the domain model is decoded.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atlanticdynamic/mcpregistry/internal/config/loader/toml"
)

type LoaderFunc func([]byte) Loader

// Loader handles loading configuration from various sources
type Loader interface {
	// Load parses the source and returns the interpolated document tree.
	Load() (map[string]any, error)
}

// NewTomlLoader is the LoaderFunc for TOML sources.
func NewTomlLoader(data []byte) Loader {
	return toml.NewTomlLoader(data)
}

// NewLoaderFromBytes creates a new Loader with the provided bytes
func NewLoaderFromBytes(data []byte, lodFunc LoaderFunc) (Loader, error) {
	if len(data) == 0 {
		return nil, ErrNoSourceProvided
	}
	return lodFunc(data), nil
}

// NewLoaderFromReader creates a new Loader from an io.Reader
func NewLoaderFromReader(reader io.Reader, lodFunc LoaderFunc) (Loader, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}
	return NewLoaderFromBytes(data, lodFunc)
}

// NewLoaderFromFilePath creates a new Loader from a file path, choosing the format by extension.
func NewLoaderFromFilePath(filePath string) (Loader, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, FormatFileError(fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err), filePath)
	}

	switch ext := filepath.Ext(filePath); ext {
	case ".toml":
		return NewLoaderFromBytes(data, NewTomlLoader)
	default:
		return nil, FormatFileError(fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext), filePath)
	}
}
