package config

import (
	"bytes"
	"fmt"

	"github.com/atlanticdynamic/mcpregistry/internal/config/loader"
	gotoml "github.com/pelletier/go-toml/v2"
)

// NewConfig loads and validates configuration from a file.
func NewConfig(filePath string) (*Config, error) {
	ld, err := loader.NewLoaderFromFilePath(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}
	return newFromLoader(ld)
}

// NewConfigFromBytes loads and validates configuration from TOML bytes.
func NewConfigFromBytes(data []byte) (*Config, error) {
	ld, err := loader.NewLoaderFromBytes(data, loader.NewTomlLoader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}
	return newFromLoader(ld)
}

func newFromLoader(ld loader.Loader) (*Config, error) {
	tree, err := ld.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	cfg, err := FromTree(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToValidateConfig, err)
	}
	return cfg, nil
}

// FromTree decodes an interpolated document tree into the domain model. Unknown keys are
// rejected so typos surface at load time.
func FromTree(tree map[string]any) (*Config, error) {
	encoded, err := gotoml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeConfig, err)
	}

	cfg := &Config{}
	dec := gotoml.NewDecoder(bytes.NewReader(encoded))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeConfig, err)
	}
	return cfg, nil
}
