// Package discovery finds MCP components declared in *.mcp.toml manifest files under a
// server's base path and keeps a live server in sync with them.
package discovery

import (
	"os"
	"slices"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
)

// ManifestSuffix marks files the scanner parses.
const ManifestSuffix = ".mcp.toml"

var (
	DefaultScanDirs    = []string{".", "src", "app"}
	DefaultExcludeDirs = []string{"vendor", "tests"}
)

// Settings is the resolved discovery configuration handed to the engine builder.
type Settings struct {
	BasePath    string
	ScanDirs    []string
	ExcludeDirs []string
	// Cache is optional.
	Cache Cache
	Watch bool
}

// Binder receives the resolved settings. The engine builder implements it.
type Binder interface {
	SetDiscovery(settings Settings)
}

// Configure always binds discovery settings, filling in defaults for anything the table leaves
// out. A cache name that does not resolve to a Cache is dropped.
func Configure(cfg *config.Discovery, lk lookup.Lookup, b Binder) {
	if cfg == nil {
		cfg = &config.Discovery{}
	}

	settings := Settings{
		BasePath:    cfg.BasePath,
		ScanDirs:    slices.Clone(cfg.ScanDirs),
		ExcludeDirs: slices.Clone(cfg.ExcludeDirs),
		Watch:       cfg.Watch,
	}
	if settings.BasePath == "" {
		if wd, err := os.Getwd(); err == nil {
			settings.BasePath = wd
		}
	}
	if settings.ScanDirs == nil {
		settings.ScanDirs = slices.Clone(DefaultScanDirs)
	}
	if settings.ExcludeDirs == nil {
		settings.ExcludeDirs = slices.Clone(DefaultExcludeDirs)
	}
	if c, ok := lookup.Resolve[Cache](lk, cfg.Cache); ok {
		settings.Cache = c
	}

	b.SetDiscovery(settings)
}
