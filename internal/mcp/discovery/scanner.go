package discovery

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
)

// Scanner walks the configured directories and parses manifest files.
type Scanner struct {
	settings Settings
	cacheTTL time.Duration
	logger   *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogHandler sets the handler for the scanner's logger.
func WithLogHandler(handler slog.Handler) ScannerOption {
	return func(s *Scanner) {
		if handler != nil {
			s.logger = slog.New(handler).WithGroup("discovery.Scanner")
		}
	}
}

// WithCacheTTL sets how long cached scan results stay valid.
func WithCacheTTL(ttl time.Duration) ScannerOption {
	return func(s *Scanner) {
		s.cacheTTL = ttl
	}
}

// NewScanner creates a scanner for settings.
func NewScanner(settings Settings, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		settings: settings,
		cacheTTL: DefaultCacheTTL,
		logger:   slog.Default().WithGroup("discovery.Scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the settings the scanner was created with.
func (s *Scanner) Settings() Settings {
	return s.settings
}

type manifestFile struct {
	path    string
	size    int64
	modTime time.Time
}

// Roots returns the absolute scan directories that exist.
func (s *Scanner) Roots() []string {
	roots := make([]string, 0, len(s.settings.ScanDirs))
	for _, dir := range s.settings.ScanDirs {
		root := dir
		if !filepath.IsAbs(root) {
			root = filepath.Join(s.settings.BasePath, dir)
		}
		root = filepath.Clean(root)
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			s.logger.Debug("Skipping missing scan directory", "dir", root)
			continue
		}
		if !slices.Contains(roots, root) {
			roots = append(roots, root)
		}
	}
	return roots
}

// Excluded reports whether a directory with the given base name is skipped.
func (s *Scanner) Excluded(name string) bool {
	return slices.Contains(s.settings.ExcludeDirs, name)
}

// files lists every manifest once, sorted by path. Overlapping scan dirs are deduplicated.
func (s *Scanner) files(ctx context.Context) ([]manifestFile, error) {
	seen := make(map[string]bool)
	var found []manifestFile

	for _, root := range s.Roots() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Debug("Skipping unreadable path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				if path != root && s.Excluded(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), ManifestSuffix) || seen[path] {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			seen[path] = true
			found = append(found, manifestFile{path: path, size: info.Size(), modTime: info.ModTime()})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
		}
	}

	slices.SortFunc(found, func(a, b manifestFile) int { return strings.Compare(a.path, b.path) })
	return found, nil
}

// fingerprint identifies a scan by its settings and the identity of every manifest found.
func (s *Scanner) fingerprint(files []manifestFile) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00",
		s.settings.BasePath,
		strings.Join(s.settings.ScanDirs, ","),
		strings.Join(s.settings.ExcludeDirs, ","))
	for _, f := range files {
		fmt.Fprintf(h, "%s\x00%d\x00%d\x00", f.path, f.size, f.modTime.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Scan returns the aggregate of every manifest in deterministic path order. When a cache is
// configured, an unchanged tree is answered from the cache without parsing.
func (s *Scanner) Scan(ctx context.Context) (*config.Manifest, error) {
	files, err := s.files(ctx)
	if err != nil {
		return nil, err
	}

	key := s.fingerprint(files)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	manifest := &config.Manifest{}
	for _, f := range files {
		m, err := ParseManifestFile(f.path)
		if err != nil {
			return nil, err
		}
		Merge(manifest, m)
	}
	s.logger.Debug("Scanned manifests", "files", len(files), "tools", len(manifest.Tools),
		"resources", len(manifest.Resources), "prompts", len(manifest.Prompts))

	s.toCache(ctx, key, manifest)
	return manifest, nil
}

func (s *Scanner) fromCache(ctx context.Context, key string) (*config.Manifest, bool) {
	if s.settings.Cache == nil {
		return nil, false
	}

	data, err := s.settings.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("Discovery cache read failed", "error", err)
		}
		return nil, false
	}

	manifest := &config.Manifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		s.logger.Warn("Discarding undecodable cache entry", "error", err)
		_ = s.settings.Cache.Delete(ctx, key)
		return nil, false
	}
	return manifest, true
}

func (s *Scanner) toCache(ctx context.Context, key string, manifest *config.Manifest) {
	if s.settings.Cache == nil {
		return
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		s.logger.Warn("Failed to encode manifest for cache", "error", err)
		return
	}
	if err := s.settings.Cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("Discovery cache write failed", "error", err)
	}
}

// ParseManifestFile decodes one manifest. Unknown keys are rejected.
func ParseManifestFile(path string) (*config.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes manifest bytes.
func ParseManifest(data []byte) (*config.Manifest, error) {
	m := &config.Manifest{}
	dec := gotoml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return m, nil
}

// Merge appends src's declarations to dst.
func Merge(dst *config.Manifest, src *config.Manifest) {
	if src == nil {
		return
	}
	dst.Tools = append(dst.Tools, src.Tools...)
	dst.Resources = append(dst.Resources, src.Resources...)
	dst.ResourceTemplates = append(dst.ResourceTemplates, src.ResourceTemplates...)
	dst.Prompts = append(dst.Prompts, src.Prompts...)
}
