package scripts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/robbyt/go-polyscript/platform/script/loader"
)

// newLoader picks a polyscript loader for inline code, a local path or an http(s) URL.
func newLoader(code, uri string) (loader.Loader, error) {
	switch {
	case code != "" && uri != "":
		return nil, ErrBothCodeAndURI
	case code != "":
		return loader.NewFromString(code)
	case strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://"):
		return loader.NewFromHTTP(uri)
	case uri != "":
		path := strings.TrimPrefix(uri, "file://")
		// polyscript only accepts absolute disk paths
		if !filepath.IsAbs(path) {
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve relative path %q: %w", path, err)
			}
			path = abs
		}
		return loader.NewFromDisk(path)
	default:
		return nil, ErrMissingCodeAndURI
	}
}
