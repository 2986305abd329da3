package discovery

import "errors"

var (
	ErrInvalidManifest = errors.New("invalid discovery manifest")
	ErrScanFailed      = errors.New("discovery scan failed")
	ErrCacheMiss       = errors.New("cache miss")
)
