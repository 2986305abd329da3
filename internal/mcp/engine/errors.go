package engine

import "errors"

var (
	ErrInvalidRegistration        = errors.New("invalid registration")
	ErrUnsupportedProtocolVersion = errors.New("unsupported protocol version")
	ErrInvalidPaginationLimit     = errors.New("pagination limit must not be negative")
	ErrDiscoveryFailed            = errors.New("component discovery failed")
	ErrLoaderFailed               = errors.New("loader failed")
	ErrMissingSessionID           = errors.New("session id is required")
)
