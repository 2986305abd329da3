package toml

import "errors"

var (
	ErrNoSourceData         = errors.New("no source data provided")
	ErrParseToml            = errors.New("failed to parse TOML")
	ErrUnsupportedConfigVer = errors.New("unsupported config version")
	ErrInterpolation        = errors.New("failed to interpolate environment variables")
)
