package registry

import "errors"

var (
	ErrBuildServer      = errors.New("failed to build server")
	ErrCreateRoute      = errors.New("failed to create route")
	ErrMethodNotAllowed = errors.New("method not allowed")
)
