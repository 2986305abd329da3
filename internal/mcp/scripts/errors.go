package scripts

import "errors"

var (
	ErrMissingCodeAndURI = errors.New("either code or uri must be specified")
	ErrBothCodeAndURI    = errors.New("code and uri cannot both be specified")
	ErrLoaderCreation    = errors.New("failed to create script loader")
	ErrCompilationFailed = errors.New("script compilation failed")
	ErrInvalidArguments  = errors.New("tool arguments must be a JSON object")
)
