package config

import "errors"

var (
	ErrFailedToLoadConfig      = errors.New("failed to load config")
	ErrFailedToValidateConfig  = errors.New("failed to validate config")
	ErrUnsupportedConfigVer    = errors.New("unsupported config version")
	ErrDecodeConfig            = errors.New("failed to decode config")
	ErrEmptyID                 = errors.New("empty ID")
	ErrDuplicateID             = errors.New("duplicate ID")
	ErrMissingField            = errors.New("missing required field")
	ErrInvalidValue            = errors.New("invalid value")
	ErrUnknownCollaboratorType = errors.New("unknown collaborator type")
	ErrUnknownListener         = errors.New("unknown listener")
	ErrDuplicateRoute          = errors.New("duplicate route")
	ErrDuplicateCommand        = errors.New("duplicate stdio command")
)
