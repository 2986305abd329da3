package lookup

import "errors"

var (
	ErrEmptyName     = errors.New("collaborator name cannot be empty")
	ErrNilValue      = errors.New("collaborator value cannot be nil")
	ErrDuplicateName = errors.New("collaborator already registered")
)
