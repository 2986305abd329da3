package session

import (
	"github.com/gofrs/uuid/v5"
)

// UUIDFactory mints time-ordered version 6 UUIDs.
type UUIDFactory struct{}

// NewID implements Factory.
func (UUIDFactory) NewID() string {
	id, err := uuid.NewV6()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}
