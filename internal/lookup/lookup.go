// Package lookup resolves named collaborators (loggers, stores, caches, handlers) for the
// server builder. Every optional binding follows the same rule: attach only when the lookup
// has the name and the value has the expected type.
package lookup

// Well-known names resolved when a server entry does not name its own collaborator.
const (
	DefaultLogger          = "logger"
	DefaultEventDispatcher = "event_dispatcher"
)

// Lookup is the read side of a collaborator container.
type Lookup interface {
	Has(name string) bool
	Get(name string) (any, bool)
}

// Resolve returns the collaborator registered under name if it exists and is a T.
// An empty name, a missing entry, or a type mismatch all report false.
func Resolve[T any](lk Lookup, name string) (T, bool) {
	var zero T
	if lk == nil || name == "" || !lk.Has(name) {
		return zero, false
	}

	v, ok := lk.Get(name)
	if !ok {
		return zero, false
	}

	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Empty is a Lookup that never resolves anything.
type Empty struct{}

func (Empty) Has(string) bool { return false }

func (Empty) Get(string) (any, bool) { return nil, false }
