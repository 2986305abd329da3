package lookup

import (
	"fmt"
	"slices"
	"sync"
)

var _ Lookup = (*Container)(nil)

// Container is a concurrency-safe registry of named collaborators.
type Container struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{entries: make(map[string]any)}
}

// Register stores v under name, rejecting empty names, nil values and duplicates.
func (c *Container) Register(name string, v any) error {
	if name == "" {
		return ErrEmptyName
	}
	if v == nil {
		return fmt.Errorf("%w: %s", ErrNilValue, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	c.entries[name] = v
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (c *Container) MustRegister(name string, v any) {
	if err := c.Register(name, v); err != nil {
		panic(err)
	}
}

// Replace stores v under name whether or not the name is already taken.
func (c *Container) Replace(name string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = v
}

// Has reports whether name is registered.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Get returns the collaborator registered under name.
func (c *Container) Get(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[name]
	return v, ok
}

// Names returns the registered names in sorted order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
