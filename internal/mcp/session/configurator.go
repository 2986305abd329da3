package session

import (
	"time"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
)

// Binder receives the resolved session wiring. The engine builder implements it.
type Binder interface {
	SetSession(store Store, factory Factory, ttl time.Duration)
}

// Configure resolves the store and factory named in cfg and binds them to b. Nothing is bound
// when the table is absent or empty, or when the store name does not resolve to a Store; the
// engine then keeps its in-memory default.
func Configure(cfg *config.Session, lk lookup.Lookup, b Binder) {
	if cfg.IsEmpty() {
		return
	}

	store, ok := lookup.Resolve[Store](lk, cfg.Store)
	if !ok {
		return
	}

	// The factory is optional; a miss leaves it nil.
	factory, _ := lookup.Resolve[Factory](lk, cfg.Factory)

	b.SetSession(store, factory, TTL(cfg))
}

// TTL returns the configured lifetime, falling back to DefaultTTL.
func TTL(cfg *config.Session) time.Duration {
	if cfg == nil || cfg.TTL == nil {
		return DefaultTTL
	}
	return time.Duration(*cfg.TTL) * time.Second
}
