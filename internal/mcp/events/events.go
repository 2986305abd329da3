// Package events carries server lifecycle notifications to an optional dispatcher collaborator.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event names emitted by the engine.
const (
	ServerBuilt        = "server.built"
	SessionInitialized = "session.initialized"
	ToolCalled         = "tool.called"
	ResourceRead       = "resource.read"
	PromptRetrieved    = "prompt.retrieved"
	DiscoveryApplied   = "discovery.applied"
)

// Event is a single notification. Attrs hold event specific values such as the tool name.
type Event struct {
	Name   string
	Server string
	Time   time.Time
	Attrs  map[string]any
}

// New stamps an event with the current time.
func New(name, server string, attrs map[string]any) Event {
	return Event{Name: name, Server: server, Time: time.Now(), Attrs: attrs}
}

// Dispatcher receives events. Implementations must be safe for concurrent use and should not
// block the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, event Event)

func (f DispatcherFunc) Dispatch(ctx context.Context, event Event) { f(ctx, event) }

// Logger writes every event as a structured log record.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogger creates a log-backed dispatcher. A nil handler uses the default logger.
func NewLogger(handler slog.Handler, level slog.Level) *Logger {
	logger := slog.Default()
	if handler != nil {
		logger = slog.New(handler)
	}
	return &Logger{logger: logger.WithGroup("events"), level: level}
}

func (l *Logger) Dispatch(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Attrs)+1)
	attrs = append(attrs, slog.String("server", event.Server))
	for k, v := range event.Attrs {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.LogAttrs(ctx, l.level, event.Name, attrs...)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Dispatch(_ context.Context, event Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Events returns a copy of what was recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}
