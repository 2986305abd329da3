package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/server/finitestate"
)

var (
	_ supervisor.Runnable  = (*Watcher)(nil)
	_ supervisor.Stateable = (*Watcher)(nil)
)

// DefaultDebounce coalesces bursts of editor writes into one rescan.
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc receives the result of a rescan.
type ChangeFunc func(ctx context.Context, manifest *config.Manifest)

// Watcher rescans when manifest files change and hands the result to a ChangeFunc.
type Watcher struct {
	name     string
	scanner  *Scanner
	onChange ChangeFunc
	debounce time.Duration

	logger *slog.Logger
	fsm    finitestate.Machine

	mu        sync.Mutex
	runCancel context.CancelFunc
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogHandler sets the handler for the watcher's logger.
func WithWatcherLogHandler(handler slog.Handler) WatcherOption {
	return func(w *Watcher) {
		if handler != nil {
			w.logger = slog.New(handler).WithGroup("discovery.Watcher")
		}
	}
}

// WithDebounce replaces DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithName labels the watcher, typically with the server key.
func WithName(name string) WatcherOption {
	return func(w *Watcher) {
		w.name = name
	}
}

// NewWatcher creates a watcher. It does nothing until Run is called.
func NewWatcher(scanner *Scanner, onChange ChangeFunc, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		scanner:  scanner,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   slog.Default().WithGroup("discovery.Watcher"),
	}
	for _, opt := range opts {
		opt(w)
	}

	machine, err := finitestate.New(w.logger.WithGroup("fsm").Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	w.fsm = machine
	return w, nil
}

// String implements supervisor.Runnable.
func (w *Watcher) String() string {
	if w.name == "" {
		return "discovery.Watcher"
	}
	return fmt.Sprintf("discovery.Watcher{%s}", w.name)
}

// Run implements supervisor.Runnable. It blocks until ctx is canceled or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fsm.Transition(finitestate.StatusBooting); err != nil {
		return fmt.Errorf("failed to transition to booting state: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.runCancel = cancel
	w.mu.Unlock()
	defer cancel()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.setError()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.logger.Debug("Failed to close file watcher", "error", err)
		}
	}()

	for _, root := range w.scanner.Roots() {
		w.addTree(fw, root)
	}

	if err := w.fsm.Transition(finitestate.StatusRunning); err != nil {
		return fmt.Errorf("failed to transition to running state: %w", err)
	}
	w.logger.Debug("Watching manifests", "roots", w.scanner.Roots())

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-runCtx.Done():
			if timer != nil {
				timer.Stop()
			}
			return w.shutdown()

		case ev, ok := <-fw.Events:
			if !ok {
				return w.shutdown()
			}
			if !w.relevant(fw, ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.rescan(runCtx)

		case err, ok := <-fw.Errors:
			if !ok {
				return w.shutdown()
			}
			w.logger.Warn("File watcher error", "error", err)
		}
	}
}

// Stop implements supervisor.Runnable.
func (w *Watcher) Stop() {
	if err := w.fsm.Transition(finitestate.StatusStopping); err != nil {
		w.logger.Debug("Failed to transition to stopping state", "error", err)
	}
	w.mu.Lock()
	cancel := w.runCancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// GetState implements supervisor.Stateable.
func (w *Watcher) GetState() string {
	return w.fsm.GetState()
}

// GetStateChan implements supervisor.Stateable.
func (w *Watcher) GetStateChan(ctx context.Context) <-chan string {
	return w.fsm.GetStateChan(ctx)
}

// IsRunning implements supervisor.Stateable.
func (w *Watcher) IsRunning() bool {
	return w.fsm.GetState() == finitestate.StatusRunning
}

// relevant reports whether an event should trigger a rescan. New directories are added to
// the watch list because fsnotify is not recursive.
func (w *Watcher) relevant(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.scanner.Excluded(filepath.Base(ev.Name)) {
				return false
			}
			w.addTree(fw, ev.Name)
			return true
		}
	}
	if !strings.HasSuffix(ev.Name, ManifestSuffix) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.scanner.Excluded(d.Name()) {
			return fs.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.logger.Debug("Failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) rescan(ctx context.Context) {
	manifest, err := w.scanner.Scan(ctx)
	if err != nil {
		w.logger.Error("Rescan failed, keeping current registrations", "error", err)
		return
	}
	w.logger.Info("Manifests changed, applying rescan",
		"tools", len(manifest.Tools), "resources", len(manifest.Resources),
		"resource_templates", len(manifest.ResourceTemplates), "prompts", len(manifest.Prompts))
	if w.onChange != nil {
		w.onChange(ctx, manifest)
	}
}

func (w *Watcher) shutdown() error {
	if w.fsm.GetState() != finitestate.StatusStopping {
		if err := w.fsm.Transition(finitestate.StatusStopping); err != nil {
			w.logger.Debug("Failed to transition to stopping state", "error", err)
		}
	}
	if err := w.fsm.Transition(finitestate.StatusStopped); err != nil {
		return fmt.Errorf("failed to transition to stopped state: %w", err)
	}
	return nil
}

func (w *Watcher) setError() {
	if err := w.fsm.Transition(finitestate.StatusError); err != nil {
		w.logger.Error("Failed to transition to error state", "error", err)
	}
}
