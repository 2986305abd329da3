package discovery

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/server/finitestate"
)

type manifestRecorder struct {
	mu   sync.Mutex
	last *config.Manifest
	n    int
}

func (r *manifestRecorder) record(_ context.Context, m *config.Manifest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = m
	r.n++
}

func (r *manifestRecorder) tools() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return -1
	}
	return len(r.last.Tools)
}

func TestWatcher_RescansOnManifestChange(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "one.mcp.toml"), "[[tools]]\nhandler = \"h\"\nname = \"one\"\n")

	rec := &manifestRecorder{}
	scanner := NewScanner(Settings{BasePath: base, ScanDirs: []string{"."}})
	w, err := NewWatcher(scanner, rec.record, WithDebounce(10*time.Millisecond), WithName("test"))
	require.NoError(t, err)
	assert.Equal(t, "discovery.Watcher{test}", w.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.Eventually(t, w.IsRunning, time.Second, 5*time.Millisecond)

	writeFile(t, filepath.Join(base, "two.mcp.toml"), "[[tools]]\nhandler = \"h\"\nname = \"two\"\n")
	require.Eventually(t, func() bool { return rec.tools() == 2 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(base, "ignored.txt"), "not a manifest")

	w.Stop()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Equal(t, finitestate.StatusStopped, w.GetState())
}

func TestWatcher_StopsWithContext(t *testing.T) {
	t.Parallel()
	base := t.TempDir()

	w, err := NewWatcher(NewScanner(Settings{BasePath: base, ScanDirs: []string{"."}}), nil)
	require.NoError(t, err)
	assert.Equal(t, "discovery.Watcher", w.String())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.Eventually(t, w.IsRunning, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.False(t, w.IsRunning())
}
