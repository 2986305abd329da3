package events

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Dispatch(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	l := NewLogger(slog.NewJSONHandler(buf, nil), slog.LevelInfo)
	l.Dispatch(context.Background(), New(ToolCalled, "primary", map[string]any{"tool": "greet"}))

	out := buf.String()
	assert.Contains(t, out, `"msg":"tool.called"`)
	assert.Contains(t, out, `"server":"primary"`)
	assert.Contains(t, out, `"tool":"greet"`)
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	l := NewLogger(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}), slog.LevelDebug)
	l.Dispatch(context.Background(), New(ServerBuilt, "primary", nil))
	assert.Empty(t, buf.String())
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := &Recorder{}
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Dispatch(context.Background(), New(SessionInitialized, "s", nil))
		}()
	}
	wg.Wait()

	require.Len(t, r.Events(), 10)
	assert.Equal(t, SessionInitialized, r.Names()[0])
}

func TestDispatcherFunc(t *testing.T) {
	t.Parallel()

	var got Event
	var d Dispatcher = DispatcherFunc(func(_ context.Context, e Event) { got = e })
	d.Dispatch(context.Background(), New(PromptRetrieved, "s", map[string]any{"prompt": "p"}))
	assert.Equal(t, PromptRetrieved, got.Name)
	assert.False(t, got.Time.IsZero())
}
