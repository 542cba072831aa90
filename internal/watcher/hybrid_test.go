package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, opts Options) *HybridWatcher {
	t.Helper()

	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})

	go func() { _ = w.Start(ctx, dir) }()
	// Give the recursive watch registration a moment to settle.
	time.Sleep(100 * time.Millisecond)
	return w
}

func collectEvents(w *HybridWatcher, timeout time.Duration) []FileEvent {
	var all []FileEvent
	deadline := time.After(timeout)
	for {
		select {
		case batch := <-w.Events():
			all = append(all, batch...)
			if len(all) > 0 {
				return all
			}
		case <-deadline:
			return all
		}
	}
}

func TestHybridWatcher_DetectsCreate(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{DebounceWindow: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.md"), []byte("# hi"), 0o644))

	events := collectEvents(w, 3*time.Second)
	require.NotEmpty(t, events, "expected a create event")

	found := false
	for _, e := range events {
		if e.Path == "doc.md" && (e.Operation == OpCreate || e.Operation == OpModify) {
			found = true
		}
	}
	assert.True(t, found, "events: %v", events)
}

func TestHybridWatcher_ExcludePatternsFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "archive"), 0o755))

	w := startWatcher(t, dir, Options{
		DebounceWindow:  50 * time.Millisecond,
		ExcludePatterns: []string{"archive/**"},
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "archive", "old.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "live.md"), []byte("y"), 0o644))

	events := collectEvents(w, 3*time.Second)
	for _, e := range events {
		assert.NotContains(t, e.Path, "archive/", "excluded subtree leaked: %v", e)
	}
}

func TestHybridWatcher_IncludePatternsFilter(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{
		DebounceWindow:  50 * time.Millisecond,
		IncludePatterns: []string{"*.md"},
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skipped.bin"), []byte{0, 1}, 0o644))

	events := collectEvents(w, 3*time.Second)
	for _, e := range events {
		assert.NotEqual(t, "skipped.bin", e.Path)
	}
}

func TestHybridWatcher_ConfigChangeEvent(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{DebounceWindow: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".doctx.yaml"), []byte("root: ."), 0o644))

	events := collectEvents(w, 3*time.Second)
	require.NotEmpty(t, events)

	found := false
	for _, e := range events {
		if e.Operation == OpConfigChange {
			found = true
		}
	}
	assert.True(t, found, "expected a config-change event, got %v", events)
}

func TestHybridWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewHybridWatcher(DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestHybridWatcher_WatcherType(t *testing.T) {
	w, err := NewHybridWatcher(DefaultOptions())
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	assert.Contains(t, []string{"fsnotify", "polling"}, w.WatcherType())
}

func TestHybridWatcher_SetupCapturesChangesBeforeRun(t *testing.T) {
	dir := t.TempDir()

	w, err := NewHybridWatcher(Options{DebounceWindow: 50 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Setup(dir))

	// The watch set is installed; a file created before the event loop
	// even starts must still be delivered once it does.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "early.md"), []byte("# x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	go func() { _ = w.Run(ctx) }()

	events := collectEvents(w, 3*time.Second)
	require.NotEmpty(t, events, "write between Setup and Run was lost")

	found := false
	for _, e := range events {
		if e.Path == "early.md" && (e.Operation == OpCreate || e.Operation == OpModify) {
			found = true
		}
	}
	assert.True(t, found, "events: %v", events)
}

func TestHybridWatcher_StartDeliversImmediateWrite(t *testing.T) {
	dir := t.TempDir()

	w, err := NewHybridWatcher(Options{DebounceWindow: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	if !w.useFsnotify {
		t.Skip("fsnotify unavailable on this platform")
	}
	go func() { _ = w.Start(ctx, dir) }()

	// No settling sleep: write the instant the watch set exists.
	require.Eventually(t, func() bool {
		return len(w.fsWatcher.WatchList()) > 0
	}, time.Second, time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "racy.md"), []byte("# y"), 0o644))

	events := collectEvents(w, 3*time.Second)
	require.NotEmpty(t, events, "write racing startup was lost")
}

func TestHybridWatcher_FsnotifyDeathFallsBackToPolling(t *testing.T) {
	dir := t.TempDir()

	w, err := NewHybridWatcher(Options{
		DebounceWindow: 30 * time.Millisecond,
		PollInterval:   50 * time.Millisecond,
	})
	require.NoError(t, err)
	if !w.useFsnotify {
		t.Skip("fsnotify unavailable on this platform")
	}
	require.NoError(t, w.Setup(dir))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	go func() { _ = w.Run(ctx) }()

	// Kill the notification stream out from under the watcher.
	require.NoError(t, w.fsWatcher.Close())

	// The failure is surfaced, never swallowed.
	select {
	case werr := <-w.Errors():
		require.Error(t, werr)
	case <-time.After(3 * time.Second):
		t.Fatal("channel death was not reported")
	}

	// The watcher swaps in polling and keeps delivering events.
	require.Eventually(t, func() bool {
		return w.WatcherType() == "polling"
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "after.md"), []byte("# z"), 0o644))
	events := collectEvents(w, 3*time.Second)
	require.NotEmpty(t, events, "no events after fallback")

	found := false
	for _, e := range events {
		if e.Path == "after.md" {
			found = true
		}
	}
	assert.True(t, found, "events: %v", events)
}
