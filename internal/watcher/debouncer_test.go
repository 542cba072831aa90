package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForBatch(t *testing.T, d *Debouncer, timeout time.Duration) []FileEvent {
	t.Helper()
	select {
	case events := <-d.Output():
		return events
	case <-time.After(timeout):
		t.Fatal("timeout waiting for debounced events")
		return nil
	}
}

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a single event is added
	d.Add(FileEvent{Path: "notes.md", Operation: OpCreate, Timestamp: time.Now()})

	// Then: the event passes through after the debounce window
	events := waitForBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, "notes.md", events[0].Path)
	assert.Equal(t, OpCreate, events[0].Operation)
}

func TestDebouncer_RapidModifies_SingleEvent(t *testing.T) {
	// Given: a debouncer with short window
	d := NewDebouncer(100 * time.Millisecond)
	defer d.Stop()

	// When: the same file is modified repeatedly within the window,
	// like an editor autosave storm
	for i := 0; i < 5; i++ {
		d.Add(FileEvent{Path: "draft.md", Operation: OpModify, Timestamp: time.Now()})
		time.Sleep(10 * time.Millisecond)
	}

	// Then: exactly one MODIFY comes out
	events := waitForBatch(t, d, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, "draft.md", events[0].Path)
	assert.Equal(t, OpModify, events[0].Operation)
}

func TestDebouncer_CreateThenModify_Create(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "new.md", Operation: OpCreate, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "new.md", Operation: OpModify, Timestamp: time.Now()})

	events := waitForBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, OpCreate, events[0].Operation, "file is still new to the consumer")
}

func TestDebouncer_CreateThenDelete_NoEvent(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "temp.md", Operation: OpCreate, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "temp.md", Operation: OpDelete, Timestamp: time.Now()})

	// The file never really existed from the consumer's view.
	select {
	case events := <-d.Output():
		assert.Empty(t, events)
	case <-time.After(200 * time.Millisecond):
		// No batch at all is the expected outcome
	}
}

func TestDebouncer_ModifyThenDelete_DeleteWins(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "doomed.md", Operation: OpModify, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "doomed.md", Operation: OpDelete, Timestamp: time.Now()})

	events := waitForBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, OpDelete, events[0].Operation)
}

func TestDebouncer_DeleteThenCreate_Modify(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "swap.md", Operation: OpDelete, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "swap.md", Operation: OpCreate, Timestamp: time.Now()})

	events := waitForBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, OpModify, events[0].Operation, "replaced file is a modification")
}

func TestDebouncer_DistinctPathsKeptSeparate(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.md", Operation: OpModify, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "b.md", Operation: OpModify, Timestamp: time.Now()})

	events := waitForBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 2)
	paths := map[string]bool{events[0].Path: true, events[1].Path: true}
	assert.True(t, paths["a.md"] && paths["b.md"])
}

func TestDebouncer_StopIsIdempotent(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	d.Stop()
	d.Stop()

	// Adds after stop are discarded, not panics.
	d.Add(FileEvent{Path: "late.md", Operation: OpCreate, Timestamp: time.Now()})

	_, open := <-d.Output()
	assert.False(t, open, "output closed after stop")
}
