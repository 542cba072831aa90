// Package watcher provides filesystem watching with debouncing and
// glob-based filtering.
//
// The package implements a hybrid strategy: fsnotify for event-based
// watching, with polling as a fallback for environments where fsnotify
// fails (network mounts, some container volumes). Events are debounced
// so editor autosave storms and git checkouts collapse into single
// mutations downstream.
package watcher

import (
	"context"
	"time"
)

// Operation represents a filesystem operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away. The new
	// name arrives as a separate OpCreate for the new path.
	OpRename
	// OpConfigChange indicates the .doctx.yaml config file was
	// modified, which requires reloading watch patterns.
	OpConfigChange
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	case OpConfigChange:
		return "CONFIG_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a filesystem event. Path is relative to the
// watched root with forward slashes.
type FileEvent struct {
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Watcher is the interface the engine consumes. Events are batched
// because of debouncing.
type Watcher interface {
	// Start begins watching the given directory recursively. It blocks
	// until Stop is called or the context is cancelled.
	Start(ctx context.Context, path string) error

	// Stop stops the watcher and releases resources. Safe to call more
	// than once.
	Stop() error

	// Events returns the channel of debounced event batches. Closed
	// when the watcher stops.
	Events() <-chan []FileEvent

	// Errors returns the channel of non-fatal watcher errors. A
	// notification-channel failure is reported here so the consumer can
	// fall back to a full re-scan.
	Errors() <-chan error

	// WatcherType reports which mechanism is delivering events, for
	// health reporting.
	WatcherType() string
}

// Options configures watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced
	// events. Default: 200ms.
	DebounceWindow time.Duration

	// PollInterval is the scan interval for polling mode. Default: 5s.
	PollInterval time.Duration

	// EventBufferSize is the event channel buffer size. Default: 1000.
	EventBufferSize int

	// IncludePatterns restricts file events to matching paths. Empty
	// means every file passes.
	IncludePatterns []string

	// ExcludePatterns drops matching files and prunes matching
	// directories.
	ExcludePatterns []string
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		PollInterval:    5 * time.Second,
		EventBufferSize: 1000,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval == 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}
