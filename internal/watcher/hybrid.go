package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/neerajchowdary889/doctx/internal/errors"
	"github.com/neerajchowdary889/doctx/internal/globs"
)

// ConfigFileNames are watched for OpConfigChange events.
var ConfigFileNames = []string{".doctx.yaml", ".doctx.yml"}

// HybridWatcher implements Watcher using fsnotify as the primary
// mechanism with polling as a fallback.
type HybridWatcher struct {
	fsWatcher      *fsnotify.Watcher
	pollWatcher    *PollingWatcher
	useFsnotify    bool
	debouncer      *Debouncer
	events         chan []FileEvent
	errors         chan error
	stopCh         chan struct{}
	rootPath       string
	opts           Options
	mu             sync.RWMutex
	stopped        bool
	droppedBatches atomic.Uint64
}

var _ Watcher = (*HybridWatcher)(nil)

// NewHybridWatcher creates a hybrid watcher. If fsnotify cannot be
// initialized the watcher silently uses polling instead.
func NewHybridWatcher(opts Options) (*HybridWatcher, error) {
	opts = opts.WithDefaults()

	h := &HybridWatcher{
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}

	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		h.fsWatcher = fsw
		h.useFsnotify = true
	} else {
		slog.Warn("fsnotify unavailable, using polling watcher",
			slog.String("error", err.Error()))
		h.pollWatcher = NewPollingWatcher(opts.PollInterval)
	}

	return h, nil
}

// Setup resolves the root and installs the watch set. For fsnotify
// this registers every directory; for polling it records the baseline
// snapshot. Setup returning means no filesystem change after this
// point can be missed, even if Run starts later.
func (h *HybridWatcher) Setup(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	h.rootPath = absPath

	if h.useFsnotify {
		if err := h.addRecursive(absPath); err != nil {
			return fmt.Errorf("add directories to watcher: %w", err)
		}
		return nil
	}
	return h.pollWatcher.Setup(absPath)
}

// Run delivers events until Stop or context cancellation. Setup must
// have succeeded first.
func (h *HybridWatcher) Run(ctx context.Context) error {
	go h.forwardDebouncedEvents(ctx)

	h.mu.RLock()
	fsn := h.useFsnotify
	h.mu.RUnlock()
	if fsn {
		return h.runFsnotify(ctx)
	}
	return h.runPolling(ctx)
}

// Start is Setup followed by Run. Blocks until Stop or context
// cancellation.
func (h *HybridWatcher) Start(ctx context.Context, path string) error {
	if err := h.Setup(path); err != nil {
		return err
	}
	return h.Run(ctx)
}

func (h *HybridWatcher) runFsnotify(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = h.Stop()
			return ctx.Err()
		case <-h.stopCh:
			return nil
		case event, ok := <-h.fsWatcher.Events:
			if !ok {
				// The notification channel died underneath us. Surface
				// it so the engine schedules a reconciling re-scan, then
				// keep converging on the polling fallback.
				h.emitError(errors.WatchChannel(fmt.Errorf("fsnotify event channel closed")))
				return h.fallbackToPolling(ctx)
			}
			h.handleFsnotifyEvent(event)
		case err, ok := <-h.fsWatcher.Errors:
			if !ok {
				h.emitError(errors.WatchChannel(fmt.Errorf("fsnotify error channel closed")))
				return h.fallbackToPolling(ctx)
			}
			h.emitError(errors.WatchChannel(err))
		}
	}
}

// fallbackToPolling replaces a dead fsnotify stream with the polling
// watcher mid-run. The polling baseline is taken immediately, so only
// changes from the dead window itself need the consumer's re-scan.
func (h *HybridWatcher) fallbackToPolling(ctx context.Context) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	_ = h.fsWatcher.Close()
	h.useFsnotify = false
	h.pollWatcher = NewPollingWatcher(h.opts.PollInterval)
	h.mu.Unlock()

	slog.Warn("fsnotify stream lost, switching to polling",
		slog.String("root", h.rootPath))

	if err := h.pollWatcher.Setup(h.rootPath); err != nil {
		return err
	}
	return h.runPolling(ctx)
}

func (h *HybridWatcher) runPolling(ctx context.Context) error {
	h.mu.RLock()
	pw := h.pollWatcher
	h.mu.RUnlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopCh:
				return
			case event, ok := <-pw.Events():
				if !ok {
					return
				}
				h.routeEvent(event)
			case err, ok := <-pw.Errors():
				if !ok {
					return
				}
				h.emitError(err)
			}
		}
	}()

	return pw.Run(ctx)
}

// routeEvent filters an event and feeds it to the debouncer, special
// casing config file changes.
func (h *HybridWatcher) routeEvent(event FileEvent) {
	if isConfigFile(event.Path) {
		h.debouncer.Add(FileEvent{
			Path:      event.Path,
			Operation: OpConfigChange,
			Timestamp: time.Now(),
		})
		return
	}
	if h.shouldIgnore(event.Path, event.IsDir) {
		return
	}
	h.debouncer.Add(event)
}

func (h *HybridWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(h.rootPath, event.Name)
	if err != nil {
		relPath = event.Name
	}
	relPath = filepath.ToSlash(relPath)

	// A deleted or renamed-away entry no longer stats; treat stat
	// failure as "not a directory" and let key-based handling decide.
	isDir := false
	if info, statErr := os.Stat(event.Name); statErr == nil {
		isDir = info.IsDir()
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if isDir {
			// New subtrees need their own watches.
			_ = h.addRecursive(event.Name)
		}
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		// Chmod and unknown ops carry no content change.
		return
	}

	h.routeEvent(FileEvent{
		Path:      relPath,
		Operation: op,
		IsDir:     isDir,
		Timestamp: time.Now(),
	})
}

func (h *HybridWatcher) forwardDebouncedEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case events, ok := <-h.debouncer.Output():
			if !ok {
				return
			}
			if len(events) > 0 {
				h.emitEvents(events)
			}
		}
	}
}

// addRecursive adds all non-excluded directories under root to the
// fsnotify watcher.
func (h *HybridWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries we can't access
		}
		if !d.IsDir() {
			return nil
		}

		relPath, _ := filepath.Rel(h.rootPath, path)
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return h.fsWatcher.Add(path)
		}
		if h.shouldIgnoreDir(relPath) {
			return filepath.SkipDir
		}
		return h.fsWatcher.Add(path)
	})
}

func (h *HybridWatcher) shouldIgnoreDir(relPath string) bool {
	if relPath == ".git" || strings.HasPrefix(relPath, ".git/") {
		return true
	}
	if relPath == ".doctx" || strings.HasPrefix(relPath, ".doctx/") {
		return true
	}
	return globs.MatchAnyDir(relPath, h.opts.ExcludePatterns)
}

// shouldIgnore reports whether a path is outside the watched document
// set. Directories only consult exclusions; files must also match the
// include patterns when any are configured.
func (h *HybridWatcher) shouldIgnore(relPath string, isDir bool) bool {
	if relPath == "." || relPath == "" {
		return true
	}
	if isDir {
		return h.shouldIgnoreDir(relPath)
	}
	if h.shouldIgnoreDir(filepath.ToSlash(filepath.Dir(relPath))) && filepath.Dir(relPath) != "." {
		return true
	}
	if globs.MatchAnyFile(relPath, h.opts.ExcludePatterns) {
		return true
	}
	if len(h.opts.IncludePatterns) > 0 && !globs.MatchAnyFile(relPath, h.opts.IncludePatterns) {
		return true
	}
	return false
}

func isConfigFile(relPath string) bool {
	base := filepath.Base(relPath)
	for _, name := range ConfigFileNames {
		if base == name {
			return true
		}
	}
	return false
}

// emitEvents sends a batch without blocking.
func (h *HybridWatcher) emitEvents(events []FileEvent) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.events <- events:
	default:
		count := h.droppedBatches.Add(1)
		slog.Warn("event buffer full, dropping batch",
			slog.Int("batch_size", len(events)),
			slog.Uint64("total_dropped_batches", count))
	}
}

// DroppedBatches returns how many batches were dropped due to a full
// buffer. A nonzero value means the consumer should schedule a re-scan.
func (h *HybridWatcher) DroppedBatches() uint64 {
	return h.droppedBatches.Load()
}

func (h *HybridWatcher) emitError(err error) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.errors <- err:
	default:
	}
}

// Stop stops the watcher and releases resources. Safe to call more
// than once.
func (h *HybridWatcher) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil
	}
	h.stopped = true
	close(h.stopCh)

	h.debouncer.Stop()

	if h.useFsnotify && h.fsWatcher != nil {
		_ = h.fsWatcher.Close()
	}
	if h.pollWatcher != nil {
		_ = h.pollWatcher.Stop()
	}

	close(h.events)
	close(h.errors)
	return nil
}

// Events returns the channel of batched file events.
func (h *HybridWatcher) Events() <-chan []FileEvent {
	return h.events
}

// Errors returns the channel of errors.
func (h *HybridWatcher) Errors() <-chan error {
	return h.errors
}

// WatcherType reports which mechanism is in use, for health reporting.
// The answer can change at runtime when a dead fsnotify stream forces
// the polling fallback.
func (h *HybridWatcher) WatcherType() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.useFsnotify {
		return "fsnotify"
	}
	return "polling"
}
