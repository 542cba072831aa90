// Package engine ties scanner, parser, watcher, store and index into a
// single document context engine.
//
// The engine is a single-writer system: every index mutation, whether
// it originates from the filesystem watcher or from an administrative
// operation, flows through one ordered mutation stream consumed by the
// coordinator goroutine. Parsing and file IO happen outside the index
// lock; only the final commit takes the write lock, so readers never
// observe a half-applied mutation.
package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/neerajchowdary889/doctx/internal/config"
	"github.com/neerajchowdary889/doctx/internal/document"
	"github.com/neerajchowdary889/doctx/internal/errors"
	"github.com/neerajchowdary889/doctx/internal/gitignore"
	"github.com/neerajchowdary889/doctx/internal/index"
	"github.com/neerajchowdary889/doctx/internal/scanner"
	"github.com/neerajchowdary889/doctx/internal/search"
	"github.com/neerajchowdary889/doctx/internal/store"
	"github.com/neerajchowdary889/doctx/internal/telemetry"
	"github.com/neerajchowdary889/doctx/internal/watcher"
)

// lockFileName is the advisory lock under the data directory that
// prevents two engine instances from indexing the same root.
const lockFileName = "engine.lock"

// mutationBufferSize bounds the pending mutation queue. Bursts beyond
// this apply backpressure to the watcher consumer, not data loss.
const mutationBufferSize = 1024

// Engine owns one document tree's index and serves queries against it.
type Engine struct {
	cfg    *config.Config
	log    *slog.Logger
	parser *document.Parser
	scan   *scanner.Scanner

	// mu guards docs, index and generation as one unit. The coordinator
	// is the only writer; queries take the read lock.
	mu         sync.RWMutex
	docs       *store.DocumentStore
	index      *index.InvertedIndex
	params     index.BM25Params
	generation uint64

	mutations chan Mutation
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	watch *watcher.HybridWatcher

	flk     *flock.Flock
	cache   *lru.Cache[string, *search.Response]
	health  *healthTracker
	metrics *telemetry.QueryMetrics
	retry   errors.RetryConfig

	ready     atomic.Bool
	closed    atomic.Bool
	startedAt time.Time
}

// New creates an engine for the configured document root and acquires
// the data-directory lock. Call Start to build the index.
func New(cfg *config.Config, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}

	tokCfg := index.DefaultTokenizerConfig()
	if len(cfg.Search.ExtraStopWords) > 0 {
		tokCfg.StopWords = append(append([]string{}, tokCfg.StopWords...),
			cfg.Search.ExtraStopWords...)
	}
	if cfg.Search.MinTokenLength > 0 {
		tokCfg.MinTokenLength = cfg.Search.MinTokenLength
	}

	parser := document.NewParser()
	parser.MaxFileSize = cfg.MaxFileSize()

	cacheSize := cfg.Search.CacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, *search.Response](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	metrics, err := telemetry.NewQueryMetrics()
	if err != nil {
		return nil, fmt.Errorf("create query metrics: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		log:       log,
		parser:    parser,
		scan:      scanner.New(),
		docs:      store.NewDocumentStore(),
		index:     index.NewInvertedIndex(index.NewTokenizer(tokCfg)),
		params:    index.BM25Params{K1: cfg.Search.K1, B: cfg.Search.B},
		mutations: make(chan Mutation, mutationBufferSize),
		stopCh:    make(chan struct{}),
		cache:     cache,
		health:    newHealthTracker(),
		metrics:   metrics,
		retry:     errors.DefaultRetryConfig(),
	}

	if err := e.acquireLock(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) acquireLock() error {
	dataDir := e.cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	e.flk = flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := e.flk.TryLock()
	if err != nil {
		return errors.New(errors.ErrCodeIndexLocked,
			fmt.Sprintf("acquire lock for %s", e.cfg.Root), err)
	}
	if !locked {
		return errors.New(errors.ErrCodeIndexLocked,
			fmt.Sprintf("another instance is already indexing %s", e.cfg.Root), nil)
	}
	return nil
}

// Start builds the initial index with a parallel scan, then launches
// the coordinator and, when enabled, the filesystem watcher. Queries
// issued before Start completes receive an index-warming error.
//
// The watch set is installed before the warm scan runs, so a file that
// changes while the scan is in flight still produces an event once the
// event loop starts; there is no window in which a change can be
// silently lost.
func (e *Engine) Start(ctx context.Context) error {
	e.startedAt = time.Now()

	var w *watcher.HybridWatcher
	var watchErr error
	if e.cfg.Watch.Enabled {
		w, watchErr = e.setupWatcher()
	}

	if err := e.warmScan(ctx); err != nil {
		if w != nil {
			_ = w.Stop()
		}
		return err
	}
	e.ready.Store(true)

	e.wg.Add(1)
	go e.coordinate()

	if watchErr != nil {
		// A dead watcher degrades the engine but does not kill it;
		// the index keeps serving its last good state.
		e.health.degrade(watchErr)
		e.log.Warn("watcher unavailable, index is static until an explicit re-scan",
			slog.String("error", watchErr.Error()))
	} else {
		if w != nil {
			e.runWatcher(ctx, w)
		}
		e.health.setStatus(StatusHealthy)
	}

	e.mu.RLock()
	docCount := e.docs.Len()
	gen := e.generation
	e.mu.RUnlock()
	e.log.Info("engine ready",
		slog.Int("documents", docCount),
		slog.Uint64("generation", gen),
		slog.String("root", e.cfg.Root))
	return nil
}

// Close stops the watcher and coordinator, releases the data-directory
// lock, and marks the engine closed. Safe to call more than once.
func (e *Engine) Close() error {
	e.stopOnce.Do(func() {
		e.closed.Store(true)
		e.health.setStatus(StatusClosed)
		close(e.stopCh)
		if e.watch != nil {
			_ = e.watch.Stop()
		}
		e.wg.Wait()
		if e.flk != nil {
			_ = e.flk.Unlock()
		}
		e.log.Info("engine closed")
	})
	return nil
}

func (e *Engine) scanOptions() scanner.ScanOptions {
	opts := scanner.ScanOptions{
		RootDir:         e.cfg.Root,
		IncludePatterns: e.cfg.Paths.Include,
		ExcludePatterns: e.cfg.Paths.Exclude,
		MaxFileSize:     e.cfg.MaxFileSize(),
	}
	if e.cfg.Paths.UseGitignore {
		// Loaded per scan so edits to .gitignore take effect on the
		// next re-scan. A load failure just means no ignore rules.
		m, err := gitignore.Load(e.cfg.Root)
		if err != nil {
			e.log.Warn("read .gitignore failed", slog.String("error", err.Error()))
		} else {
			opts.Ignore = m
		}
	}
	return opts
}

// warmScan walks the tree once, parsing in parallel and committing
// serially so the index writer stays single-threaded.
func (e *Engine) warmScan(ctx context.Context) error {
	start := time.Now()
	results, err := e.scan.Scan(ctx, e.scanOptions())
	if err != nil {
		return err
	}

	workers := e.cfg.Index.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	parsed := make(chan *document.Document, 64)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for r := range results {
				if r.Err != nil {
					e.log.Warn("scan entry failed", slog.String("error", r.Err.Error()))
					continue
				}
				raw, err := os.ReadFile(r.AbsPath)
				if err != nil {
					e.health.recordParseFailure(r.Path)
					e.log.Warn("unreadable document skipped",
						slog.String("path", r.Path),
						slog.String("error", err.Error()))
					continue
				}
				doc, err := e.parser.Parse(r.Path, raw,
					document.FileStat{Size: r.Size, ModTime: r.ModTime})
				if err != nil {
					e.health.recordParseFailure(r.Path)
					e.log.Warn("unparseable document skipped",
						slog.String("path", r.Path),
						slog.String("error", err.Error()))
					continue
				}
				doc.AbsPath = r.AbsPath
				select {
				case parsed <- doc:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(parsed)
	}()

	count := 0
	for doc := range parsed {
		e.commit(doc)
		count++
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	e.log.Info("initial scan complete",
		slog.Int("documents", count),
		slog.Duration("took", time.Since(start)))
	return nil
}

// commit installs a document in store and index under the write lock,
// advancing the generation. Store and index always change together.
func (e *Engine) commit(doc *document.Document) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	doc.Generation = e.generation
	e.docs.Put(doc)
	e.index.Index(doc)
	return e.generation
}

// Apply enqueues a mutation without waiting for its result.
func (e *Engine) Apply(ctx context.Context, m Mutation) error {
	if e.closed.Load() {
		return errors.New(errors.ErrCodeEngineClosed, "engine is closed", nil)
	}
	select {
	case e.mutations <- m:
		return nil
	case <-e.stopCh:
		return errors.New(errors.ErrCodeEngineClosed, "engine is closed", nil)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ApplySync enqueues a mutation and waits until it is committed or
// rejected.
func (e *Engine) ApplySync(ctx context.Context, m Mutation) error {
	m.reply = make(chan error, 1)
	reply := m.reply
	if err := e.Apply(ctx, m); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// coordinate is the single consumer of the mutation stream.
func (e *Engine) coordinate() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			// Unblock synchronous callers still queued.
			for {
				select {
				case m := <-e.mutations:
					m.finish(errors.New(errors.ErrCodeEngineClosed, "engine is closed", nil))
				default:
					return
				}
			}
		case m := <-e.mutations:
			e.process(&m)
		}
	}
}

func (e *Engine) process(m *Mutation) {
	var err error
	switch m.Kind {
	case MutationReindex:
		err = e.reindexKey(document.KeyFromPath(m.Path))
	case MutationRemove:
		err = e.removeKey(document.KeyFromPath(m.Key))
	case MutationApplyBatch:
		err = e.applyBatch(m.Ops)
	case MutationRescan:
		err = e.rescanTree()
	case MutationClear:
		err = e.clearAll()
	default:
		err = errors.New(errors.ErrCodeInternal,
			fmt.Sprintf("unknown mutation kind %d", m.Kind), nil)
	}
	m.finish(err)
}

// prepareReindex reads and parses one document outside the index lock.
// A nil document with nil error means the committed state already
// matches the file content. fs.ErrNotExist survives the retry budget
// unwrapped so callers can convert it to a removal.
func (e *Engine) prepareReindex(key string) (*document.Document, error) {
	log := e.log.With(
		slog.String("mutation", MutationReindex.String()),
		slog.String("key", key))
	log.Debug("mutation state", slog.String("state", StateParsing.String()))

	absPath := filepath.Join(e.cfg.Root, filepath.FromSlash(key))
	raw, stat, err := e.readWithRetry(absPath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		e.health.recordParseFailure(key)
		log.Warn("read failed past retry budget",
			slog.String("state", StateRejected.String()),
			slog.String("error", err.Error()))
		return nil, errors.Parse(errors.ErrCodeTransientIO, key, err)
	}

	// Unchanged content is a no-op commit; the generation only moves
	// when the committed state actually changes.
	hash := document.HashContent(raw)
	e.mu.RLock()
	unchanged := e.docs.Hash(key) == hash
	e.mu.RUnlock()
	if unchanged {
		log.Debug("content unchanged, commit skipped")
		return nil, nil
	}

	doc, err := e.parser.Parse(key, raw, stat)
	if err != nil {
		e.health.recordParseFailure(key)
		log.Warn("parse rejected, prior version retained",
			slog.String("state", StateRejected.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	doc.AbsPath = absPath
	return doc, nil
}

// reindexKey reads, parses, and commits one document. A read failure
// that survives the retry budget because the file is gone becomes a
// removal; a parse failure rejects the mutation and keeps the prior
// committed version serving.
func (e *Engine) reindexKey(key string) error {
	doc, err := e.prepareReindex(key)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			e.log.Debug("file gone after retries, treating as removal",
				slog.String("key", key))
			return e.removeKey(key)
		}
		return err
	}
	if doc == nil {
		return nil
	}

	gen := e.commit(doc)
	e.log.Debug("mutation state",
		slog.String("mutation", MutationReindex.String()),
		slog.String("key", key),
		slog.String("state", StateCommitted.String()),
		slog.Uint64("generation", gen))
	return nil
}

// applyBatch applies one debounced watcher batch. Parsing still runs
// outside the lock per document, but every removal and commit installs
// under a single write-lock section, so the two halves of a rename
// that arrive in the same batch are never separately visible to a
// reader: a query sees either the old key or the new one, not both
// and not neither.
func (e *Engine) applyBatch(ops []BatchOp) error {
	var removals []string
	var commits []*document.Document
	var firstErr error

	for _, op := range ops {
		if op.Remove {
			removals = append(removals, op.Key)
			continue
		}
		doc, err := e.prepareReindex(op.Key)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				removals = append(removals, op.Key)
				continue
			}
			// A per-document failure does not abort the batch; the
			// prior committed version keeps serving.
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if doc != nil {
			commits = append(commits, doc)
		}
	}
	if len(removals) == 0 && len(commits) == 0 {
		return firstErr
	}

	e.mu.Lock()
	for _, key := range removals {
		if !e.docs.Contains(key) {
			continue
		}
		e.generation++
		e.docs.Delete(key)
		e.index.Remove(key)
	}
	for _, doc := range commits {
		e.generation++
		doc.Generation = e.generation
		e.docs.Put(doc)
		e.index.Index(doc)
	}
	gen := e.generation
	e.mu.Unlock()

	e.log.Debug("batch committed",
		slog.Int("removed", len(removals)),
		slog.Int("indexed", len(commits)),
		slog.Uint64("generation", gen))
	return firstErr
}

// readWithRetry reads a file with bounded backoff so editor save
// sequences and transient IO errors do not masquerade as deletions.
func (e *Engine) readWithRetry(absPath string) ([]byte, document.FileStat, error) {
	type fileRead struct {
		raw  []byte
		stat document.FileStat
	}
	res, err := errors.RetryWithResult(context.Background(), e.retry, func() (fileRead, error) {
		info, err := os.Stat(absPath)
		if err != nil {
			return fileRead{}, err
		}
		raw, err := os.ReadFile(absPath)
		if err != nil {
			return fileRead{}, err
		}
		return fileRead{
			raw:  raw,
			stat: document.FileStat{Size: info.Size(), ModTime: info.ModTime()},
		}, nil
	})
	return res.raw, res.stat, err
}

// removeKey retracts a document from store and index as one commit.
func (e *Engine) removeKey(key string) error {
	log := e.log.With(
		slog.String("mutation", MutationRemove.String()),
		slog.String("key", key))

	e.mu.Lock()
	if !e.docs.Contains(key) {
		e.mu.Unlock()
		log.Debug("remove for unknown key, no-op")
		return nil
	}
	e.generation++
	gen := e.generation
	e.docs.Delete(key)
	e.index.Remove(key)
	e.mu.Unlock()

	log.Debug("mutation state",
		slog.String("state", StateCommitted.String()),
		slog.Uint64("generation", gen))
	return nil
}

// rescanTree re-walks the whole tree and reconciles the index against
// it: changed files are re-committed, missing files retracted. This is
// the explicit recovery path after a watch-channel failure.
func (e *Engine) rescanTree() error {
	start := time.Now()
	e.log.Info("full re-scan starting", slog.String("root", e.cfg.Root))
	e.health.clearParseFailures()

	results, err := e.scan.Scan(context.Background(), e.scanOptions())
	if err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for r := range results {
		if r.Err != nil {
			e.log.Warn("scan entry failed", slog.String("error", r.Err.Error()))
			continue
		}
		key := document.KeyFromPath(r.Path)
		seen[key] = struct{}{}
		// Per-document failures are already recorded; a rescan keeps
		// going past them.
		_ = e.reindexKey(key)
	}

	e.mu.RLock()
	var stale []string
	for _, doc := range e.docs.List(store.ListFilter{}) {
		if _, ok := seen[doc.Key]; !ok {
			stale = append(stale, doc.Key)
		}
	}
	e.mu.RUnlock()
	for _, key := range stale {
		_ = e.removeKey(key)
	}

	e.log.Info("full re-scan complete",
		slog.Int("documents", len(seen)),
		slog.Int("removed", len(stale)),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (e *Engine) clearAll() error {
	e.mu.Lock()
	e.docs.Clear()
	e.index.Clear()
	e.generation++
	gen := e.generation
	e.mu.Unlock()
	e.health.clearParseFailures()
	e.log.Info("index cleared", slog.Uint64("generation", gen))
	return nil
}

// setupWatcher creates the watcher and installs its watch set
// synchronously. Events occurring after this returns are buffered by
// the OS or the baseline diff until runWatcher drains them.
func (e *Engine) setupWatcher() (*watcher.HybridWatcher, error) {
	w, err := watcher.NewHybridWatcher(watcher.Options{
		DebounceWindow:  e.cfg.DebounceWindow(),
		PollInterval:    e.cfg.PollInterval(),
		IncludePatterns: e.cfg.Paths.Include,
		ExcludePatterns: e.cfg.Paths.Exclude,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Setup(e.cfg.Root); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}

func (e *Engine) runWatcher(ctx context.Context, w *watcher.HybridWatcher) {
	e.watch = w

	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		if err := w.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			e.health.degrade(err)
			e.log.Error("watcher stopped", slog.String("error", err.Error()))
		}
	}()
	go e.consumeWatcher(ctx, w)

	e.log.Info("watching for changes",
		slog.String("watcher", w.WatcherType()),
		slog.String("root", e.cfg.Root))
}

func (e *Engine) consumeWatcher(ctx context.Context, w watcher.Watcher) {
	defer e.wg.Done()
	events := w.Events()
	werrs := w.Errors()
	for {
		select {
		case <-e.stopCh:
			return
		case batch, ok := <-events:
			if !ok {
				return
			}
			e.handleBatch(ctx, batch)
		case err, ok := <-werrs:
			if !ok {
				werrs = nil
				continue
			}
			// The notification stream is unreliable now. Degrade,
			// reconcile through an explicit full re-scan, and recover:
			// the watcher swaps in its polling fallback underneath us,
			// so events keep flowing after the re-scan closes the gap.
			e.health.degrade(err)
			e.log.Warn("watch channel failed, reconciling with a full re-scan",
				slog.String("error", err.Error()))
			if applyErr := e.ApplySync(ctx, Rescan()); applyErr != nil {
				e.log.Error("re-scan after watch failure did not complete",
					slog.String("error", applyErr.Error()))
				continue
			}
			e.health.setStatus(StatusHealthy)
			e.log.Info("re-scan complete, engine recovered",
				slog.String("watcher", w.WatcherType()))
		}
	}
}

// handleBatch converts a debounced event batch into one grouped
// mutation. A rename arrives as two events, the old path retracting
// and the new path showing up as its own create; keeping the whole
// batch in one mutation lets both halves commit together.
func (e *Engine) handleBatch(ctx context.Context, batch []watcher.FileEvent) {
	var ignore *gitignore.Matcher
	if e.cfg.Paths.UseGitignore {
		ignore, _ = gitignore.Load(e.cfg.Root)
	}

	ops := make([]BatchOp, 0, len(batch))
	rescan := false
	for _, ev := range batch {
		if ev.IsDir {
			continue
		}
		switch ev.Operation {
		case watcher.OpCreate, watcher.OpModify:
			if !document.Supported(ev.Path) {
				continue
			}
			if ignore != nil && ignore.Match(ev.Path, false) {
				continue
			}
			ops = append(ops, BatchOp{Key: document.KeyFromPath(ev.Path)})
		case watcher.OpDelete, watcher.OpRename:
			ops = append(ops, BatchOp{Remove: true, Key: document.KeyFromPath(ev.Path)})
		case watcher.OpConfigChange:
			e.log.Info("project config changed; settings reload on restart, reconciling tree now")
			rescan = true
		}
	}

	if len(ops) > 0 {
		if err := e.Apply(ctx, ApplyBatch(ops)); err != nil {
			return
		}
	}
	if rescan {
		_ = e.Apply(ctx, Rescan())
	}
}

// readable gates every query-side operation.
func (e *Engine) readable() error {
	if e.closed.Load() {
		return errors.New(errors.ErrCodeEngineClosed, "engine is closed", nil)
	}
	if !e.ready.Load() {
		return errors.IndexWarming()
	}
	return nil
}

// Search runs a ranked query against the current committed generation.
// Responses are cached per generation, so a repeated query on an
// unchanged index is a map lookup.
func (e *Engine) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	if err := e.readable(); err != nil {
		return nil, err
	}
	req = req.Normalize()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.QueryTimeout())
	defer cancel()

	e.mu.RLock()
	defer e.mu.RUnlock()

	cacheKey := strconv.FormatUint(e.generation, 10) + "|" + req.CacheKey()
	if resp, ok := e.cache.Get(cacheKey); ok {
		e.metrics.RecordQuery(req.Query, len(strings.Fields(req.Query)), time.Since(start), true)
		return resp, nil
	}

	resp, err := search.Execute(ctx, search.Snapshot{
		Docs:       e.docs,
		Index:      e.index,
		Params:     e.params,
		Generation: e.generation,
	}, req)
	if err != nil {
		e.metrics.RecordError()
		return nil, err
	}
	e.cache.Add(cacheKey, resp)
	e.metrics.RecordQuery(req.Query, len(strings.Fields(req.Query)), time.Since(start), false)
	return resp, nil
}

// Get returns one document by key.
func (e *Engine) Get(key string) (*document.Document, error) {
	if err := e.readable(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docs.Get(document.KeyFromPath(key))
}

// List returns documents matching the filter, ordered by key.
func (e *Engine) List(filter store.ListFilter) ([]*document.Document, error) {
	if err := e.readable(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docs.List(filter), nil
}

// TagCounts returns the tag histogram.
func (e *Engine) TagCounts() ([]store.TagCount, error) {
	if err := e.readable(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docs.TagCounts(), nil
}

// Stats describes the engine and its index.
type Stats struct {
	store.Stats
	Generation    uint64             `json:"generation"`
	Terms         int                `json:"terms"`
	AvgDocLength  float64            `json:"avg_doc_length"`
	Status        Status             `json:"status"`
	WatcherType   string             `json:"watcher_type,omitempty"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	Queries       telemetry.Snapshot `json:"queries"`
}

// Stats returns current index statistics.
func (e *Engine) Stats() (Stats, error) {
	if err := e.readable(); err != nil {
		return Stats{}, err
	}
	e.mu.RLock()
	st := Stats{
		Stats:        e.docs.Stats(),
		Generation:   e.generation,
		Terms:        e.index.TermCount(),
		AvgDocLength: e.index.AvgDocLength(),
	}
	e.mu.RUnlock()

	h := e.Health()
	st.Status = h.Status
	st.WatcherType = h.WatcherType
	st.UptimeSeconds = time.Since(e.startedAt).Seconds()
	st.Queries = e.metrics.Snapshot(0)
	return st, nil
}

// QueryMetrics returns the detailed query telemetry, including the
// most frequent query aggregates.
func (e *Engine) QueryMetrics(topN int) telemetry.Snapshot {
	return e.metrics.Snapshot(topN)
}

// CurrentGeneration returns the committed generation counter.
func (e *Engine) CurrentGeneration() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// Health reports the engine's health, including aggregate per-document
// parse failures.
func (e *Engine) Health() Health {
	h := e.health.snapshot()
	e.mu.RLock()
	h.Generation = e.generation
	h.Documents = e.docs.Len()
	e.mu.RUnlock()
	if e.watch != nil {
		h.WatcherType = e.watch.WatcherType()
	}
	return h
}

// ReindexAll runs a synchronous full re-scan of the tree.
func (e *Engine) ReindexAll(ctx context.Context) error {
	if err := e.readable(); err != nil {
		return err
	}
	return e.ApplySync(ctx, Rescan())
}

// ClearIndex synchronously drops every document and posting.
func (e *Engine) ClearIndex(ctx context.Context) error {
	if err := e.readable(); err != nil {
		return err
	}
	return e.ApplySync(ctx, Clear())
}

// Upload writes a document into the tree and indexes it synchronously,
// so the caller's next query observes it regardless of watcher timing.
func (e *Engine) Upload(ctx context.Context, relPath string, content []byte) (string, error) {
	if err := e.readable(); err != nil {
		return "", err
	}

	key := document.KeyFromPath(relPath)
	if key == "" || key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", errors.InvalidQuery(fmt.Sprintf("invalid document path %q", relPath))
	}
	if !document.Supported(key) {
		return "", errors.Parse(errors.ErrCodeUnsupportedType, key,
			fmt.Errorf("unsupported document type"))
	}

	absPath := filepath.Join(e.cfg.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create document directory: %w", err)
	}
	if err := os.WriteFile(absPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	if err := e.ApplySync(ctx, Reindex(key)); err != nil {
		return "", err
	}
	return key, nil
}
