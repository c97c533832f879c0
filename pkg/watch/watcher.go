// Package watch re-merges template records as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/popupkit/pkg/batch"
	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/util"
)

// DefaultDebounce groups the bursts of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce    time.Duration
	Include     []string
	Exclude     []string
	Merge       merger.Options
	WriteOutput bool
}

// DefaultOptions watches every JSON record and writes merged outputs.
func DefaultOptions() Options {
	return Options{
		Debounce:    DefaultDebounce,
		Include:     append([]string(nil), batch.DefaultInclude...),
		Exclude:     append([]string(nil), batch.DefaultExclude...),
		Merge:       merger.DefaultOptions(),
		WriteOutput: true,
	}
}

// Event reports the outcome of one re-merge or removal.
type Event struct {
	Path       string
	OutputPath string
	HTML       string
	Removed    bool
	Err        error
}

// Stats is a snapshot of watcher counters.
type Stats struct {
	PendingMerges int
	Merged        int64
	Failed        int64
	Dropped       int64
	IsRunning     bool
}

// Watcher watches a directory tree and re-merges records after they change.
//
//	w, err := watch.New(m, cache, watch.DefaultOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx, "./popups"); err != nil {
//	    return err
//	}
//	defer w.Stop()
//	for ev := range w.Events() { ... }
type Watcher struct {
	fsw     *fsnotify.Watcher
	merger  batch.RecordMerger
	cache   *util.FileCache
	options Options
	logger  *slog.Logger
	root    string
	events  chan Event

	timers  map[string]*time.Timer
	timerMu sync.Mutex

	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex

	merged  atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// New creates a watcher. cache may be nil; when set, changed records are
// invalidated before they are re-read.
func New(m batch.RecordMerger, cache *util.FileCache, options Options, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}

	return &Watcher{
		fsw:      fsw,
		merger:   m,
		cache:    cache,
		options:  options,
		logger:   logger,
		events:   make(chan Event, 64),
		timers:   make(map[string]*time.Timer),
		stopChan: make(chan struct{}),
	}, nil
}

// Events returns the channel of merge outcomes. Events are dropped when the
// channel is full. The channel is never closed.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start watches root and its subdirectories. The event loop runs until ctx
// is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("watcher already stopped")
	}
	if w.started {
		return errors.New("watcher already started")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	w.root = abs

	if err := w.addTree(abs); err != nil {
		return err
	}
	w.started = true

	w.logger.Info("Record watcher started", "root", abs, "debounce_ms", w.options.Debounce.Milliseconds())

	go w.eventLoop(ctx)
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops watching and cancels pending merges. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.timerMu.Lock()
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.timerMu.Unlock()

	err := w.fsw.Close()
	w.logger.Info("Record watcher stopped", "merged", w.merged.Load(), "failed", w.failed.Load())
	return err
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return

		case <-w.stopChan:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Record watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excluded(path) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
				w.scanDir(path)
			}
			return
		}
	}

	if !w.selected(path) {
		return
	}

	w.logger.Debug("Record event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.schedule(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.remove(path)
	}
}

// scanDir schedules the records already present in a directory that
// appeared after Start.
func (w *Watcher) scanDir(dir string) {
	files, err := batch.Discover(dir, nil, nil)
	if err != nil {
		return
	}
	for _, file := range files {
		if w.selected(file) {
			w.schedule(file)
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.options.Debounce, func() { w.fire(path, timer) })
	w.timers[path] = timer
}

// fire merges path if timer is still the one scheduled for it. A timer that
// fired while being replaced or removed leaves the newer entry alone.
func (w *Watcher) fire(path string, timer *time.Timer) {
	w.timerMu.Lock()
	current := w.timers[path] == timer
	if current {
		delete(w.timers, path)
	}
	w.timerMu.Unlock()
	if !current {
		return
	}

	select {
	case <-w.stopChan:
		return
	default:
	}
	w.mergeFile(path)
}

func (w *Watcher) mergeFile(path string) {
	if w.cache != nil {
		w.cache.Invalidate(path)
	}

	rec, err := batch.LoadRecord(w.cache, path)
	if errors.Is(err, batch.ErrNotRecord) {
		w.logger.Debug("Skipping non-record file", "file", path)
		return
	}
	if err != nil {
		w.report(Event{Path: path, Err: err})
		return
	}

	html, err := w.merger.MergeFromRecord(rec, w.options.Merge)
	if err != nil {
		w.report(Event{Path: path, Err: err})
		return
	}

	ev := Event{Path: path, HTML: html}
	if w.options.WriteOutput {
		ev.OutputPath = batch.OutputPath(path)
		if err := os.WriteFile(ev.OutputPath, []byte(html), 0o644); err != nil {
			ev.Err = fmt.Errorf("failed to write output: %w", err)
		}
	}
	w.report(ev)
}

func (w *Watcher) remove(path string) {
	w.timerMu.Lock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}
	w.timerMu.Unlock()

	if w.cache != nil {
		w.cache.Invalidate(path)
	}
	w.report(Event{Path: path, Removed: true})
}

func (w *Watcher) report(ev Event) {
	switch {
	case ev.Removed:
		w.logger.Debug("Record removed", "file", ev.Path)
	case ev.Err != nil:
		w.failed.Add(1)
		w.logger.Warn("Record merge failed", "file", ev.Path, "error", ev.Err)
	default:
		w.merged.Add(1)
		w.logger.Info("Record merged", "file", ev.Path, "output", ev.OutputPath)
	}

	select {
	case w.events <- ev:
	default:
		w.dropped.Add(1)
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) excluded(dir string) bool {
	rel := w.rel(dir)
	return !batch.Match(rel, nil, w.options.Exclude)
}

func (w *Watcher) selected(path string) bool {
	return batch.Match(w.rel(path), w.options.Include, w.options.Exclude)
}

// Stats returns current watcher counters.
func (w *Watcher) Stats() Stats {
	w.timerMu.Lock()
	pending := len(w.timers)
	w.timerMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return Stats{
		PendingMerges: pending,
		Merged:        w.merged.Load(),
		Failed:        w.failed.Load(),
		Dropped:       w.dropped.Load(),
		IsRunning:     running,
	}
}
