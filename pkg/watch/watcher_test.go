package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/popupkit/pkg/batch"
	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/util"
)

const record = `{"reminder_tab_state_json": {"enabled": true}, "template_html": "<div class=\"u-popup-container\">SALE</div>"}`

// --- Helpers ---

type stubMerger struct{}

func (stubMerger) MergeFromRecord(rec merger.TemplateData, _ merger.Options) (string, error) {
	if rec.TemplateHTML == "FAIL" {
		return "", errors.New("merge exploded")
	}
	return "<merged>" + rec.TemplateHTML + "</merged>", nil
}

func startWatcher(t *testing.T, m batch.RecordMerger, mutate func(*Options)) (*Watcher, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Debounce = 30 * time.Millisecond
	if mutate != nil {
		mutate(&opts)
	}

	cache, err := util.NewFileCache(util.FileCacheConfig{MaxFiles: 8, Logger: util.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	w, err := New(m, cache, opts, util.Discard())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), root))
	t.Cleanup(func() { _ = w.Stop() })
	return w, root
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(wait):
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// --- Tests ---

func TestWatcher_MergesChangedRecord(t *testing.T) {
	w, root := startWatcher(t, merger.New(nil, util.Discard()), nil)
	path := filepath.Join(root, "sale.json")

	write(t, path, record)

	ev := waitEvent(t, w)
	require.NoError(t, ev.Err)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, batch.OutputPath(path), ev.OutputPath)
	assert.Contains(t, ev.HTML, `<div class="u-popup-container">SALE</div>`)

	written, err := os.ReadFile(ev.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, ev.HTML, string(written))
}

func TestWatcher_PicksUpRewrites(t *testing.T) {
	w, root := startWatcher(t, stubMerger{}, func(o *Options) { o.WriteOutput = false })
	path := filepath.Join(root, "a.json")

	write(t, path, `{"template_html": "ONE"}`)
	assert.Equal(t, "<merged>ONE</merged>", waitEvent(t, w).HTML)

	// Size changes so the cached mapping cannot be mistaken for fresh.
	write(t, path, `{"template_html": "SECOND"}`)
	assert.Equal(t, "<merged>SECOND</merged>", waitEvent(t, w).HTML)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	w, root := startWatcher(t, stubMerger{}, func(o *Options) {
		o.Debounce = 150 * time.Millisecond
		o.WriteOutput = false
	})
	path := filepath.Join(root, "a.json")

	for i := 0; i < 5; i++ {
		write(t, path, `{"template_html": "A"}`)
	}

	waitEvent(t, w)
	assertNoEvent(t, w, 300*time.Millisecond)
	assert.Equal(t, int64(1), w.Stats().Merged)
}

func TestWatcher_IgnoresUnselectedFiles(t *testing.T) {
	w, root := startWatcher(t, stubMerger{}, nil)

	write(t, filepath.Join(root, "notes.txt"), "hello")
	write(t, filepath.Join(root, "package.json"), `{"name": "shop"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	write(t, filepath.Join(root, "node_modules", "x.json"), `{"template_html": "A"}`)

	assertNoEvent(t, w, 200*time.Millisecond)
	assert.Zero(t, w.Stats().Merged)
}

func TestWatcher_ReportsFailures(t *testing.T) {
	w, root := startWatcher(t, stubMerger{}, nil)

	write(t, filepath.Join(root, "a.json"), `{"template_html": "FAIL"}`)

	ev := waitEvent(t, w)
	assert.ErrorContains(t, ev.Err, "merge exploded")
	assert.Equal(t, int64(1), w.Stats().Failed)
}

func TestWatcher_Removal(t *testing.T) {
	w, root := startWatcher(t, stubMerger{}, func(o *Options) { o.WriteOutput = false })
	path := filepath.Join(root, "a.json")

	write(t, path, `{"template_html": "A"}`)
	waitEvent(t, w)

	require.NoError(t, os.Remove(path))
	ev := waitEvent(t, w)
	assert.True(t, ev.Removed)
	assert.Equal(t, path, ev.Path)
}

func TestWatcher_NewDirectory(t *testing.T) {
	w, root := startWatcher(t, stubMerger{}, func(o *Options) { o.WriteOutput = false })
	dir := filepath.Join(root, "campaigns")

	require.NoError(t, os.Mkdir(dir, 0o755))
	// Give the watcher a moment to add the directory.
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(dir, "b.json"), `{"template_html": "B"}`)

	ev := waitEvent(t, w)
	assert.Equal(t, filepath.Join(dir, "b.json"), ev.Path)
	assert.Equal(t, "<merged>B</merged>", ev.HTML)
}

func TestWatcher_Lifecycle(t *testing.T) {
	w, root := startWatcher(t, stubMerger{}, nil)
	assert.True(t, w.Stats().IsRunning)

	assert.ErrorContains(t, w.Start(context.Background(), root), "already started")

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.Stats().IsRunning)
	assert.ErrorContains(t, w.Start(context.Background(), root), "already stopped")
}

func TestWatcher_ContextCancelStops(t *testing.T) {
	root := t.TempDir()
	w, err := New(stubMerger{}, nil, DefaultOptions(), util.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, root))
	cancel()

	assert.Eventually(t, func() bool { return !w.Stats().IsRunning }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := New(stubMerger{}, nil, DefaultOptions(), util.Discard())
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Start(context.Background(), filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_StaleTimerKeepsNewerSchedule(t *testing.T) {
	opts := DefaultOptions()
	opts.Debounce = time.Hour
	opts.WriteOutput = false
	w, err := New(stubMerger{}, nil, opts, util.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	path := filepath.Join(t.TempDir(), "a.json")
	write(t, path, `{"template_html": "A"}`)

	w.schedule(path)
	w.timerMu.Lock()
	first := w.timers[path]
	w.timerMu.Unlock()

	// The first timer fires while a rewrite replaces it.
	w.schedule(path)
	w.fire(path, first)

	assert.Equal(t, 1, w.Stats().PendingMerges, "late callback must not drop the newer timer")
	assertNoEvent(t, w, 50*time.Millisecond)

	w.timerMu.Lock()
	second := w.timers[path]
	w.timerMu.Unlock()

	require.NoError(t, os.Remove(path))
	w.remove(path)
	assert.True(t, waitEvent(t, w).Removed)
	assert.Equal(t, 0, w.Stats().PendingMerges)

	// A timer that fired just before the removal does not merge a deleted file.
	w.fire(path, second)
	assertNoEvent(t, w, 50*time.Millisecond)
	assert.Equal(t, int64(0), w.Stats().Failed)
}

func TestWatcher_FireMergesCurrentTimer(t *testing.T) {
	opts := DefaultOptions()
	opts.Debounce = time.Hour
	opts.WriteOutput = false
	w, err := New(stubMerger{}, nil, opts, util.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	path := filepath.Join(t.TempDir(), "a.json")
	write(t, path, `{"template_html": "A"}`)

	w.schedule(path)
	w.timerMu.Lock()
	current := w.timers[path]
	w.timerMu.Unlock()
	current.Stop()

	w.fire(path, current)
	ev := waitEvent(t, w)
	assert.Equal(t, "<merged>A</merged>", ev.HTML)
	assert.Equal(t, 0, w.Stats().PendingMerges)
}
