// FileCache provides memory-mapped access to template record files.
//
// **Behavior:**
//   - Lazy loading: files are mapped on first access
//   - Bounded: least recently used files are unmapped once MaxFiles is reached
//   - Fresh: a file whose size or modification time changed is remapped
//   - Graceful fallback to os.ReadFile if mmap fails
//
// **Use Cases:**
//  1. Batch merging: many records read once by concurrent workers
//  2. Watching: the same records re-read after every change
package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files kept mapped. When the limit is
	// reached the least recently used file is unmapped. Zero means 1024.
	MaxFiles int

	// Logger for warnings and errors. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns the defaults used by batch and watch.
func DefaultFileCacheConfig() FileCacheConfig {
	return FileCacheConfig{MaxFiles: 1024}
}

// MappedFile is one cached file.
type MappedFile struct {
	Path    string
	Data    mmap.MMap
	Size    int64
	ModTime time.Time

	// file is nil for fallback entries (data read into memory).
	file *os.File
}

func (mf *MappedFile) release() error {
	var errs []error
	if mf.file != nil {
		if mf.Data != nil {
			if err := mf.Data.Unmap(); err != nil {
				errs = append(errs, fmt.Errorf("unmap %q: %w", mf.Path, err))
			}
		}
		if err := mf.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", mf.Path, err))
		}
	}
	mf.Data = nil
	mf.file = nil
	return errors.Join(errs...)
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesCached  int
	CacheHits    int64
	CacheMisses  int64
	Evictions    int64
	Reloads      int64
	MmapFailures int64
}

// FileCache is safe for concurrent use. Readers share the lock; loading,
// eviction and Close take it exclusively, so a mapping is never released
// while a reader is using it.
type FileCache struct {
	mu     sync.RWMutex
	files  *lru.Cache[string, *MappedFile]
	logger *slog.Logger

	statsMu sync.Mutex
	stats   FileCacheStats
}

// NewFileCache creates a FileCache with the given config.
func NewFileCache(config FileCacheConfig) (*FileCache, error) {
	if config.MaxFiles <= 0 {
		config.MaxFiles = DefaultFileCacheConfig().MaxFiles
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	fc := &FileCache{logger: config.Logger}
	files, err := lru.NewWithEvict(config.MaxFiles, func(path string, mf *MappedFile) {
		fc.record(func(s *FileCacheStats) { s.Evictions++ })
		if err := mf.release(); err != nil {
			fc.logger.Warn("failed to release evicted file", "path", path, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create file cache: %w", err)
	}
	fc.files = files
	return fc, nil
}

// With calls fn with the content of path. The slice is only valid during
// fn; copy it to keep it.
func (fc *FileCache) With(path string, fn func(data []byte) error) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %q: %w", path, err)
	}

	fc.mu.RLock()
	if mf, ok := fc.files.Get(path); ok && fresh(mf, stat) {
		defer fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return fn(mf.Data)
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	mf, ok := fc.files.Peek(path)
	switch {
	case ok && fresh(mf, stat):
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
	default:
		if ok {
			fc.files.Remove(path)
			fc.record(func(s *FileCacheStats) { s.Reloads++ })
		} else {
			fc.record(func(s *FileCacheStats) { s.CacheMisses++ })
		}
		mf, err = fc.load(path)
		if err != nil {
			fc.mu.Unlock()
			return err
		}
		fc.files.Add(path, mf)
	}
	fc.mu.Unlock()

	// Re-enter as a reader so fn runs without blocking other readers.
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	if cur, ok := fc.files.Peek(path); ok {
		return fn(cur.Data)
	}
	return fmt.Errorf("file %q evicted before use", path)
}

// ReadFile returns a copy of the content of path.
func (fc *FileCache) ReadFile(path string) ([]byte, error) {
	var out []byte
	err := fc.With(path, func(data []byte) error {
		out = append([]byte(nil), data...)
		return nil
	})
	return out, err
}

func fresh(mf *MappedFile, stat os.FileInfo) bool {
	return mf.Size == stat.Size() && mf.ModTime.Equal(stat.ModTime())
}

// load opens and maps a file, falling back to os.ReadFile if mmap fails.
//
// Must be called while holding mu.Lock.
func (fc *FileCache) load(path string) (*MappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}

	mf := &MappedFile{Path: path, Size: stat.Size(), ModTime: stat.ModTime()}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return mf, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using fallback",
			"file", path,
			"size", stat.Size(),
			"error", err)
		file.Close()
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				path, err, readErr)
		}
		mf.Data = mmap.MMap(raw)
		mf.Size = int64(len(raw))
		return mf, nil
	}

	mf.Data = data
	mf.file = file
	return mf, nil
}

// Invalidate unmaps path if it is cached.
func (fc *FileCache) Invalidate(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.files.Remove(path)
}

// Len returns the number of cached files.
func (fc *FileCache) Len() int {
	return fc.files.Len()
}

// Stats returns current cache metrics.
func (fc *FileCache) Stats() FileCacheStats {
	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	stats := fc.stats
	stats.FilesCached = fc.files.Len()
	return stats
}

func (fc *FileCache) record(update func(*FileCacheStats)) {
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}

// Close unmaps all files. Release failures are logged.
func (fc *FileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.files.Purge()

	stats := fc.Stats()
	fc.logger.Debug("file cache closed",
		"cache_hits", stats.CacheHits,
		"cache_misses", stats.CacheMisses,
		"evictions", stats.Evictions)
	return nil
}
