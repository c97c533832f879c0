package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/util"
)

// ProgressCallback is called after each record finishes, successfully or not.
type ProgressCallback func(done, total int, path string)

// RunOptions configures a batch run.
type RunOptions struct {
	Include     []string
	Exclude     []string
	Workers     int
	Options     merger.Options
	WriteOutput bool
}

// DefaultRunOptions returns options that merge every JSON record under the
// root and write the outputs next to them.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Include:     append([]string(nil), DefaultInclude...),
		Exclude:     append([]string(nil), DefaultExclude...),
		Options:     merger.DefaultOptions(),
		WriteOutput: true,
	}
}

// Summary describes a finished batch run.
type Summary struct {
	FilesFound   int
	FilesMerged  int
	FilesSkipped int
	FilesFailed  int
	WorkerCount  int
	Results      []Result
	Errors       []JobError
	Duration     time.Duration
}

// Runner discovers and merges every record below a root directory.
type Runner struct {
	merger RecordMerger
	cache  *util.FileCache
	logger *slog.Logger
}

// NewRunner creates a runner. cache may be nil.
func NewRunner(m RecordMerger, cache *util.FileCache, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{merger: m, cache: cache, logger: logger}
}

// Run merges the records under root. Files that are not template records are
// counted as skipped. Results are returned in discovery order.
func (r *Runner) Run(ctx context.Context, root string, opts RunOptions, progress ProgressCallback) (*Summary, error) {
	start := time.Now()

	files, err := Discover(root, opts.Include, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	summary := &Summary{FilesFound: len(files)}
	r.logger.Info("Batch merge started", "root", root, "files", len(files))
	if len(files) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	pool := NewPool(ctx, r.merger, PoolConfig{
		Workers:     opts.Workers,
		Options:     opts.Options,
		WriteOutput: opts.WriteOutput,
		Cache:       r.cache,
		Logger:      r.logger,
	})
	summary.WorkerCount = pool.Stats().NumWorkers
	pool.Start()
	defer pool.Stop()

	results := make([]*Result, len(files))
	var jobErrors []JobError

	// The collector must run before submission or a full queue deadlocks it.
	done := make(chan struct{})
	go func() {
		defer close(done)
		finished := 0
		for finished < len(files) {
			select {
			case <-ctx.Done():
				return
			case res := <-pool.Results():
				results[res.JobID] = &res
				finished++
				if progress != nil {
					progress(finished, len(files), res.Path)
				}
			case jobErr := <-pool.Errors():
				jobErrors = append(jobErrors, jobErr)
				finished++
				if !errors.Is(jobErr.Err, ErrNotRecord) {
					r.logger.Warn("Record merge failed", "file", jobErr.Path, "error", jobErr.Err)
				}
				if progress != nil {
					progress(finished, len(files), jobErr.Path)
				}
			}
		}
	}()

	for i, file := range files {
		if err := pool.Submit(Job{Path: file, JobID: i}); err != nil {
			pool.FinishSubmitting()
			<-done
			return nil, fmt.Errorf("failed to submit %s: %w", file, err)
		}
	}
	pool.FinishSubmitting()
	<-done

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, res := range results {
		if res != nil {
			summary.Results = append(summary.Results, *res)
		}
	}
	for _, jobErr := range jobErrors {
		if errors.Is(jobErr.Err, ErrNotRecord) {
			summary.FilesSkipped++
			continue
		}
		summary.Errors = append(summary.Errors, jobErr)
	}
	summary.FilesMerged = len(summary.Results)
	summary.FilesFailed = len(summary.Errors)
	summary.Duration = time.Since(start)

	r.logger.Info("Batch merge finished",
		"merged", summary.FilesMerged,
		"skipped", summary.FilesSkipped,
		"failed", summary.FilesFailed,
		"duration_ms", summary.Duration.Milliseconds())

	return summary, nil
}
