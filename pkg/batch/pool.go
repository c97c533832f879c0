package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/util"
)

// RecordMerger merges a stored template record into a final document.
type RecordMerger interface {
	MergeFromRecord(rec merger.TemplateData, opts merger.Options) (string, error)
}

// Job is a record file queued for merging.
type Job struct {
	Path  string
	JobID int
}

// Result is a merged record. OutputPath is empty when the pool does not
// write outputs.
type Result struct {
	Path       string
	OutputPath string
	HTML       string
	JobID      int
}

// JobError is a record that could not be merged.
type JobError struct {
	Path  string
	JobID int
	Err   error
}

func (e JobError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e JobError) Unwrap() error {
	return e.Err
}

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Workers is the number of merge goroutines. 0 means util.GetOptimalPoolSize().
	Workers int

	// Options are passed to every merge.
	Options merger.Options

	// WriteOutput writes each merged document next to its record.
	WriteOutput bool

	// Cache serves record reads. Optional.
	Cache *util.FileCache

	Logger *slog.Logger
}

// Pool merges records concurrently.
//
//	pool := NewPool(ctx, m, cfg)
//	pool.Start()
//	defer pool.Stop()
//	for i, path := range paths {
//	    pool.Submit(Job{Path: path, JobID: i})
//	}
//	pool.FinishSubmitting()
//
// Results and errors must be drained while jobs are submitted.
type Pool struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	errors     chan JobError
	wg         sync.WaitGroup
	merger     RecordMerger
	cfg        PoolConfig
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// PoolStats is a snapshot of pool counters.
type PoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int
	ResultsQueued int
	ErrorsQueued  int
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops the workers.
func NewPool(ctx context.Context, m RecordMerger, cfg PoolConfig) *Pool {
	numWorkers := util.GetOptimalPoolSizeWithOverride(cfg.Workers)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numWorkers*2),
		results:    make(chan Result, numWorkers),
		errors:     make(chan JobError, numWorkers),
		merger:     m,
		cfg:        cfg,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the workers. It must be called before Submit.
func (p *Pool) Start() {
	if !p.started.CompareAndSwap(false, true) {
		p.logger.Warn("Merge pool already started")
		return
	}

	p.logger.Info("Starting merge pool", "workers", p.numWorkers)

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Merge worker cancelled", "worker_id", id)
			return

		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.processJob(id, job)
		}
	}
}

func (p *Pool) processJob(workerID int, job Job) {
	p.logger.Debug("Merging record", "worker_id", workerID, "file", job.Path, "job_id", job.JobID)

	rec, err := LoadRecord(p.cfg.Cache, job.Path)
	if err != nil {
		p.fail(job, err)
		return
	}

	html, err := p.merger.MergeFromRecord(rec, p.cfg.Options)
	if err != nil {
		p.fail(job, fmt.Errorf("merge failed: %w", err))
		return
	}

	result := Result{Path: job.Path, HTML: html, JobID: job.JobID}
	if p.cfg.WriteOutput {
		result.OutputPath = OutputPath(job.Path)
		if err := os.WriteFile(result.OutputPath, []byte(html), 0o644); err != nil {
			p.fail(job, fmt.Errorf("failed to write output: %w", err))
			return
		}
	}

	p.jobsProcessed.Add(1)
	select {
	case <-p.ctx.Done():
	case p.results <- result:
	}
}

func (p *Pool) fail(job Job, err error) {
	p.jobsFailed.Add(1)
	select {
	case <-p.ctx.Done():
	case p.errors <- JobError{Path: job.Path, JobID: job.JobID, Err: err}:
	}
}

// Submit enqueues a job. It blocks while the queue is full.
func (p *Pool) Submit(job Job) error {
	if p.stopped.Load() || p.jobsClosed.Load() {
		return fmt.Errorf("merge pool is not accepting jobs")
	}

	p.jobsSubmitted.Add(1)

	select {
	case <-p.ctx.Done():
		return fmt.Errorf("merge pool cancelled: %w", p.ctx.Err())
	case p.jobs <- job:
		return nil
	}
}

// Results returns the channel of merged records.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Errors returns the channel of failed records.
func (p *Pool) Errors() <-chan JobError {
	return p.errors
}

// FinishSubmitting closes the job queue so workers exit once it drains.
// Safe to call more than once.
func (p *Pool) FinishSubmitting() {
	if p.jobsClosed.CompareAndSwap(false, true) {
		close(p.jobs)
		p.logger.Debug("Merge queue closed", "total_submitted", p.jobsSubmitted.Load())
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Stop closes the queue, waits for in-flight jobs and closes the result
// channels. Safe to call more than once.
func (p *Pool) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}

	p.FinishSubmitting()
	p.wg.Wait()

	close(p.results)
	close(p.errors)
	p.cancel()

	p.logger.Info("Merge pool stopped",
		"jobs_submitted", p.jobsSubmitted.Load(),
		"jobs_processed", p.jobsProcessed.Load(),
		"jobs_failed", p.jobsFailed.Load())
}

// Stats returns current pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		NumWorkers:    p.numWorkers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsProcessed: p.jobsProcessed.Load(),
		JobsFailed:    p.jobsFailed.Load(),
		QueueLength:   len(p.jobs),
		ResultsQueued: len(p.results),
		ErrorsQueued:  len(p.errors),
	}
}
