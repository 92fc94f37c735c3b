package sanmark

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Transform is the caller-supplied per-chunk work. It must treat the
// chunk as read-only and honor ctx for cancellation; a returned error
// drops the chunk's contribution without aborting the run.
type Transform[T any] func(ctx context.Context, c Chunk) ([]T, error)

// ChunkResult carries one chunk's transform output. ChunkID is the order
// key: consumers of the unordered stream that need document order must
// re-sort by it (or use RunOrdered).
type ChunkResult[T any] struct {
	ChunkID int
	Values  []T
}

// Progress is delivered to the progress callback after every chunk
// completes, whether it succeeded or failed.
type Progress struct {
	Completed int // chunks finished so far, including failures
	Total     int
	ChunkID   int // the chunk that just finished
	Percent   float64
}

// Report summarizes one executor run.
type Report struct {
	Completed int // chunks processed, including failures
	Failed    int // chunks whose transform returned an error or panicked
	Total     int
}

// execConfig holds executor settings shared by all runs.
type execConfig struct {
	workers     int
	taskTimeout time.Duration
	onProgress  func(Progress)
	logf        func(format string, args ...any)
}

// ExecOption configures an Executor.
type ExecOption func(*execConfig)

// WithWorkers bounds the worker pool. Values below 1 select the
// available parallelism.
func WithWorkers(n int) ExecOption {
	return func(c *execConfig) { c.workers = n }
}

// WithExecTaskTimeout bounds each chunk transform. A transform that
// exceeds the timeout is treated as a per-chunk failure; the worker slot
// is reclaimed immediately. Zero disables the timeout.
func WithExecTaskTimeout(d time.Duration) ExecOption {
	return func(c *execConfig) { c.taskTimeout = d }
}

// WithProgress installs a completion callback. It runs on worker
// goroutines under the executor's mutex and must not block, or it will
// serialize the whole pool.
func WithProgress(fn func(Progress)) ExecOption {
	return func(c *execConfig) { c.onProgress = fn }
}

// WithExecLogger installs a logger for per-chunk failures. The executor
// is silent without one.
func WithExecLogger(logf func(format string, args ...any)) ExecOption {
	return func(c *execConfig) { c.logf = logf }
}

// Executor runs a Transform concurrently across chunks on a bounded
// worker pool. Results stream as chunks complete; per-chunk failures are
// isolated and never abort the run.
//
// An Executor tracks the report of its most recent run, so a single
// Executor must not run twice concurrently. Create one per pipeline
// invocation; they are cheap.
type Executor[T any] struct {
	cfg execConfig

	mu     sync.Mutex
	report Report
}

// NewExecutor creates an Executor with the given options.
func NewExecutor[T any](opts ...ExecOption) *Executor[T] {
	e := &Executor[T]{}
	for _, opt := range opts {
		opt(&e.cfg)
	}
	return e
}

// RunUnordered dispatches one task per chunk to the worker pool and
// returns a channel that streams results as chunks complete, not in
// chunk order. The channel closes once every chunk has been processed
// or ctx is cancelled. Failed chunks produce no result; consult Report
// for the completed-versus-total count afterwards.
func (e *Executor[T]) RunUnordered(ctx context.Context, chunks []Chunk, transform Transform[T]) <-chan ChunkResult[T] {
	out := make(chan ChunkResult[T], len(chunks))
	if transform == nil {
		// Misuse, not a data condition: surface it loudly instead of
		// silently dropping every chunk.
		panic("sanmark: " + ErrNilTransform.Error())
	}

	e.mu.Lock()
	e.report = Report{Total: len(chunks)}
	e.mu.Unlock()

	if len(chunks) == 0 {
		close(out)
		return out
	}

	workers := e.cfg.workers
	if workers < 1 {
		workers = availableParallelism()
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	tasks := make(chan Chunk)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for c := range tasks {
				values, err := e.runOne(ctx, c, transform)
				e.complete(c.ID, err)
				if err == nil {
					out <- ChunkResult[T]{ChunkID: c.ID, Values: values}
				}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, c := range chunks {
			select {
			case tasks <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// RunOrdered runs the transform across all chunks and returns the
// results re-sorted into ascending chunk-ID order. Use this instead of
// assuming any ordering on the unordered stream.
func (e *Executor[T]) RunOrdered(ctx context.Context, chunks []Chunk, transform Transform[T]) []ChunkResult[T] {
	results := make([]ChunkResult[T], 0, len(chunks))
	for r := range e.RunUnordered(ctx, chunks, transform) {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ChunkID < results[j].ChunkID })
	return results
}

// Report returns the counters of the most recent run. It is only
// meaningful once the result stream has been drained.
func (e *Executor[T]) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.report
}

// runOne executes the transform for one chunk, converting panics and
// timeouts into per-chunk errors.
func (e *Executor[T]) runOne(ctx context.Context, c Chunk, transform Transform[T]) (values []T, err error) {
	if e.cfg.taskTimeout <= 0 {
		defer func() {
			if r := recover(); r != nil {
				values, err = nil, fmt.Errorf("transform panic: %v", r)
			}
		}()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return transform(ctx, c)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.taskTimeout)
	defer cancel()

	type outcome struct {
		values []T
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("transform panic: %v", r)}
			}
		}()
		v, err := transform(runCtx, c)
		done <- outcome{values: v, err: err}
	}()

	// A transform that ignores runCtx is abandoned on timeout so the
	// worker slot is reclaimed; the buffered channel lets it finish in
	// the background without leaking a send.
	select {
	case o := <-done:
		return o.values, o.err
	case <-runCtx.Done():
		return nil, runCtx.Err()
	}
}

// complete updates the shared counters and fires the progress callback.
// Both happen under the mutex because workers finish concurrently.
func (e *Executor[T]) complete(chunkID int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.report.Completed++
	if err != nil {
		e.report.Failed++
		if e.cfg.logf != nil {
			e.cfg.logf("chunk %d failed: %v", chunkID, err)
		}
	}
	if e.cfg.onProgress != nil {
		e.cfg.onProgress(Progress{
			Completed: e.report.Completed,
			Total:     e.report.Total,
			ChunkID:   chunkID,
			Percent:   float64(e.report.Completed) * 100 / float64(e.report.Total),
		})
	}
}

// PartitionAndProcess is the batch entry point: partition lines
// adaptively, run the transform across a bounded worker pool, and return
// results in ascending chunk order together with the run report.
func PartitionAndProcess[T any](ctx context.Context, lines []string, transform Transform[T], opts ...ExecOption) ([]ChunkResult[T], Report) {
	chunks := PartitionAdaptive(lines, 0)
	exec := NewExecutor[T](opts...)
	results := exec.RunOrdered(ctx, chunks, transform)
	return results, exec.Report()
}
