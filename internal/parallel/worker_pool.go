// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"c19-miner/internal/cache"
	"c19-miner/internal/metrics"
	"c19-miner/internal/miner"
	"c19-miner/internal/observability"
	"c19-miner/internal/preprocessors"
	"c19-miner/internal/records"
	"c19-miner/internal/resilience"
)

// WorkerPool mines records on a fixed number of goroutines
type WorkerPool struct {
	workers int
	jobs    chan *Job
	results chan *Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	engine        *miner.Engine
	preprocessors *preprocessors.PreprocessorManager
	cache         *cache.MemoryCache
	metrics       *metrics.Metrics
	observer      *observability.StandardObserver
	recordTimeout time.Duration
}

// Job represents one record to mine
type Job struct {
	Index  int
	JobID  string
	Record records.Record
}

// Result represents the outcome of one record. Clues is nil when Error is set.
type Result struct {
	Index    int
	JobID    string
	Record   records.Record
	Clues    *miner.ClueSet
	Error    error
	Cached   bool
	Duration time.Duration
}

// Mentions counts the mentions kept in the result.
func (r *Result) Mentions() int {
	if r == nil || r.Clues == nil {
		return 0
	}
	total := 0
	for _, name := range r.Clues.Categories() {
		if c, ok := r.Clues.Category(name); ok {
			total += c.Count()
		}
	}
	return total
}

// NewWorkerPool creates a worker pool bound to ctx
func NewWorkerPool(ctx context.Context, workers int, deps Dependencies, recordTimeout time.Duration) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:       workers,
		jobs:          make(chan *Job, workers*2),
		results:       make(chan *Result, workers*2),
		ctx:           ctx,
		cancel:        cancel,
		engine:        deps.Engine,
		preprocessors: deps.Preprocessors,
		cache:         deps.Cache,
		metrics:       deps.Metrics,
		observer:      deps.Observer,
		recordTimeout: recordTimeout,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop waits for the workers and releases the pool
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit adds a job to the queue. It returns false once the pool is cancelled.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Close signals that no more jobs will be submitted
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob mines one record. Any failure, including the record timeout,
// becomes a RecordSkipped error on the result.
func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "process_record", job.Record.ID)
	}

	jobCtx, cancel := wp.ctx, context.CancelFunc(func() {})
	if wp.recordTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(wp.ctx, wp.recordTimeout)
	}
	defer cancel()

	type outcome struct {
		clues  *miner.ClueSet
		cached bool
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic mining record: %v", r)}
			}
		}()
		clues, cached, err := wp.mine(job.Record)
		done <- outcome{clues: clues, cached: cached, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-jobCtx.Done():
		// The mining goroutine cannot be interrupted; its result is dropped.
		out.err = resilience.NewTimeoutError(fmt.Sprintf("record %s exceeded %s", job.Record.ID, wp.recordTimeout), jobCtx.Err())
	}

	result := &Result{
		Index:    job.Index,
		JobID:    job.JobID,
		Record:   job.Record,
		Clues:    out.clues,
		Cached:   out.cached,
		Duration: time.Since(start),
	}
	if out.err != nil {
		result.Clues = nil
		result.Error = resilience.NewRecordSkippedError(fmt.Sprintf("record %s skipped", job.Record.ID), out.err)
	}

	if wp.metrics != nil {
		wp.metrics.RecordDuration.Observe(result.Duration.Seconds())
		if result.Error != nil {
			wp.metrics.RecordSkipped(out.err)
		} else {
			wp.metrics.RecordsProcessed.Inc()
		}
	}
	if result.Error != nil {
		wp.observer.RecordSkipped("worker_pool", job.Record.ID, out.err)
	}

	if finishTiming != nil {
		finishTiming(result.Error == nil, map[string]interface{}{
			"worker_id":     workerID,
			"mention_count": result.Mentions(),
			"cached":        result.Cached,
			"duration_ms":   result.Duration.Milliseconds(),
		})
	}
	return result
}

// mine loads the note text if needed, then runs every category, reusing a
// cached result for a note already seen in this run.
func (wp *WorkerPool) mine(rec records.Record) (*miner.ClueSet, bool, error) {
	text := rec.Text
	if !rec.Loaded() {
		if wp.preprocessors == nil {
			return nil, false, resilience.NewInvalidInputError(fmt.Sprintf("no preprocessor for %s", rec.Path), nil)
		}
		content, err := wp.preprocessors.ProcessFile(rec.Path)
		if err != nil {
			return nil, false, err
		}
		text = content.Text
	}

	if wp.cache != nil {
		clues, hit := wp.cache.Get(text)
		if wp.metrics != nil {
			wp.metrics.CacheHit(hit)
		}
		if hit {
			applyMeta(clues, rec.Meta)
			return clues, true, nil
		}
	}

	m := miner.New(text, wp.engine)
	if err := m.CheckAll(); err != nil {
		return nil, false, err
	}
	clues := m.Clues()

	if wp.cache != nil {
		if err := wp.cache.Set(text, clues); err != nil && wp.observer != nil && wp.observer.DebugObserver != nil {
			wp.observer.DebugObserver.LogDetail("worker_pool", fmt.Sprintf("cache store failed for %s: %v", rec.ID, err))
		}
	}
	applyMeta(clues, rec.Meta)
	return clues, false, nil
}

func applyMeta(clues *miner.ClueSet, meta []miner.MetaField) {
	for _, f := range meta {
		clues.SetMeta(f.Key, f.Value)
	}
}
