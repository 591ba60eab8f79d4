// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"c19-miner/internal/cache"
	"c19-miner/internal/metrics"
	"c19-miner/internal/miner"
	"c19-miner/internal/observability"
	"c19-miner/internal/preprocessors"
	"c19-miner/internal/records"
	"c19-miner/internal/resilience"

	"github.com/google/uuid"
)

// MaxWorkers caps the default pool size
const MaxWorkers = 8

// DefaultWorkers returns runtime.NumCPU() capped at MaxWorkers
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return workers
}

// Dependencies are shared by every worker. Only Engine is required.
type Dependencies struct {
	Engine        *miner.Engine
	Preprocessors *preprocessors.PreprocessorManager
	Cache         *cache.MemoryCache
	Metrics       *metrics.Metrics
	Observer      *observability.StandardObserver
}

// BatchConfig sizes a batch run
type BatchConfig struct {
	Workers       int
	RecordTimeout time.Duration
}

// BatchProcessor mines many records in parallel
type BatchProcessor struct {
	config BatchConfig
	deps   Dependencies
}

// ProcessingStats tracks batch statistics
type ProcessingStats struct {
	RunID            string        `json:"run_id"`
	TotalRecords     int           `json:"total_records"`
	ProcessedRecords int           `json:"processed_records"`
	SkippedRecords   int           `json:"skipped_records"`
	CachedRecords    int           `json:"cached_records"`
	TotalMentions    int           `json:"total_mentions"`
	TotalDuration    time.Duration `json:"total_duration_ms"`
	WorkerCount      int           `json:"worker_count"`
	AvgRecordTime    time.Duration `json:"avg_record_time_ms"`
}

// ProgressCallback is called when a record is completed
type ProgressCallback func(completed, total int, currentRecord string)

// NewBatchProcessor creates a batch processor. Zero workers means DefaultWorkers.
func NewBatchProcessor(config BatchConfig, deps Dependencies) (*BatchProcessor, error) {
	if deps.Engine == nil {
		return nil, resilience.NewInvalidInputError("batch processor needs an engine", nil)
	}
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers()
	}
	return &BatchProcessor{config: config, deps: deps}, nil
}

// Workers returns the pool size
func (bp *BatchProcessor) Workers() int {
	return bp.config.Workers
}

// Process mines recs and returns one result per record, in input order.
// Skipped records carry their error; the batch itself only fails when ctx
// is cancelled, in which case records never reached are left nil.
func (bp *BatchProcessor) Process(ctx context.Context, recs []records.Record, progressCallback ProgressCallback) ([]*Result, *ProcessingStats, error) {
	start := time.Now()
	runID := uuid.NewString()

	var finishTiming func(bool, map[string]interface{})
	if bp.deps.Observer != nil {
		finishTiming = bp.deps.Observer.StartTiming("batch_processor", "process_records", runID)
	}

	pool := NewWorkerPool(ctx, bp.config.Workers, bp.deps, bp.config.RecordTimeout)
	pool.Start()
	// Results close once every worker has returned
	go pool.Stop()

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.Close()
		for i, rec := range recs {
			job := &Job{
				Index:  i,
				JobID:  fmt.Sprintf("%s/%d", runID, i),
				Record: rec,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	results := make([]*Result, len(recs))
	stats := &ProcessingStats{
		RunID:        runID,
		TotalRecords: len(recs),
		WorkerCount:  bp.config.Workers,
	}
	totalDuration := time.Duration(0)

	completed := 0
	for result := range pool.Results() {
		results[result.Index] = result
		completed++
		totalDuration += result.Duration

		switch {
		case result.Error != nil:
			stats.SkippedRecords++
		default:
			stats.ProcessedRecords++
			stats.TotalMentions += result.Mentions()
			if result.Cached {
				stats.CachedRecords++
			}
		}

		if progressCallback != nil {
			progressCallback(completed, len(recs), result.Record.ID)
		}
	}

	stats.TotalDuration = time.Since(start)
	stats.AvgRecordTime = totalDuration / time.Duration(max(completed, 1))

	err := ctx.Err()
	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"run_id":            runID,
			"total_records":     stats.TotalRecords,
			"processed_records": stats.ProcessedRecords,
			"skipped_records":   stats.SkippedRecords,
			"cached_records":    stats.CachedRecords,
			"worker_count":      stats.WorkerCount,
			"duration_ms":       stats.TotalDuration.Milliseconds(),
		})
	}
	if err != nil {
		return results, stats, fmt.Errorf("batch %s interrupted after %d of %d records: %w", runID, completed, len(recs), err)
	}
	return results, stats, nil
}
