package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/or1un/mosaic/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent collection of multiple subjects.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-subject execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each subject.
	// We use a factory to ensure each run gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of subjects collected at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports.
	// Access is synchronized via mutex.
	results []*model.ProfileReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent collections.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each subject to create a
// fresh pipeline instance. This ensures that pipeline state doesn't leak
// between runs and allows for per-run customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.ProfileReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch collects multiple subjects concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each subject gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports collected, even for subjects that failed.
// The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, subjects []string) ([]*model.ProfileReport, error) {
	bp.logger.Info("starting batch collection",
		"total_subjects", len(subjects),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.ProfileReport, len(subjects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, subject := range subjects {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("collecting subject",
				"subject", subject,
				"index", i+1,
				"total", len(subjects),
			)

			// Create report for this subject
			report := model.NewProfileReport(subject)

			// Create and execute pipeline
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report contains error information if the run failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("collection failed",
					"subject", subject,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue other subjects
				// The error is recorded in the report
				return nil
			}

			bp.logger.Info("collection completed",
				"subject", subject,
			)

			return nil
		})
	}

	// Wait for all collections to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch collection complete",
		"total_subjects", len(subjects),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback collects multiple subjects and calls a callback
// for each completed run. This is useful for streaming results.
//
// The callback receives the report and the index of the subject in the
// original slice. The callback is called from the goroutine that completed
// the run, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	subjects []string,
	callback func(report *model.ProfileReport, index int),
) error {
	bp.logger.Info("starting batch collection with callback",
		"total_subjects", len(subjects),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, subject := range subjects {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewProfileReport(subject)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			// Call the callback with the result
			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
