package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNoDocument is returned by the filter step when it runs before any
// capture step produced a document.
var ErrNoDocument = errors.New("no document captured for this input")

// Batch handles concurrent processing of multiple inputs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate Batch rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-input execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type Batch struct {
	// factory creates a new pipeline for each job.
	// We use a factory to ensure each job gets a fresh pipeline instance.
	factory func() *Pipeline

	// concurrency is the maximum number of concurrent jobs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatch creates a new Batch.
//
// The factory function is called for each job to create a fresh pipeline
// instance. This ensures that pipeline state doesn't leak between jobs
// and allows for per-job customization if needed.
func NewBatch(factory func() *Pipeline, opts ...BatchOption) *Batch {
	b := &Batch{
		factory:     factory,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Process runs the pipeline over every job concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each job gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Job failures are recorded in each job's Err field rather than aborting
// the batch; the error return indicates cancellation only.
func (b *Batch) Process(ctx context.Context, jobs []*Job) error {
	b.logger.Info("starting batch processing",
		"total_inputs", len(jobs),
		"concurrency", b.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			b.logger.Info("processing input",
				"input", job.Input,
				"index", i+1,
				"total", len(jobs),
			)

			// Each goroutine owns its job; no locking needed.
			if err := b.factory().Execute(ctx, job); err != nil {
				job.Err = err
				b.logger.Warn("input failed",
					"input", job.Input,
					"error", err,
				)
				// Don't return the error to errgroup - we want to
				// continue the other jobs. The error is recorded in
				// the job.
				return nil
			}

			b.logger.Info("input completed", "input", job.Input)
			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	b.logger.Info("batch processing complete",
		"total_inputs", len(jobs),
		"elapsed", elapsed,
	)

	return err
}

// ProcessWithCallback runs the pipeline over every job and calls a
// callback for each completed one. This is useful for streaming results
// as they arrive instead of waiting for the whole batch.
//
// The callback is called from the goroutine that completed the job, so
// it must be safe for concurrent use if it accesses shared state.
func (b *Batch) ProcessWithCallback(ctx context.Context, jobs []*Job, callback func(job *Job)) error {
	b.logger.Info("starting batch processing with callback",
		"total_inputs", len(jobs),
		"concurrency", b.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for _, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := b.factory().Execute(ctx, job); err != nil {
				job.Err = err
			}

			callback(job)
			return nil
		})
	}

	return g.Wait()
}
