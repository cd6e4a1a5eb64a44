package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of jobs rendered at once.
const DefaultConcurrency = 4

// BatchRenderer handles concurrent rendering of many chart jobs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchRenderer rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on a single job
// 2. It provides cleaner separation of concerns
type BatchRenderer struct {
	// pipelineFactory creates a new pipeline for each job.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent jobs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchRenderer.
type BatchOption func(*BatchRenderer)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRenderer) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Default is DefaultConcurrency if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchRenderer) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchRenderer creates a new BatchRenderer.
//
// The pipelineFactory function is called for each job to create a fresh
// pipeline instance, so pipeline state doesn't leak between jobs.
func NewBatchRenderer(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchRenderer {
	br := &BatchRenderer{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(br)
	}

	if br.logger == nil {
		br.logger = slog.Default()
	}

	return br
}

// Render executes the jobs concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
//
// A failed job records its error in job.Err and does not stop the others.
// The returned jobs are the input slice, in input order. The error return
// is non-nil only when the context was cancelled; jobs that never started
// then carry the context error.
func (br *BatchRenderer) Render(ctx context.Context, jobs []*Job) ([]*Job, error) {
	return jobs, br.RenderWithCallback(ctx, jobs, nil)
}

// RenderWithCallback executes the jobs and calls callback for each
// finished job with its index in jobs. The callback is called from the
// goroutine that ran the job, so it must be safe for concurrent use.
func (br *BatchRenderer) RenderWithCallback(ctx context.Context, jobs []*Job, callback func(job *Job, index int)) error {
	br.logger.Debug("starting batch rendering",
		"total_jobs", len(jobs),
		"concurrency", br.concurrency,
	)

	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(br.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				job.Err = gctx.Err()
				return gctx.Err()
			default:
			}

			// Each job's error is kept on the job so the others continue.
			_ = br.pipelineFactory().Execute(gctx, job) //nolint:errcheck // Error is stored in job

			if callback != nil {
				callback(job, i)
			}
			return nil
		})
	}

	err := g.Wait()

	br.logger.Debug("batch rendering complete",
		"total_jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)

	return err
}

// Failed returns the jobs that ended with an error.
func Failed(jobs []*Job) []*Job {
	var out []*Job
	for _, job := range jobs {
		if job.Err != nil {
			out = append(out, job)
		}
	}
	return out
}
