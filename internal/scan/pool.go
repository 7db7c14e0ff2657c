package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Job is one independent unit of work: a single principal or site to
// resolve and traverse. An error return marks the job failed in the
// pool's counters; it never affects sibling jobs.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool executes jobs on a fixed-size worker pool. Failures and panics
// are contained per job; the pool always runs every submitted job to
// completion and has no cancellation path of its own.
type Pool struct {
	workers       int
	progressEvery int
	progress      func(done, total int)
	logger        *slog.Logger
}

// NewPool creates a pool. progressEvery controls how often the
// progress callback fires (every K completions); it is purely for
// observability. progress may be nil.
func NewPool(workers, progressEvery int, progress func(done, total int), logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}

	if progressEvery < 1 {
		progressEvery = 1
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		workers:       workers,
		progressEvery: progressEvery,
		progress:      progress,
		logger:        logger,
	}
}

// Run executes all jobs and blocks until every one has completed,
// returning success and failure counts.
func (p *Pool) Run(ctx context.Context, jobs []Job) (succeeded, failed int) {
	if len(jobs) == 0 {
		return 0, 0
	}

	var (
		okCount   atomic.Int64
		failCount atomic.Int64
		done      atomic.Int64
	)

	total := len(jobs)

	var g errgroup.Group

	g.SetLimit(p.workers)

	for i := range jobs {
		job := &jobs[i]

		g.Go(func() error {
			if err := p.safeRun(ctx, job); err != nil {
				failCount.Add(1)
				p.logger.Error("job failed",
					slog.String("job", job.Name),
					slog.String("error", err.Error()),
				)
			} else {
				okCount.Add(1)
			}

			n := int(done.Add(1))
			if p.progress != nil && (n%p.progressEvery == 0 || n == total) {
				p.progress(n, total)
			}

			// Job failures are isolated; never propagate into the
			// group, which would serve no caller.
			return nil
		})
	}

	// Err is always nil by construction; Wait only provides the barrier.
	_ = g.Wait()

	return int(okCount.Load()), int(failCount.Load())
}

// safeRun executes one job with panic recovery so a single bad
// principal can't take down the run.
func (p *Pool) safeRun(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in job",
				slog.String("job", job.Name),
				slog.Any("panic", r),
			)

			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return job.Run(ctx)
}
