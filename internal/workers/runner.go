// Package workers runs periodic background jobs on a single ticker.
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Runner struct {
	interval time.Duration
	jobs     []Job
	timeout  time.Duration

	wg sync.WaitGroup
}

func NewRunner(interval time.Duration, jobs ...Job) *Runner {
	return &Runner{
		interval: interval,
		jobs:     jobs,
		timeout:  interval,
	}
}

// Start runs every job once right away and then on each tick, until ctx is
// cancelled. Wait blocks until the loop has exited.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.tick(ctx)
			}
		}
	}()
}

func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) tick(ctx context.Context) {
	for _, job := range r.jobs {
		if ctx.Err() != nil {
			return
		}
		r.runOne(ctx, job)
	}
}

func (r *Runner) runOne(ctx context.Context, job Job) {
	jctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("worker job panicked", zap.String("job", job.Name()), zap.Any("panic", rec))
		}
	}()

	start := time.Now()
	if err := job.Run(jctx); err != nil {
		zap.L().Warn("worker job failed", zap.String("job", job.Name()), zap.Error(err))
		return
	}
	zap.L().Debug("worker job done", zap.String("job", job.Name()), zap.Duration("took", time.Since(start)))
}
