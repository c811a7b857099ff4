package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a named unit of periodic work. Run is called once per tick with a
// context that is cancelled when the runner shuts down.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives a fixed set of jobs on independent tickers. A job error is
// logged and the schedule keeps going.
type Runner struct {
	jobs []Job
	log  *slog.Logger
	wg   sync.WaitGroup
}

func NewRunner(log *slog.Logger, jobs ...Job) *Runner {
	return &Runner{jobs: jobs, log: log}
}

func (r *Runner) Start(ctx context.Context) {
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
}

// Wait blocks until all job loops have observed context cancellation.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	r.log.Info("job scheduled", "job", job.Name, "interval", job.Interval)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("job stopped", "job", job.Name)
			return
		case <-ticker.C:
			start := time.Now()
			if err := job.Run(ctx); err != nil {
				r.log.Error("job failed", "job", job.Name, "error", err)
				continue
			}
			r.log.Debug("job finished", "job", job.Name, "duration", time.Since(start))
		}
	}
}
