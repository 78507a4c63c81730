package worker

import (
	"context"
	"sync"
	"time"

	"github.com/prixtn/pricewatch/internal/scraper"
	"github.com/prixtn/pricewatch/logger"
	"github.com/prixtn/pricewatch/services/publisher"
)

// Job identifies one supplier+category crawl.
type Job struct {
	Supplier  string
	Category  string
	StartPage int
}

// RunFunc executes one crawl and returns its counters.
type RunFunc func(ctx context.Context, supplier, category string, startPage int) (scraper.Stats, error)

// Worker runs the configured crawl jobs concurrently. Different
// supplier/category pairs target disjoint collections, so one sweep fans
// out across all jobs at once.
type Worker struct {
	ctx      context.Context
	jobs     []Job
	run      RunFunc
	pub      publisher.Publisher
	interval time.Duration
	log      *logger.Logger
}

// NewWorker creates a worker. pub may be nil; interval <= 0 means a single
// sweep.
func NewWorker(ctx context.Context, jobs []Job, run RunFunc, pub publisher.Publisher, interval time.Duration) *Worker {
	return &Worker{
		ctx:      ctx,
		jobs:     jobs,
		run:      run,
		pub:      pub,
		interval: interval,
		log:      logger.ForComponent("worker"),
	}
}

// Start runs sweeps until the context is cancelled, or once when no
// interval is configured. Individual job failures are logged, never fatal:
// a dead supplier site must not take the other crawls down.
func (w *Worker) Start() error {
	for {
		start := time.Now()
		w.sweep()
		w.log.Info().Dur("elapsed", time.Since(start)).Msg("Crawl sweep finished")

		if w.interval <= 0 {
			return nil
		}

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// sweep runs every job once, in parallel.
func (w *Worker) sweep() {
	var wg sync.WaitGroup
	for _, job := range w.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()

			stats, err := w.run(w.ctx, job.Supplier, job.Category, job.StartPage)
			if err != nil {
				w.log.WithError(err).Error().
					Str("supplier", job.Supplier).
					Str("category", job.Category).
					Msg("Crawl failed")
				return
			}
			w.log.Info().
				Str("supplier", job.Supplier).
				Str("category", job.Category).
				Int("pages_visited", stats.PagesVisited).
				Int("saved", stats.Saved).
				Int("duplicates", stats.Duplicates).
				Int("rejected", stats.Rejected).
				Int("errors", stats.Errors).
				Msg("Crawl summary")
		}(job)
	}
	wg.Wait()

	if w.pub != nil {
		if err := w.pub.TrimStreams(); err != nil {
			w.log.Error().Err(err).Msg("Stream trimming failed")
		}
	}
}
