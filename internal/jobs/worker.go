// Package jobs runs the Postgres-backed background job queue: a polling
// worker claims due jobs in batches and dispatches them to registered
// handlers, rescheduling failures on an exponential backoff.
package jobs

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"taskhub/internal/store/repositories"
)

// Handler processes one job payload. A nil return marks the job done; an
// error reschedules it until the attempt budget runs out.
type Handler func(ctx context.Context, payload []byte) error

type Worker struct {
	repo        repositories.JobRepository
	handlers    map[string]Handler
	pollEvery   time.Duration
	batch       int
	maxAttempts int
}

func NewWorker(repo repositories.JobRepository, pollEvery time.Duration, batch int) *Worker {
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	if batch <= 0 {
		batch = 50
	}
	return &Worker{
		repo:        repo,
		handlers:    make(map[string]Handler),
		pollEvery:   pollEvery,
		batch:       batch,
		maxAttempts: 5,
	}
}

// Register binds a handler to a job type. Must be called before Run.
func (w *Worker) Register(jobType string, h Handler) {
	w.handlers[jobType] = h
}

func (w *Worker) Run(ctx context.Context) {
	log.Info().Msg("job worker: started")
	t := time.NewTicker(w.pollEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("job worker: stopping")
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	due, err := w.repo.FetchDue(ctx, w.batch)
	if err != nil {
		log.Error().Err(err).Msg("job worker: fetch due failed")
		return
	}
	for _, j := range due {
		w.handleOne(ctx, j)
	}
}

func (w *Worker) handleOne(ctx context.Context, j repositories.Job) {
	h, ok := w.handlers[j.Type]
	if !ok {
		// Unknown types are parked, not retried; retrying can't fix them.
		log.Warn().Str("job_type", j.Type).Int64("job_id", j.ID).Msg("job worker: no handler registered")
		if err := w.repo.MarkFailed(ctx, j.ID, "no handler registered"); err != nil {
			log.Error().Err(err).Int64("job_id", j.ID).Msg("job worker: mark failed")
		}
		return
	}

	if err := h(ctx, j.Payload); err != nil {
		log.Error().Err(err).Int64("job_id", j.ID).Str("job_type", j.Type).Int("attempt", j.Attempts).Msg("job worker: handler failed")
		if j.Attempts >= w.maxAttempts {
			if err := w.repo.MarkFailed(ctx, j.ID, err.Error()); err != nil {
				log.Error().Err(err).Int64("job_id", j.ID).Msg("job worker: mark failed")
			}
			return
		}
		next := time.Now().Add(retryDelay(j.Attempts))
		if err := w.repo.MarkRetry(ctx, j.ID, next, err.Error()); err != nil {
			log.Error().Err(err).Int64("job_id", j.ID).Msg("job worker: mark retry")
		}
		return
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		log.Error().Err(err).Int64("job_id", j.ID).Msg("job worker: mark done")
	}
}

// retryDelay returns the nth exponential backoff interval.
func retryDelay(attempt int) time.Duration {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.MaxInterval = 10 * time.Minute
	bo.RandomizationFactor = 0.2

	d := bo.NextBackOff()
	for i := 1; i < attempt; i++ {
		d = bo.NextBackOff()
	}
	return d
}
