package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/store/repositories"
)

// jobRepository implements repositories.JobRepository on a Postgres-backed
// queue table. FetchDue claims jobs with SKIP LOCKED so concurrent workers
// never double-process a row.
type jobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) repositories.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Enqueue(ctx context.Context, jobType string, payload []byte, runAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO jobs (job_type, payload, status, run_at)
		VALUES ($1, $2, 'queued', $3)`,
		jobType, payload, runAt)
	return err
}

func (r *jobRepository) FetchDue(ctx context.Context, batch int) ([]repositories.Job, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE jobs
		   SET status = 'running', attempts = attempts + 1
		 WHERE id IN (
			SELECT id FROM jobs
			 WHERE status = 'queued' AND run_at <= now()
			 ORDER BY run_at
			 LIMIT $1
			 FOR UPDATE SKIP LOCKED)
		RETURNING id, job_type, payload, attempts, last_error, run_at, created_at`,
		batch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []repositories.Job
	for rows.Next() {
		var j repositories.Job
		if err := rows.Scan(&j.ID, &j.Type, &j.Payload, &j.Attempts, &j.LastError, &j.RunAt, &j.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) MarkDone(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE jobs
		   SET status = 'done', completed_at = now()
		 WHERE id = $1`, id)
	return err
}

func (r *jobRepository) MarkRetry(ctx context.Context, id int64, nextRun time.Time, lastErr string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE jobs
		   SET status = 'queued', run_at = $2, last_error = $3
		 WHERE id = $1`, id, nextRun, lastErr)
	return err
}

func (r *jobRepository) MarkFailed(ctx context.Context, id int64, lastErr string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE jobs
		   SET status = 'failed', last_error = $2, completed_at = now()
		 WHERE id = $1`, id, lastErr)
	return err
}
