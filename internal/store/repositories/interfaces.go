package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/domain/task"
	"taskhub/internal/domain/user"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// TaskRepository defines the contract for task data access
type TaskRepository interface {
	Create(ctx context.Context, t *task.Task) error
	FindByPublicID(ctx context.Context, ownerID int64, publicID uuid.UUID) (*task.Task, error)
	Update(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, ownerID int64, publicID uuid.UUID) error
}

// Job is one queued unit of background work.
type Job struct {
	ID          int64
	Type        string
	Payload     []byte
	Attempts    int
	LastError   string
	RunAt       time.Time
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// JobRepository defines the contract for the background job queue
type JobRepository interface {
	Enqueue(ctx context.Context, jobType string, payload []byte, runAt time.Time) error
	FetchDue(ctx context.Context, batch int) ([]Job, error)
	MarkDone(ctx context.Context, id int64) error
	// MarkRetry reschedules a failed job; MarkFailed parks it permanently.
	MarkRetry(ctx context.Context, id int64, nextRun time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id int64, lastErr string) error
}
