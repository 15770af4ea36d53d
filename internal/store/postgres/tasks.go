package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain/task"
	"taskhub/internal/store/repositories"
)

// taskRepository implements repositories.TaskRepository on pgx
type taskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) repositories.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, t *task.Task) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO tasks (public_id, owner_id, title, description, status, priority, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		t.PublicID, t.OwnerID, t.Title, t.Description, string(t.Status), t.Priority, t.DueAt, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
}

func (r *taskRepository) FindByPublicID(ctx context.Context, ownerID int64, publicID uuid.UUID) (*task.Task, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, public_id, owner_id, title, description, status, priority, due_at, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 AND public_id = $2`, ownerID, publicID)
	return ScanTask(row)
}

func (r *taskRepository) Update(ctx context.Context, t *task.Task) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_at = $5, updated_at = $6
		WHERE id = $7`,
		t.Title, t.Description, string(t.Status), t.Priority, t.DueAt, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID int64, publicID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM tasks
		WHERE owner_id = $1 AND public_id = $2`, ownerID, publicID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ScanTask reads one task row in the column order used by the list engine's
// select and the repository queries above.
func ScanTask(row pgx.Row) (*task.Task, error) {
	var t task.Task
	var description sql.NullString
	var dueAt sql.NullTime

	err := row.Scan(&t.ID, &t.PublicID, &t.OwnerID, &t.Title, &description, &t.Status,
		&t.Priority, &dueAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = description.String
	}
	if dueAt.Valid {
		due := dueAt.Time
		t.DueAt = &due
	}
	return &t, nil
}
