package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"taskhub/internal/cache"
	"taskhub/internal/domain/task"
	"taskhub/internal/query"
	"taskhub/internal/store/postgres"
	"taskhub/internal/store/repositories"
)

// definition wires the tasks table into the list engine. The allowlists are
// the contract for what clients may sort and filter on; everything else is
// rejected before any query runs.
var definition = query.Definition{
	Name:  "tasks",
	Table: "tasks",
	Alias: "t",
	Columns: []string{
		"t.id", "t.public_id", "t.owner_id", "t.title", "t.description",
		"t.status", "t.priority", "t.due_at", "t.created_at", "t.updated_at",
	},
	IDColumn:   "id",
	Sortable:   query.NewAllowlist("id", "title", "status", "priority", "due_at", "created_at", "updated_at"),
	Filterable: query.NewAllowlist("title", "status", "priority", "due_at", "created_at"),
	BaseWhere:  "t.owner_id = @owner",
}

// Service handles task operations for the authenticated owner.
type Service struct {
	db      query.Querier
	repo    repositories.TaskRepository
	cache   *cache.Client
	listTTL time.Duration
}

func NewService(db query.Querier, repo repositories.TaskRepository, c *cache.Client, listTTL time.Duration) *Service {
	return &Service{db: db, repo: repo, cache: c, listTTL: listTTL}
}

// List runs the query engine over the owner's tasks.
func (s *Service) List(ctx context.Context, ownerID int64, q *query.ListQuery) (*query.PaginatedResult[*task.Task], error) {
	return query.Run(ctx, s.db, definition, q,
		pgx.NamedArgs{"owner": ownerID},
		func(rows pgx.Rows) (*task.Task, error) { return postgres.ScanTask(rows) },
		s.listOptions())
}

func (s *Service) Create(ctx context.Context, ownerID int64, title, description string, priority int, dueAt *time.Time) (*task.Task, error) {
	t, err := task.New(ownerID, title, description, priority, dueAt)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return t, nil
}

func (s *Service) Get(ctx context.Context, ownerID int64, publicID uuid.UUID) (*task.Task, error) {
	return s.repo.FindByPublicID(ctx, ownerID, publicID)
}

func (s *Service) Update(ctx context.Context, ownerID int64, publicID uuid.UUID, title, description string, status task.Status, priority int, dueAt *time.Time) (*task.Task, error) {
	t, err := s.repo.FindByPublicID(ctx, ownerID, publicID)
	if err != nil {
		return nil, err
	}
	if err := t.Update(title, description, status, priority, dueAt); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return t, nil
}

func (s *Service) Delete(ctx context.Context, ownerID int64, publicID uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, publicID); err != nil {
		return err
	}
	s.invalidateLists(ctx)
	return nil
}

func (s *Service) listOptions() query.Options {
	if s.cache == nil {
		return query.Options{}
	}
	return query.Options{Cache: s.cache, TTL: s.listTTL}
}

// invalidateLists drops every cached task list page. Failures are logged and
// swallowed; stale pages expire by TTL anyway.
func (s *Service) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, query.KeyPrefix(definition.Name)+"*"); err != nil {
		log.Warn().Err(err).Msg("task: list cache invalidation failed")
	}
}
