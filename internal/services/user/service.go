package user

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"taskhub/internal/cache"
	userdomain "taskhub/internal/domain/user"
	"taskhub/internal/query"
	"taskhub/internal/store/repositories"
)

// definition wires the users table into the list engine. The password hash
// column is deliberately absent from both allowlists and the select list.
var definition = query.Definition{
	Name:  "users",
	Table: "users",
	Alias: "u",
	Columns: []string{
		"u.id", "u.email", "u.username", "u.role", "u.created_at", "u.updated_at",
	},
	IDColumn:   "id",
	Sortable:   query.NewAllowlist("id", "email", "username", "role", "created_at"),
	Filterable: query.NewAllowlist("email", "username", "role", "created_at"),
}

// Service handles user queries beyond authentication.
type Service struct {
	db      query.Querier
	repo    repositories.UserRepository
	cache   *cache.Client
	listTTL time.Duration
}

func NewService(db query.Querier, repo repositories.UserRepository, c *cache.Client, listTTL time.Duration) *Service {
	return &Service{db: db, repo: repo, cache: c, listTTL: listTTL}
}

// List runs the query engine over all users. Admin only; the handler layer
// enforces the ability check.
func (s *Service) List(ctx context.Context, q *query.ListQuery) (*query.PaginatedResult[*userdomain.User], error) {
	opts := query.Options{}
	if s.cache != nil {
		opts = query.Options{Cache: s.cache, TTL: s.listTTL}
	}
	return query.Run(ctx, s.db, definition, q, nil,
		func(rows pgx.Rows) (*userdomain.User, error) {
			var u userdomain.User
			if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
				return nil, err
			}
			return &u, nil
		}, opts)
}

// Get fetches one user by internal ID.
func (s *Service) Get(ctx context.Context, id int64) (*userdomain.User, error) {
	return s.repo.FindByID(ctx, id)
}
