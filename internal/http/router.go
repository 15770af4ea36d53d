package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskhub/internal/cache"
	"taskhub/internal/config"
	"taskhub/internal/http/handlers"
	middlewarex "taskhub/internal/http/middleware"
	"taskhub/internal/services/auth"
	"taskhub/internal/services/task"
	"taskhub/internal/services/user"
)

// RouterDependencies holds everything the HTTP layer needs.
type RouterDependencies struct {
	Config      config.Cfg
	Rules       auth.Ruleset
	AuthService *auth.Service
	TaskService *task.Service
	UserService *user.Service
	Pool        *pgxpool.Pool
	Cache       *cache.Client
}

// NewRouter wires middleware and routes.
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middlewarex.RequestLogger)
	r.Use(middlewarex.Metrics)

	// Operational endpoints (public)
	r.Get("/health", handlers.Health(deps.Pool, deps.Cache))
	r.Handle("/metrics", promhttp.Handler())

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", handlers.Register(deps.AuthService))
		r.Post("/login", handlers.Login(deps.AuthService))
	})

	// API routes (JWT protected)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarex.JWTAuth(deps.Config.Auth.JWTSecret))

		r.Get("/me", handlers.Me(deps.UserService))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", handlers.ListTasks(deps.TaskService))
			r.Post("/", handlers.CreateTask(deps.TaskService))
			r.Get("/{taskID}", handlers.GetTask(deps.TaskService))
			r.Patch("/{taskID}", handlers.UpdateTask(deps.TaskService))
			r.Delete("/{taskID}", handlers.DeleteTask(deps.TaskService))
		})

		r.With(middlewarex.RequireAbility(deps.Rules, "list", "users")).
			Get("/users", handlers.ListUsers(deps.UserService))
	})

	return r
}
