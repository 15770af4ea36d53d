package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"taskhub/internal/cache"
	"taskhub/internal/config"
	httpx "taskhub/internal/http"
	"taskhub/internal/jobs"
	authsvc "taskhub/internal/services/auth"
	tasksvc "taskhub/internal/services/task"
	usersvc "taskhub/internal/services/user"
	"taskhub/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schema first, pool second
	if err := postgres.Migrate(cfg.DB.DSN); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	pool := postgres.MustOpen(ctx, cfg.DB.DSN)
	defer pool.Close()

	// Redis cache; the API runs without it, just slower
	var cacheClient *cache.Client
	if cfg.Redis.Addr != "" {
		cacheClient = cache.New(cfg.Redis.Addr)
		defer cacheClient.Close()
		if err := cacheClient.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, list caching disabled")
			cacheClient = nil
		}
	}

	// Repositories and services
	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)

	authService := authsvc.NewService(userRepo, jobRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	taskService := tasksvc.NewService(pool, taskRepo, cacheClient, cfg.Cache.ListTTL)
	userService := usersvc.NewService(pool, userRepo, cacheClient, cfg.Cache.ListTTL)

	// Background job worker
	worker := jobs.NewWorker(jobRepo, cfg.Jobs.PollInterval, cfg.Jobs.Batch)
	worker.Register(authsvc.WelcomeJobType, jobs.WelcomeEmail)
	go worker.Run(ctx)

	// Router
	r := httpx.NewRouter(httpx.RouterDependencies{
		Config:      cfg,
		Rules:       authsvc.DefaultRuleset(),
		AuthService: authService,
		TaskService: taskService,
		UserService: userService,
		Pool:        pool,
		Cache:       cacheClient,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Msgf("taskhub API listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	log.Info().Msg("server stopped")
}
