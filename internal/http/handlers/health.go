package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/cache"
)

// Health reports liveness of the service and its two backing stores.
// Redis being down degrades the response but keeps the status 200, since
// the API still works without its cache.
func Health(pool *pgxpool.Pool, c *cache.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{"postgres": "ok", "redis": "ok"}

		if err := pool.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if c == nil {
			checks["redis"] = "disabled"
		} else if err := c.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
		}

		writeJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": checks,
		})
	}
}
