package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/notionblog/notionblog/internal/server"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout puts a deadline on the request context. Handlers observe it
// through r.Context(); if the deadline passed and nothing was written, the
// client gets a 503.
func Timeout(timeout time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := server.NewResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !rw.Written() {
				log.WarnContext(ctx, "request timeout",
					slog.String("path", r.URL.Path),
					slog.Duration("timeout", timeout),
				)
				_ = server.WriteJSON(rw, http.StatusServiceUnavailable,
					map[string]string{"error": "request timeout"})
			}
		})
	}
}
