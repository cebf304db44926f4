package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/notionblog/notionblog/internal/server"
)

// AccessLog writes one record per request after the handler returns.
// 5xx responses are logged at error level, 4xx at warn, the rest at info.
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := server.NewResponseWriter(w)

			next.ServeHTTP(rw, r)

			status := rw.Status()
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			log.Log(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int64("size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
