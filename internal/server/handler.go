package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/notionblog/notionblog/internal/posts"
)

// Handler declares routes on a router.
//
// Example:
//
//	type Posts struct {
//	    cache *slugcache.Cache
//	}
//
//	func (h *Posts) Routes(r server.Router) {
//	    r.GET("/posts/{slug}", h.show)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers. A returned error is
// passed to the app's ErrorHandler unless a response was already written.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler writes the response for an error returned by a handler.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorMappings are the domain errors every app understands.
var DefaultErrorMappings = []ErrorMapping{
	{Target: posts.ErrNotFound, Code: http.StatusNotFound, Message: "not found"},
	{Target: posts.ErrUpstreamUnavailable, Code: http.StatusServiceUnavailable, Message: "content store unavailable"},
}

// JSONErrorHandler renders errors as {"error": message}. Server errors are
// logged at error level, client errors at debug.
func JSONErrorHandler(log *slog.Logger, mappings ...ErrorMapping) ErrorHandler {
	if len(mappings) == 0 {
		mappings = DefaultErrorMappings
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		httpErr := Resolve(err, mappings...)

		level := slog.LevelDebug
		if httpErr.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(r.Context(), level, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", httpErr.Code),
			slog.Any("error", err),
		)

		_ = WriteJSON(w, httpErr.Code, map[string]string{"error": httpErr.Message})
	}
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
