package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/notionblog/notionblog/internal/server"
	"github.com/notionblog/notionblog/pkg/logger"
)

// Revalidate drops the cached index on request, for webhooks fired when
// posts are published or renamed.
type Revalidate struct {
	index  Index
	token  string
	logger *slog.Logger
}

// NewRevalidate creates the handler. An empty token disables the route.
func NewRevalidate(index Index, token string, log *slog.Logger) *Revalidate {
	if log == nil {
		log = logger.NewNope()
	}
	return &Revalidate{index: index, token: token, logger: log}
}

func (h *Revalidate) Routes(r server.Router) {
	r.POST("/api/revalidate", h.revalidate)
}

func (h *Revalidate) revalidate(w http.ResponseWriter, r *http.Request) error {
	if h.token == "" {
		return server.ErrNotFound("")
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
		return server.ErrUnauthorized("invalid token")
	}

	if err := h.index.InvalidateShared(r.Context()); err != nil {
		// The local snapshot is already invalidated.
		h.logger.WarnContext(r.Context(), "failed to drop shared slug index", slog.Any("error", err))
	}

	warm := r.URL.Query().Get("warm")
	if warm == "1" || warm == "true" {
		if err := h.index.Refresh(r.Context()); err != nil {
			return err
		}
		resp := map[string]any{"revalidated": true}
		if idx, _ := h.index.Peek(); idx != nil {
			resp["count"] = idx.Len()
			resp["built_at"] = idx.BuiltAt()
		}
		return server.WriteJSON(w, http.StatusOK, resp)
	}

	return server.WriteJSON(w, http.StatusAccepted, map[string]any{"revalidated": true})
}
