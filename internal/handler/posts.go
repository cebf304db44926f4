package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/internal/redirect"
	"github.com/notionblog/notionblog/internal/server"
)

// Posts serves /posts/{slug}. Id paths are redirected to their slug by the
// redirect middleware before the handler runs.
type Posts struct {
	index  Index
	policy *redirect.Policy
	direct posts.Getter
}

// PostsOption configures Posts.
type PostsOption func(*Posts)

// WithDirectLookup serves id paths straight from the content store while no
// index snapshot exists. Ids only reach the handler in that state when the
// redirect policy passes them through on a cold start.
func WithDirectLookup(g posts.Getter) PostsOption {
	return func(h *Posts) {
		h.direct = g
	}
}

// NewPosts creates the post handler.
func NewPosts(index Index, policy *redirect.Policy, opts ...PostsOption) *Posts {
	h := &Posts{index: index, policy: policy}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Posts) Routes(r server.Router) {
	mw := redirect.Middleware(h.policy, redirect.DefaultPrefix)
	r.GET("/posts/{slug}", h.show, mw)
	r.HEAD("/posts/{slug}", h.show, mw)
}

type postResponse struct {
	ID string `json:"id"`
	// Slug is empty for a post served by id before the index exists.
	Slug         string    `json:"slug,omitempty"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastEditedAt time.Time `json:"last_edited_at"`
}

func (h *Posts) show(w http.ResponseWriter, r *http.Request) error {
	slug := pathParam(chi.URLParam(r, "slug"))

	if h.direct != nil && posts.IsPageID(slug) {
		if idx, _ := h.index.Peek(); idx == nil {
			return h.showByID(w, r, slug)
		}
	}

	idx, err := h.index.Snapshot(r.Context())
	if err != nil {
		return err
	}

	e, ok := idx.EntryForSlug(slug)
	if !ok {
		return server.ErrNotFound("post not found", posts.ErrNotFound)
	}

	return server.WriteJSON(w, http.StatusOK, postResponse{
		ID:           e.ID,
		Slug:         e.Slug,
		Title:        e.Title,
		CreatedAt:    e.CreatedAt,
		LastEditedAt: e.LastEditedAt,
	})
}

func (h *Posts) showByID(w http.ResponseWriter, r *http.Request, id string) error {
	item, err := h.direct.GetPost(r.Context(), id)
	switch {
	case errors.Is(err, posts.ErrNotFound):
		return server.ErrNotFound("post not found", err)
	case err != nil:
		return errors.Join(posts.ErrUpstreamUnavailable, err)
	}

	return server.WriteJSON(w, http.StatusOK, postResponse{
		ID:           posts.NormalizeID(item.ID),
		Title:        item.Title,
		CreatedAt:    item.CreatedAt,
		LastEditedAt: item.LastEditedAt,
	})
}
