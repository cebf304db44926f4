package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/internal/server"
)

// Slugs exposes the index under /api/slugs for frontends that render
// post links.
type Slugs struct {
	index Index
	mw    []server.Middleware
}

// NewSlugs creates the slug API. mw wraps every route, typically CORS.
func NewSlugs(index Index, mw ...server.Middleware) *Slugs {
	return &Slugs{index: index, mw: mw}
}

func (h *Slugs) Routes(r server.Router) {
	r.Route("/api/slugs", func(r server.Router) {
		r.Use(h.mw...)
		r.GET("/", h.list)
		r.GET("/slug/{postId}", h.slugForID)
		r.GET("/post-id/{slug}", h.idForSlug)
	})
}

type slugsResponse struct {
	Slugs   map[string]string `json:"slugs"`
	BuiltAt time.Time         `json:"built_at"`
	Count   int               `json:"count"`
}

func (h *Slugs) list(w http.ResponseWriter, r *http.Request) error {
	idx, err := h.index.Snapshot(r.Context())
	if err != nil {
		return err
	}
	return server.WriteJSON(w, http.StatusOK, slugsResponse{
		Slugs:   idx.Forward(),
		BuiltAt: idx.BuiltAt(),
		Count:   idx.Len(),
	})
}

func (h *Slugs) slugForID(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "postId")
	if !posts.IsPageID(id) {
		return server.ErrBadRequest("invalid post id")
	}

	idx, err := h.index.Snapshot(r.Context())
	if err != nil {
		return err
	}
	slug, ok := idx.SlugForID(id)
	if !ok {
		return server.ErrNotFound("post not found", posts.ErrNotFound)
	}
	return server.WriteJSON(w, http.StatusOK, map[string]string{"slug": slug})
}

func (h *Slugs) idForSlug(w http.ResponseWriter, r *http.Request) error {
	slug := pathParam(chi.URLParam(r, "slug"))

	idx, err := h.index.Snapshot(r.Context())
	if err != nil {
		return err
	}
	id, ok := idx.IDForSlug(slug)
	if !ok {
		return server.ErrNotFound("post not found", posts.ErrNotFound)
	}
	return server.WriteJSON(w, http.StatusOK, map[string]string{"postId": id})
}
