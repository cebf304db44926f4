package handler

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/notionblog/notionblog/internal/server"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// StaticPages are listed in the sitemap ahead of the posts.
var StaticPages = []SitemapPage{
	{Path: "", ChangeFreq: "daily", Priority: 1},
	{Path: "/about", ChangeFreq: "daily", Priority: 0.8},
	{Path: "/posts", ChangeFreq: "daily", Priority: 0.8},
	{Path: "/guestbooks", ChangeFreq: "always", Priority: 0.8},
}

// SitemapPage is a non-post page of the blog.
type SitemapPage struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

// Sitemap renders /sitemap.xml from the static pages and the indexed posts.
// Posts are listed under their canonical slug URL.
type Sitemap struct {
	index   Index
	baseURL string
	pages   []SitemapPage
	now     func() time.Time
}

// NewSitemap creates the sitemap handler for the blog at baseURL.
func NewSitemap(index Index, baseURL string, pages ...SitemapPage) *Sitemap {
	if len(pages) == 0 {
		pages = StaticPages
	}
	return &Sitemap{
		index:   index,
		baseURL: strings.TrimRight(baseURL, "/"),
		pages:   pages,
		now:     time.Now,
	}
}

func (h *Sitemap) Routes(r server.Router) {
	r.GET("/sitemap.xml", h.render)
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

func (h *Sitemap) render(w http.ResponseWriter, r *http.Request) error {
	idx, err := h.index.Snapshot(r.Context())
	if err != nil {
		return err
	}

	now := h.now().UTC().Format(time.RFC3339)
	set := urlset{
		XMLNS: sitemapNS,
		URLs:  make([]sitemapURL, 0, len(h.pages)+idx.Len()),
	}
	for _, p := range h.pages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + p.Path,
			LastMod:    now,
			ChangeFreq: p.ChangeFreq,
			Priority:   p.Priority,
		})
	}
	for _, e := range idx.Entries() {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + "/posts/" + url.PathEscape(e.Slug),
			LastMod:    e.LastEditedAt.UTC().Format(time.RFC3339),
			ChangeFreq: "daily",
			Priority:   0.8,
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(set)
}
