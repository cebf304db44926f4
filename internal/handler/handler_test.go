package handler_test

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notionblog/notionblog/internal/handler"
	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/internal/redirect"
	"github.com/notionblog/notionblog/internal/server"
	"github.com/notionblog/notionblog/internal/slugcache"
	"github.com/notionblog/notionblog/internal/slugindex"
)

const (
	helloID  = "11112222333344445555666677778888"
	koreanID = "aaaabbbbccccddddeeeeffff00001111"
	token    = "s3cret"
)

var (
	day1 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
)

func fixtureItems() []posts.Item {
	return []posts.Item{
		{ID: helloID, Title: "Hello World", CreatedAt: day1, LastEditedAt: day2},
		{ID: koreanID, Title: "안녕 세상", CreatedAt: day2, LastEditedAt: day2},
	}
}

type fixture struct {
	app    *server.App
	source *posts.StaticSource
	cache  *slugcache.Cache
}

func newFixture(t *testing.T, items ...posts.Item) *fixture {
	t.Helper()

	src := posts.NewStaticSource(items...)
	cache := slugcache.New(slugindex.NewBuilder(src), slugcache.WithTTL(time.Hour))
	policy := redirect.NewPolicy(cache)

	app := server.New(server.WithHandlers(
		handler.NewPosts(cache, policy),
		handler.NewSlugs(cache),
		handler.NewRevalidate(cache, token, nil),
		handler.NewSitemap(cache, "https://blog.example.com/"),
	))
	return &fixture{app: app, source: src, cache: cache}
}

func (f *fixture) do(t *testing.T, method, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPosts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureItems()...)

	t.Run("slug resolves to post", func(t *testing.T) {
		t.Parallel()

		rec := f.do(t, http.MethodGet, "/posts/hello-world")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON(t, rec)
		require.Equal(t, helloID, body["id"])
		require.Equal(t, "hello-world", body["slug"])
		require.Equal(t, "Hello World", body["title"])
		require.Equal(t, "2024-03-02T09:00:00Z", body["last_edited_at"])
	})

	t.Run("non-ascii slug", func(t *testing.T) {
		t.Parallel()

		rec := f.do(t, http.MethodGet, "/posts/%EC%95%88%EB%85%95-%EC%84%B8%EC%83%81")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, koreanID, decodeJSON(t, rec)["id"])
	})

	tests := []struct {
		name         string
		path         string
		wantStatus   int
		wantLocation string
	}{
		{name: "plain id redirects", path: "/posts/" + helloID, wantStatus: http.StatusMovedPermanently, wantLocation: "/posts/hello-world"},
		{name: "hyphenated id redirects", path: "/posts/" + posts.HyphenateID(helloID), wantStatus: http.StatusMovedPermanently, wantLocation: "/posts/hello-world"},
		{name: "query is kept", path: "/posts/" + helloID + "?ref=feed", wantStatus: http.StatusMovedPermanently, wantLocation: "/posts/hello-world?ref=feed"},
		{name: "unknown id", path: "/posts/ffffffffffffffffffffffffffffffff", wantStatus: http.StatusNotFound},
		{name: "unknown slug", path: "/posts/no-such-post", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := f.do(t, http.MethodGet, tt.path)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLocation != "" {
				require.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
			if tt.wantStatus == http.StatusNotFound {
				require.Equal(t, "post not found", decodeJSON(t, rec)["error"])
			}
		})
	}
}

func TestPosts_UpstreamDown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.source.Fail(errors.New("notion: 502"))

	rec := f.do(t, http.MethodGet, "/posts/hello-world")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.do(t, http.MethodGet, "/posts/"+helloID)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "post index unavailable", decodeJSON(t, rec)["error"])
}

func TestPosts_ColdStartPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		policy     redirect.ColdStartPolicy
		path       string
		wantStatus int
		wantTitle  string
		wantError  string
	}{
		{name: "fail answers 503", policy: redirect.ColdStartFail, path: "/posts/" + helloID, wantStatus: http.StatusServiceUnavailable, wantError: "post index unavailable"},
		{name: "passthrough serves by id", policy: redirect.ColdStartPassThrough, path: "/posts/" + helloID, wantStatus: http.StatusOK, wantTitle: "Hello World"},
		{name: "passthrough serves hyphenated id", policy: redirect.ColdStartPassThrough, path: "/posts/" + posts.HyphenateID(koreanID), wantStatus: http.StatusOK, wantTitle: "안녕 세상"},
		{name: "passthrough unknown id", policy: redirect.ColdStartPassThrough, path: "/posts/ffffffffffffffffffffffffffffffff", wantStatus: http.StatusNotFound, wantError: "post not found"},
		{name: "passthrough slug still needs the index", policy: redirect.ColdStartPassThrough, path: "/posts/hello-world", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			listing := posts.NewStaticSource()
			listing.Fail(errors.New("notion: database query timed out"))
			pages := posts.NewStaticSource(fixtureItems()...)

			cache := slugcache.New(slugindex.NewBuilder(listing), slugcache.WithTTL(time.Hour))
			policy := redirect.NewPolicy(cache, redirect.WithColdStartPolicy(tt.policy))
			app := server.New(server.WithHandlers(
				handler.NewPosts(cache, policy, handler.WithDirectLookup(pages)),
			))

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, rec.Code)

			body := decodeJSON(t, rec)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, body["title"])
				assert.NotContains(t, body, "slug")
			}
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestSlugs(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureItems()...)

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		rec := f.do(t, http.MethodGet, "/api/slugs")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Slugs map[string]string `json:"slugs"`
			Count int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, 2, body.Count)
		require.Equal(t, map[string]string{"hello-world": helloID, "안녕-세상": koreanID}, body.Slugs)
	})

	t.Run("slug for id", func(t *testing.T) {
		t.Parallel()

		rec := f.do(t, http.MethodGet, "/api/slugs/slug/"+posts.HyphenateID(helloID))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "hello-world", decodeJSON(t, rec)["slug"])
	})

	t.Run("id for slug", func(t *testing.T) {
		t.Parallel()

		rec := f.do(t, http.MethodGet, "/api/slugs/post-id/hello-world")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, helloID, decodeJSON(t, rec)["postId"])
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		rec := f.do(t, http.MethodGet, "/api/slugs/slug/not-an-id")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown slug", func(t *testing.T) {
		t.Parallel()

		rec := f.do(t, http.MethodGet, "/api/slugs/post-id/missing")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRevalidate(t *testing.T) {
	t.Parallel()

	t.Run("auth", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fixtureItems()...)

		rec := f.do(t, http.MethodPost, "/api/revalidate")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = f.do(t, http.MethodPost, "/api/revalidate", "Authorization", "Bearer wrong")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = f.do(t, http.MethodPost, "/api/revalidate", "Authorization", token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = f.do(t, http.MethodPost, "/api/revalidate", "Authorization", "Bearer "+token)
		require.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("disabled without token", func(t *testing.T) {
		t.Parallel()

		cache := slugcache.New(slugindex.NewBuilder(posts.NewStaticSource()))
		app := server.New(server.WithHandlers(handler.NewRevalidate(cache, "", nil)))

		req := httptest.NewRequest(http.MethodPost, "/api/revalidate", nil)
		req.Header.Set("Authorization", "Bearer anything")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("renamed post is served after revalidation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fixtureItems()...)
		require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/posts/hello-world").Code)

		renamed := fixtureItems()
		renamed[0].Title = "Hello Gophers"
		f.source.Set(renamed...)

		// Within the TTL the old snapshot answers.
		require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/posts/hello-world").Code)

		rec := f.do(t, http.MethodPost, "/api/revalidate?warm=1", "Authorization", "Bearer "+token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.EqualValues(t, 2, decodeJSON(t, rec)["count"])

		require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/posts/hello-world").Code)
		require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/posts/hello-gophers").Code)

		rec = f.do(t, http.MethodGet, "/posts/"+helloID)
		require.Equal(t, "/posts/hello-gophers", rec.Header().Get("Location"))
	})

	t.Run("warm failure reports unavailable", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, fixtureItems()...)
		f.source.Fail(errors.New("timeout"))

		rec := f.do(t, http.MethodPost, "/api/revalidate?warm=1", "Authorization", "Bearer "+token)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestSitemap(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureItems()...)

	rec := f.do(t, http.MethodGet, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/xml"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "<?xml"))

	var set struct {
		URLs []struct {
			Loc        string  `xml:"loc"`
			LastMod    string  `xml:"lastmod"`
			ChangeFreq string  `xml:"changefreq"`
			Priority   float64 `xml:"priority"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &set))
	require.Len(t, set.URLs, len(handler.StaticPages)+2)

	locs := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	assert.Equal(t, "https://blog.example.com", locs[0])
	assert.Contains(t, locs, "https://blog.example.com/guestbooks")
	assert.Contains(t, locs, "https://blog.example.com/posts/hello-world")
	assert.Contains(t, locs, "https://blog.example.com/posts/%EC%95%88%EB%85%95-%EC%84%B8%EC%83%81")

	last := set.URLs[len(set.URLs)-1]
	assert.Equal(t, "https://blog.example.com/posts/hello-world", last.Loc)
	assert.Equal(t, "2024-03-02T09:00:00Z", last.LastMod)
	assert.Equal(t, "daily", last.ChangeFreq)
}

func TestIndexCheck(t *testing.T) {
	t.Parallel()

	t.Run("builds on first readiness check", func(t *testing.T) {
		t.Parallel()

		src := posts.NewStaticSource(fixtureItems()...)
		cache := slugcache.New(slugindex.NewBuilder(src))

		require.NoError(t, handler.IndexCheck(cache)(context.Background()))
		_, state := cache.Peek()
		require.Equal(t, slugcache.StatePopulated, state)

		require.NoError(t, handler.IndexCheck(cache)(context.Background()))
		require.Equal(t, 1, src.Calls())
	})

	t.Run("fails while store is down", func(t *testing.T) {
		t.Parallel()

		src := posts.NewStaticSource()
		src.Fail(errors.New("down"))
		cache := slugcache.New(slugindex.NewBuilder(src))

		err := handler.IndexCheck(cache)(context.Background())
		require.ErrorIs(t, err, posts.ErrUpstreamUnavailable)
	})
}
