package notion_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notionblog/notionblog/pkg/notion"
)

func newTestClient(t *testing.T, srv *httptest.Server, opts ...notion.Option) *notion.Client {
	t.Helper()
	base := []notion.Option{
		notion.WithBaseURL(srv.URL),
		notion.WithHTTPClient(srv.Client()),
		notion.WithRateLimit(0, 0),
		notion.WithRetry(3, 0),
	}
	c, err := notion.New("secret_test", append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		c, err := notion.New("  ")
		require.ErrorIs(t, err, notion.ErrMissingToken)
		require.Nil(t, c)
	})

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		c, err := notion.New("secret_test")
		require.NoError(t, err)
		require.NotNil(t, c)
	})
}

func TestClient_QueryDatabase(t *testing.T) {
	t.Parallel()

	t.Run("follows pagination", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/databases/db123/query", r.URL.Path)
			assert.Equal(t, "Bearer secret_test", r.Header.Get("Authorization"))
			assert.Equal(t, notion.DefaultVersion, r.Header.Get("Notion-Version"))

			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.EqualValues(t, 100, body["page_size"])

			filter, _ := body["filter"].(map[string]any)
			assert.Equal(t, "상태", filter["property"])

			w.Header().Set("Content-Type", "application/json")
			if body["start_cursor"] == nil {
				_, _ = w.Write([]byte(`{"object":"list","results":[{"id":"a"},{"id":"b"}],"has_more":true,"next_cursor":"c1"}`))
				return
			}
			assert.Equal(t, "c1", body["start_cursor"])
			_, _ = w.Write([]byte(`{"object":"list","results":[{"id":"c"}],"has_more":false,"next_cursor":null}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		pages, err := c.QueryDatabase(context.Background(), "db123", notion.Query{
			Filter: &notion.Filter{Property: "상태", Status: &notion.StatusCondition{Equals: "공개"}},
			Sorts:  []notion.Sort{{Property: "날짜", Direction: notion.SortDescending}},
		})
		require.NoError(t, err)
		require.Len(t, pages, 3)
		assert.Equal(t, "a", pages[0].ID)
		assert.Equal(t, "c", pages[2].ID)
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("repeated cursor is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":[],"has_more":true,"next_cursor":"same"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).QueryDatabase(context.Background(), "db", notion.Query{})
		require.ErrorIs(t, err, notion.ErrDecodeFailed)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).QueryDatabase(context.Background(), "db", notion.Query{})
		require.ErrorIs(t, err, notion.ErrDecodeFailed)
		assert.False(t, notion.IsRetryable(err))
	})
}

func TestClient_Retry(t *testing.T) {
	t.Parallel()

	t.Run("retries rate limited request", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`))
				return
			}
			_, _ = w.Write([]byte(`{"object":"page","id":"p1"}`))
		}))
		defer srv.Close()

		page, err := newTestClient(t, srv).RetrievePage(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "p1", page.ID)
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).RetrievePage(context.Background(), "p1")
		require.Error(t, err)

		var apiErr *notion.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
		assert.True(t, notion.IsRetryable(err))
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find page"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).RetrievePage(context.Background(), "missing")

		var apiErr *notion.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "object_not_found", apiErr.Code)
		assert.Equal(t, "Could not find page", apiErr.Message)
		assert.False(t, notion.IsRetryable(err))
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := newTestClient(t, srv, notion.WithRetry(5, time.Hour))
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := c.RetrievePage(ctx, "p1")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, srv, notion.WithRetry(1, 0))
	srv.Close()

	_, err := c.RetrievePage(context.Background(), "p1")
	require.ErrorIs(t, err, notion.ErrRequestFailed)
	assert.True(t, notion.IsRetryable(err))
}
