package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notionblog/notionblog/middlewares"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("no origin passes through", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		middlewares.CORS()(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/slugs", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/slugs", nil)
		req.Header.Set("Origin", "https://blog.example.com")
		rec := httptest.NewRecorder()
		middlewares.CORS()(okHandler()).ServeHTTP(rec, req)

		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(middlewares.WithAllowOrigins("https://a.example.com"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://a.example.com")
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, req)
		require.Equal(t, "https://a.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec = httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/slugs", nil)
		req.Header.Set("Origin", "https://blog.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		middlewares.CORS(middlewares.WithAllowCredentials())(okHandler()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "https://blog.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		require.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("origin func overrides list", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowOrigins("https://a.example.com"),
			middlewares.WithAllowOriginFunc(func(o string) bool { return o == "https://b.example.com" }),
			middlewares.WithExposeHeaders("X-Request-ID"),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://b.example.com")
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, req)

		require.Equal(t, "https://b.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	})
}
