package server_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/internal/server"
)

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("wrapped HTTPError preserves fields", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("db down")
		err := fmt.Errorf("outer: %w", server.ErrServiceUnavailable("try later", cause))

		got := server.AsHTTPError(err)
		require.NotNil(t, got)
		require.Equal(t, http.StatusServiceUnavailable, got.Code)
		require.Equal(t, "try later", got.Message)
		require.ErrorIs(t, got, cause)
	})

	t.Run("unrelated error returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, server.AsHTTPError(errors.New("plain")))
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, server.AsHTTPError(nil))
	})
}

func TestNewHTTPError_DefaultMessage(t *testing.T) {
	t.Parallel()

	err := server.ErrNotFound("")
	require.Equal(t, "Not Found", err.Message)
	require.Equal(t, "Not Found", err.StatusText())
	require.NoError(t, err.Unwrap())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "http error wins over mapping",
			err:      server.ErrBadRequest("bad slug", posts.ErrNotFound),
			wantCode: http.StatusBadRequest,
			wantMsg:  "bad slug",
		},
		{
			name:     "not found sentinel",
			err:      fmt.Errorf("lookup: %w", posts.ErrNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  "not found",
		},
		{
			name:     "upstream unavailable sentinel",
			err:      errors.Join(posts.ErrUpstreamUnavailable, errors.New("timeout")),
			wantCode: http.StatusServiceUnavailable,
			wantMsg:  "content store unavailable",
		},
		{
			name:     "unknown error",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := server.Resolve(tt.err, server.DefaultErrorMappings...)
			require.Equal(t, tt.wantCode, got.Code)
			require.Equal(t, tt.wantMsg, got.Message)
		})
	}
}
