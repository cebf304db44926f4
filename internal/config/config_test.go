package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notionblog/notionblog/internal/config"
	"github.com/notionblog/notionblog/internal/redirect"
	"github.com/notionblog/notionblog/internal/slugindex"
)

func TestParseEnv_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.ParseEnv(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, config.EnvProduction, cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "production", cfg.Log.Sentry.Environment)
	require.InDelta(t, 3.0, cfg.Notion.RateLimit, 0)
	require.Equal(t, "제목", cfg.Notion.Posts.TitleProperty)
	require.Equal(t, "상태", cfg.Notion.Posts.StatusProperty)
	require.Equal(t, "공개", cfg.Notion.Posts.PublishedStatus)
	require.Equal(t, 10*time.Second, cfg.Slug.BuildTimeout)
	require.Equal(t, 5*time.Second, cfg.Slug.RetryBackoff)
	require.Equal(t, "notionblog", cfg.Redis.KeyPrefix)
	require.Equal(t, 24*time.Hour, cfg.Redis.SnapshotRetention)

	require.Equal(t, 300*time.Second, cfg.CacheTTL())
	require.Equal(t, redirect.ColdStartFail, cfg.ColdStartPolicy())
	require.Equal(t, slugindex.SkipMalformed, cfg.MalformedPolicy())
	require.ErrorIs(t, cfg.RequireNotion(), config.ErrMissingNotion)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.ParseEnv(map[string]string{
		"APP_ENV":                 "development",
		"HTTP_ADDR":               ":9000",
		"NOTION_KEY":              "secret_x",
		"NOTION_POST_DATABASE_ID": "db",
		"NOTION_TITLE_PROPERTY":   "Name",
		"SLUG_COLD_START_POLICY":  "passthrough",
		"SLUG_MALFORMED_POLICY":   "fail",
		"SLUG_REFRESH_SCHEDULE":   "*/10 * * * *",
		"SLUG_WARM_ON_START":      "true",
		"CORS_ALLOWED_ORIGINS":    "https://a.example.com,https://b.example.com",
		"REDIS_URL":               "redis://localhost:6379/0",
		"LOG_FORMAT":              "text",
	})
	require.NoError(t, err)

	require.True(t, cfg.IsDevelopment())
	require.Equal(t, ":9000", cfg.HTTPAddr)
	require.Equal(t, "Name", cfg.Notion.Posts.TitleProperty)
	require.Equal(t, 30*time.Second, cfg.CacheTTL())
	require.Equal(t, redirect.ColdStartPassThrough, cfg.ColdStartPolicy())
	require.Equal(t, slugindex.FailOnMalformed, cfg.MalformedPolicy())
	require.True(t, cfg.Slug.WarmOnStart)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	require.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	require.NoError(t, cfg.RequireNotion())
}

func TestParseEnv_CacheTTLOverride(t *testing.T) {
	t.Parallel()

	cfg, err := config.ParseEnv(map[string]string{"APP_ENV": "development", "SLUG_CACHE_TTL": "120"})
	require.NoError(t, err)
	require.Equal(t, 2*time.Minute, cfg.CacheTTL())
}

func TestParseEnv_CacheTTLZeroUsesDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want time.Duration
	}{
		{env: "development", want: 30 * time.Second},
		{env: "production", want: 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.ParseEnv(map[string]string{"APP_ENV": tt.env, "SLUG_CACHE_TTL": "0"})
			require.NoError(t, err)
			require.Equal(t, tt.want, cfg.CacheTTL())
		})
	}
}

func TestParseEnv_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "app env", env: map[string]string{"APP_ENV": "staging"}},
		{name: "log level", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "cold start", env: map[string]string{"SLUG_COLD_START_POLICY": "maybe"}},
		{name: "malformed", env: map[string]string{"SLUG_MALFORMED_POLICY": "ignore"}},
		{name: "schedule", env: map[string]string{"SLUG_REFRESH_SCHEDULE": "sometimes"}},
		{name: "negative ttl", env: map[string]string{"SLUG_CACHE_TTL": "-1"}},
		{name: "negative rate", env: map[string]string{"NOTION_RATE_LIMIT": "-2"}},
		{name: "unparsable duration", env: map[string]string{"SLUG_BUILD_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.ParseEnv(tt.env)
			require.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BLOG_URL=https://blog.example.com\nREVALIDATE_TOKEN=tok\n"), 0o600))

	t.Cleanup(func() {
		_ = os.Unsetenv("BLOG_URL")
		_ = os.Unsetenv("REVALIDATE_TOKEN")
	})

	cfg, err := config.Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "https://blog.example.com", cfg.BlogURL)
	require.Equal(t, "tok", cfg.RevalidateToken)
}
