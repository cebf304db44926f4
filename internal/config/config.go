// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/internal/redirect"
	"github.com/notionblog/notionblog/internal/slugindex"
	"github.com/notionblog/notionblog/internal/warmer"
	"github.com/notionblog/notionblog/pkg/logger"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cache TTL defaults per environment, in seconds.
const (
	developmentCacheTTL = 30
	productionCacheTTL  = 300
)

var (
	ErrInvalid       = errors.New("config: invalid value")
	ErrMissingNotion = errors.New("config: NOTION_KEY and NOTION_POST_DATABASE_ID are required")
)

// Config is the complete service configuration.
type Config struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"production"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	BlogURL         string        `env:"BLOG_URL"`
	RevalidateToken string        `env:"REVALIDATE_TOKEN"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	Log    logger.Config
	Notion Notion
	Slug   Slug
	Redis  Redis
}

// Notion configures the content store client.
type Notion struct {
	Token     string  `env:"NOTION_KEY"`
	RateLimit float64 `env:"NOTION_RATE_LIMIT" envDefault:"3"`
	Posts     posts.NotionConfig
}

// Slug configures the slug index and its cache.
type Slug struct {
	// CacheTTL is in seconds. Zero picks the environment default.
	CacheTTL        int           `env:"SLUG_CACHE_TTL"`
	BuildTimeout    time.Duration `env:"SLUG_BUILD_TIMEOUT" envDefault:"10s"`
	RetryBackoff    time.Duration `env:"SLUG_RETRY_BACKOFF" envDefault:"5s"`
	ColdStartPolicy string        `env:"SLUG_COLD_START_POLICY" envDefault:"fail"`
	MalformedPolicy string        `env:"SLUG_MALFORMED_POLICY" envDefault:"skip"`
	RefreshSchedule string        `env:"SLUG_REFRESH_SCHEDULE"`
	WarmOnStart     bool          `env:"SLUG_WARM_ON_START"`
}

// Redis configures the optional shared snapshot tier. An empty URL
// disables it.
type Redis struct {
	URL               string        `env:"REDIS_URL"`
	KeyPrefix         string        `env:"REDIS_KEY_PREFIX" envDefault:"notionblog"`
	SnapshotRetention time.Duration `env:"REDIS_SNAPSHOT_RETENTION" envDefault:"24h"`
}

// Load reads the given dotenv files, or ".env" when none are named, and then
// parses the environment. Missing dotenv files are ignored; variables
// already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads the configuration from the process environment and
// validates it.
func Parse() (*Config, error) {
	return ParseEnv(nil)
}

// ParseEnv is Parse over an explicit environment. A nil map means the
// process environment.
func ParseEnv(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, errors.Join(ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated and bounded values.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(key, value string) {
		errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalid, key, value))
	}

	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		invalid("APP_ENV", c.AppEnv)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		invalid("LOG_LEVEL", c.Log.Level)
	}
	if c.Log.Format != logger.FormatJSON && c.Log.Format != logger.FormatText {
		invalid("LOG_FORMAT", c.Log.Format)
	}
	if _, ok := redirect.ParseColdStartPolicy(c.Slug.ColdStartPolicy); !ok {
		invalid("SLUG_COLD_START_POLICY", c.Slug.ColdStartPolicy)
	}
	if _, ok := slugindex.ParseMalformedPolicy(c.Slug.MalformedPolicy); !ok {
		invalid("SLUG_MALFORMED_POLICY", c.Slug.MalformedPolicy)
	}
	if c.Slug.RefreshSchedule != "" {
		if _, err := warmer.ParseSchedule(c.Slug.RefreshSchedule); err != nil {
			invalid("SLUG_REFRESH_SCHEDULE", c.Slug.RefreshSchedule)
		}
	}
	if c.Slug.CacheTTL < 0 {
		invalid("SLUG_CACHE_TTL", fmt.Sprint(c.Slug.CacheTTL))
	}
	if c.Notion.RateLimit < 0 {
		invalid("NOTION_RATE_LIMIT", fmt.Sprint(c.Notion.RateLimit))
	}

	return errors.Join(errs...)
}

// RequireNotion reports whether the content store credentials are set.
func (c *Config) RequireNotion() error {
	if c.Notion.Token == "" || c.Notion.Posts.DatabaseID == "" {
		return ErrMissingNotion
	}
	return nil
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// CacheTTL returns SLUG_CACHE_TTL, or 30s in development and 5m in
// production when it is unset or 0.
func (c *Config) CacheTTL() time.Duration {
	secs := c.Slug.CacheTTL
	if secs == 0 {
		secs = productionCacheTTL
		if c.IsDevelopment() {
			secs = developmentCacheTTL
		}
	}
	return time.Duration(secs) * time.Second
}

// ColdStartPolicy returns the parsed SLUG_COLD_START_POLICY.
func (c *Config) ColdStartPolicy() redirect.ColdStartPolicy {
	p, _ := redirect.ParseColdStartPolicy(c.Slug.ColdStartPolicy)
	return p
}

// MalformedPolicy returns the parsed SLUG_MALFORMED_POLICY.
func (c *Config) MalformedPolicy() slugindex.MalformedPolicy {
	p, _ := slugindex.ParseMalformedPolicy(c.Slug.MalformedPolicy)
	return p
}
