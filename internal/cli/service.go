package cli

import (
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/notionblog/notionblog/internal/config"
	"github.com/notionblog/notionblog/internal/handler"
	"github.com/notionblog/notionblog/internal/metrics"
	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/internal/redirect"
	"github.com/notionblog/notionblog/internal/server"
	"github.com/notionblog/notionblog/internal/slugcache"
	"github.com/notionblog/notionblog/internal/slugindex"
	"github.com/notionblog/notionblog/internal/warmer"
	"github.com/notionblog/notionblog/middlewares"
	"github.com/notionblog/notionblog/pkg/notion"
	"github.com/notionblog/notionblog/pkg/redis"
)

// service is the assembled HTTP application and its background parts.
type service struct {
	app    *server.App
	cache  *slugcache.Cache
	warmer *warmer.Warmer
}

// newService wires the slug pipeline behind the HTTP surface. rdb may be
// nil, which disables the shared snapshot tier.
func newService(cfg *config.Config, log *slog.Logger, source posts.Source, rdb goredis.UniversalClient, m *metrics.Metrics) (*service, error) {
	builder := slugindex.NewBuilder(source,
		slugindex.WithMalformedPolicy(cfg.MalformedPolicy()),
		slugindex.WithLogger(log),
	)

	cacheOpts := []slugcache.Option{
		slugcache.WithTTL(cfg.CacheTTL()),
		slugcache.WithBuildTimeout(cfg.Slug.BuildTimeout),
		slugcache.WithRetryBackoff(cfg.Slug.RetryBackoff),
		slugcache.WithLogger(log),
		slugcache.WithMetrics(m),
	}
	if rdb != nil {
		cacheOpts = append(cacheOpts, slugcache.WithSnapshotStore(slugcache.NewRedisStore(rdb,
			slugcache.WithKeyPrefix(cfg.Redis.KeyPrefix),
			slugcache.WithRetention(cfg.Redis.SnapshotRetention),
		)))
	}
	cache := slugcache.New(builder, cacheOpts...)

	policy := redirect.NewPolicy(cache,
		redirect.WithColdStartPolicy(cfg.ColdStartPolicy()),
		redirect.WithLogger(log),
		redirect.WithMetrics(m),
	)

	w, err := warmer.New(cache, cfg.Slug.RefreshSchedule,
		warmer.WithLogger(log),
		warmer.WithWarmOnStart(cfg.Slug.WarmOnStart),
		warmer.WithTimeout(cfg.Slug.BuildTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("cli: warmer: %w", err)
	}

	var postsOpts []handler.PostsOption
	if g, ok := source.(posts.Getter); ok {
		postsOpts = append(postsOpts, handler.WithDirectLookup(g))
	}

	checks := []server.HealthOption{
		server.WithReadinessCheck("slug_index", handler.IndexCheck(cache)),
	}
	if rdb != nil {
		checks = append(checks, server.WithReadinessCheck("redis", redis.Healthcheck(rdb)))
	}

	app := server.New(
		server.WithLogger(log),
		server.WithMiddleware(
			middlewares.RequestID(),
			middlewares.AccessLog(log),
			middlewares.Recover(log),
			middlewares.Timeout(cfg.RequestTimeout, log),
		),
		server.WithHealthChecks(checks...),
		server.WithMount("/metrics", m.Handler()),
		server.WithHandlers(
			handler.NewPosts(cache, policy, postsOpts...),
			handler.NewSlugs(cache, middlewares.CORS(middlewares.WithAllowOrigins(cfg.CORSOrigins...))),
			handler.NewRevalidate(cache, cfg.RevalidateToken, log),
			handler.NewSitemap(cache, cfg.BlogURL),
		),
	)

	return &service{app: app, cache: cache, warmer: w}, nil
}

func newNotionSource(cfg *config.Config) (*posts.NotionSource, error) {
	client, err := notion.New(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit, 0))
	if err != nil {
		return nil, err
	}
	return posts.NewNotionSource(client, cfg.Notion.Posts), nil
}
