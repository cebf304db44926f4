package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	goredis "github.com/redis/go-redis/v9"

	"github.com/notionblog/notionblog/internal/config"
	"github.com/notionblog/notionblog/internal/metrics"
	"github.com/notionblog/notionblog/internal/server"
	"github.com/notionblog/notionblog/middlewares"
	"github.com/notionblog/notionblog/pkg/logger"
	"github.com/notionblog/notionblog/pkg/redis"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Serve post lookups, the slug API, the sitemap and cache revalidation.
Requires NOTION_KEY and NOTION_POST_DATABASE_ID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, root *rootOptions, addr string) error {
	cfg, err := config.Load(root.envFiles...)
	if err != nil {
		return err
	}
	if err := cfg.RequireNotion(); err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
	defer logger.Flush(2 * time.Second)

	source, err := newNotionSource(cfg)
	if err != nil {
		return err
	}

	runOpts := []server.RunOption{
		server.WithContext(ctx),
		server.Logger(log),
		server.ShutdownTimeout(cfg.ShutdownTimeout),
	}

	var rdb goredis.UniversalClient
	if cfg.Redis.URL != "" {
		rdb, err = redis.Open(ctx, cfg.Redis.URL, redis.WithLogger(log))
		if err != nil {
			return fmt.Errorf("cli: shared snapshot tier: %w", err)
		}
		runOpts = append(runOpts, server.ShutdownHook(redis.Shutdown(rdb)))
	}

	svc, err := newService(cfg, log, source, rdb, metrics.New())
	if err != nil {
		return err
	}
	runOpts = append(runOpts,
		server.StartupHook(svc.warmer.Start),
		server.ShutdownHook(svc.warmer.Stop),
	)

	log.Info("slug cache configured",
		"env", cfg.AppEnv,
		"ttl", cfg.CacheTTL(),
		"cold_start", cfg.Slug.ColdStartPolicy,
		"shared_tier", rdb != nil,
		"refresh_schedule", cfg.Slug.RefreshSchedule,
	)
	return svc.app.Run(addr, runOpts...)
}
