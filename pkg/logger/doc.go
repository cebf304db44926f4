// Package logger builds the service's structured logger on log/slog.
//
// New selects JSON or text output and a minimum level from Config, and fans
// records out to Sentry when a DSN is configured. Errors become Sentry
// issues; warnings are stored as Sentry logs. Without a DSN the logger
// writes to stdout only, so development and production share a code path.
//
// Request-scoped values reach every record through context extractors:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		id := middlewares.GetRequestID(ctx)
//		return slog.String("request_id", id), id != ""
//	}
//	log := logger.New(cfg, requestID)
//	log.InfoContext(ctx, "slug index rebuilt", slog.Int("entries", 42))
//
// WithAttrs attaches attributes to a context so that deeper calls log them
// without threading a logger through:
//
//	ctx = logger.WithAttrs(ctx, slog.String("post_id", id))
//
// NewNope returns a logger that discards everything and is the default for
// components constructed without one.
package logger
