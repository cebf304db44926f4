// Package server assembles the HTTP application on a chi router and runs it
// with graceful shutdown.
//
// Handlers return errors instead of writing failure responses themselves.
// The configured ErrorHandler turns them into responses; the default one
// maps *HTTPError to its code, posts.ErrNotFound to 404 and
// posts.ErrUpstreamUnavailable to 503, and writes a JSON body:
//
//	{"error": "post not found"}
//
// Basic usage:
//
//	app := server.New(
//	    server.WithLogger(log),
//	    server.WithMiddleware(middlewares.RequestID(), middlewares.Recover(log)),
//	    server.WithHandlers(handler.NewPosts(cache)),
//	    server.WithHealthChecks(
//	        server.WithReadinessCheck("slug_index", handler.IndexCheck(cache)),
//	    ),
//	)
//	err := app.Run(":8080", server.Logger(log), server.ShutdownHook(redis.Shutdown(client)))
//
// Server timeouts are fixed: read 15s, write 30s, idle 120s, read header 5s,
// 1MB of headers.
package server
