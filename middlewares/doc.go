// Package middlewares provides net/http middleware for the blog service.
//
//   - RequestID reuses X-Request-ID (or X-Correlation-ID) or generates a
//     UUID, and RequestIDExtractor puts it on every log record.
//   - Recover turns panics into a logged error and a 500 JSON response.
//   - Timeout puts a deadline on the request context.
//   - AccessLog writes one record per request.
//   - CORS lets browser frontends read the slug API.
//
// Typical order, outermost first:
//
//	server.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.AccessLog(log),
//	    middlewares.Recover(log),
//	    middlewares.Timeout(10*time.Second, log),
//	)
package middlewares
