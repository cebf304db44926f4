// Package redis opens go-redis clients from connection URLs.
//
// Open validates the URL scheme, applies pool and timeout settings, and
// pings the server with linear backoff before returning the client:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//		redis.WithPoolSize(20),
//		redis.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
// Healthcheck and Shutdown adapt the client to readiness checks and
// server shutdown hooks.
package redis
