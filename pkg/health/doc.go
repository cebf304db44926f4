// Package health serves liveness and readiness probes.
//
// LivenessHandler always answers OK. ReadinessHandler runs a set of named
// checks in parallel under one timeout and answers 503 when any of them
// fails. Both respond with plain text by default and JSON when the client
// sends Accept: application/json or ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "slug_index": {"status": "healthy", "duration_ms": 0},
//	    "redis": {"status": "unhealthy", "error": "connection refused", "duration_ms": 3}
//	  }
//	}
//
// A check is any func(context.Context) error, so redis.Healthcheck and
// similar closures plug in directly:
//
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"redis": redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second)))
package health
