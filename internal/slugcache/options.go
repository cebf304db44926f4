package slugcache

import (
	"log/slog"
	"time"

	"github.com/notionblog/notionblog/pkg/logger"
)

const (
	// DefaultTTL is how long a snapshot is served without a rebuild.
	DefaultTTL = 5 * time.Minute
	// DefaultBuildTimeout bounds one rebuild.
	DefaultBuildTimeout = 10 * time.Second
	// DefaultRetryBackoff spaces rebuild attempts after a failure.
	DefaultRetryBackoff = 5 * time.Second
)

// Metrics receives rebuild and fallback events.
type Metrics interface {
	RecordRebuild(result string, d time.Duration, entries int)
	RecordStaleServed()
}

type nopMetrics struct{}

func (nopMetrics) RecordRebuild(string, time.Duration, int) {}
func (nopMetrics) RecordStaleServed()                       {}

type options struct {
	ttl          time.Duration
	buildTimeout time.Duration
	retryBackoff time.Duration
	now          func() time.Time
	logger       *slog.Logger
	metrics      Metrics
	store        SnapshotStore
}

func defaultOptions() *options {
	return &options{
		ttl:          DefaultTTL,
		buildTimeout: DefaultBuildTimeout,
		retryBackoff: DefaultRetryBackoff,
		now:          time.Now,
		logger:       logger.NewNope(),
		metrics:      nopMetrics{},
	}
}

// Option configures a Cache.
type Option func(*options)

// WithTTL sets how long a snapshot stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithBuildTimeout bounds a single rebuild, independent of the caller's context.
func WithBuildTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.buildTimeout = d
		}
	}
}

// WithRetryBackoff sets how long a stale snapshot is served after a failed
// rebuild before the next attempt. Zero retries on every lookup.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.retryBackoff = d
		}
	}
}

// WithClock sets the time source used for TTL decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSnapshotStore enables the shared snapshot tier.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(o *options) {
		o.store = s
	}
}
