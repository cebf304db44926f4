// Package warmer refreshes the slug cache on a cron schedule so that
// readers rarely pay for a rebuild. Scheduled refreshes are ordinary
// rebuilds; the cache's own TTL handling is unchanged.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/notionblog/notionblog/pkg/logger"
)

// ErrInvalidSchedule is returned by New for an unparsable cron expression.
var ErrInvalidSchedule = errors.New("warmer: invalid schedule")

// Refresher rebuilds the index.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type options struct {
	logger      *slog.Logger
	timeout     time.Duration
	warmOnStart bool
}

// Option configures a Warmer.
type Option func(*options)

// WithLogger sets the logger for refresh outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout bounds one refresh. Default: 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithWarmOnStart refreshes once during Start.
func WithWarmOnStart(enabled bool) Option {
	return func(o *options) {
		o.warmOnStart = enabled
	}
}

// Warmer runs Refresh on a schedule.
type Warmer struct {
	refresher Refresher
	schedule  cron.Schedule
	cron      *cron.Cron
	opts      options

	mu      sync.Mutex
	running bool
}

// ParseSchedule accepts five-field cron specs and descriptors such as
// "@hourly" or "@every 5m".
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, fmt.Errorf("%q: %w", expr, err))
	}
	return s, nil
}

// New creates a Warmer. An empty expr disables scheduling; Start then only
// performs the optional warm-up.
func New(r Refresher, expr string, opts ...Option) (*Warmer, error) {
	o := options{logger: logger.NewNope(), timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Warmer{refresher: r, opts: o}
	if expr != "" {
		s, err := ParseSchedule(expr)
		if err != nil {
			return nil, err
		}
		w.schedule = s
		w.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	}
	return w, nil
}

// Start warms the cache if configured and starts the schedule. A failed
// warm-up is logged, not returned, so the server still comes up and serves
// once the content store recovers. Scheduling stops when ctx is done.
func (w *Warmer) Start(ctx context.Context) error {
	if w.opts.warmOnStart {
		w.refresh(ctx, "startup")
	}
	if w.cron == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	w.running = true

	base := context.WithoutCancel(ctx)
	w.cron.Schedule(w.schedule, cron.FuncJob(func() {
		w.refresh(base, "schedule")
	}))
	w.cron.Start()

	go func() {
		<-ctx.Done()
		_ = w.Stop(context.Background())
	}()
	return nil
}

// Stop halts the schedule and waits for a running refresh, or for ctx.
func (w *Warmer) Stop(ctx context.Context) error {
	if w.cron == nil {
		return nil
	}

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	select {
	case <-w.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports the next scheduled run after t, or the zero time when
// scheduling is disabled.
func (w *Warmer) Next(t time.Time) time.Time {
	if w.schedule == nil {
		return time.Time{}
	}
	return w.schedule.Next(t)
}

func (w *Warmer) refresh(ctx context.Context, trigger string) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.timeout)
	defer cancel()

	start := time.Now()
	if err := w.refresher.Refresh(ctx); err != nil {
		w.opts.logger.WarnContext(ctx, "slug index warm-up failed",
			slog.String("trigger", trigger),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return
	}
	w.opts.logger.DebugContext(ctx, "slug index warmed",
		slog.String("trigger", trigger),
		slog.Duration("duration", time.Since(start)),
	)
}
