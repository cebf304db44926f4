// Package redirect decides what happens to a request that names a post by
// either its page id or its slug.
//
// Requests addressed by page id are permanently redirected to the canonical
// slug path. Anything else is treated as a slug and passed through to the
// rendering path, which validates existence itself.
package redirect

import (
	"context"
	"errors"
	"log/slog"

	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/pkg/logger"
)

// Outcome is the routing decision for one path parameter.
type Outcome int

const (
	// PassThrough hands the request to normal rendering unchanged.
	PassThrough Outcome = iota
	// Redirect sends a permanent redirect to Decision.Slug.
	Redirect
	// NotFound answers 404.
	NotFound
	// Unavailable answers 503: the id could not be checked and no snapshot exists.
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	case Unavailable:
		return "unavailable"
	default:
		return "pass_through"
	}
}

// Decision is the result of Route.
type Decision struct {
	Outcome Outcome
	// Slug is the canonical slug when Outcome is Redirect.
	Slug string
	// Err is the resolver error behind NotFound or Unavailable, if any.
	Err error
}

// Resolver maps a page id to its slug.
type Resolver interface {
	ResolveSlugForID(ctx context.Context, id string) (string, error)
}

// ColdStartPolicy decides what an id request gets when there is no index
// snapshot and the content store is unreachable.
type ColdStartPolicy int

const (
	// ColdStartFail answers 503.
	ColdStartFail ColdStartPolicy = iota
	// ColdStartPassThrough lets the rendering path serve the post by raw id.
	ColdStartPassThrough
)

// ParseColdStartPolicy parses "fail" or "passthrough".
func ParseColdStartPolicy(s string) (ColdStartPolicy, bool) {
	switch s {
	case "", "fail":
		return ColdStartFail, true
	case "passthrough", "pass-through":
		return ColdStartPassThrough, true
	}
	return ColdStartFail, false
}

// Metrics receives one call per decision.
type Metrics interface {
	RecordRedirectDecision(outcome string)
}

type options struct {
	coldStart ColdStartPolicy
	logger    *slog.Logger
	metrics   Metrics
}

// Option configures a Policy.
type Option func(*options)

// WithColdStartPolicy sets the cold start behaviour. Default is ColdStartFail.
func WithColdStartPolicy(p ColdStartPolicy) Option {
	return func(o *options) {
		o.coldStart = p
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

// WithMetrics sets the decision recorder.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Policy routes post path parameters. It holds no state of its own.
type Policy struct {
	resolver Resolver
	opts     options
}

// NewPolicy creates a Policy over resolver.
func NewPolicy(resolver Resolver, opts ...Option) *Policy {
	o := options{coldStart: ColdStartFail, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Policy{resolver: resolver, opts: o}
}

// Route decides the outcome for param, the path segment after /posts/.
func (p *Policy) Route(ctx context.Context, param string) Decision {
	d := p.route(ctx, param)
	if p.opts.metrics != nil {
		p.opts.metrics.RecordRedirectDecision(d.Outcome.String())
	}
	return d
}

func (p *Policy) route(ctx context.Context, param string) Decision {
	if !posts.IsPageID(param) {
		return Decision{Outcome: PassThrough}
	}

	slug, err := p.resolver.ResolveSlugForID(ctx, param)
	switch {
	case err == nil:
		return Decision{Outcome: Redirect, Slug: slug}
	case errors.Is(err, posts.ErrNotFound):
		return Decision{Outcome: NotFound, Err: err}
	case p.opts.coldStart == ColdStartPassThrough:
		p.opts.logger.WarnContext(ctx, "slug index unavailable, passing id through",
			slog.String("post_id", param),
			slog.String("error", err.Error()),
		)
		return Decision{Outcome: PassThrough, Err: err}
	default:
		p.opts.logger.ErrorContext(ctx, "slug index unavailable",
			slog.String("post_id", param),
			slog.String("error", err.Error()),
		)
		return Decision{Outcome: Unavailable, Err: err}
	}
}
