package slugindex

import (
	"log/slog"
	"time"

	"github.com/notionblog/notionblog/pkg/logger"
	"github.com/notionblog/notionblog/pkg/slug"
)

// MalformedPolicy decides what happens to an item that cannot be given a slug.
type MalformedPolicy int

const (
	// SkipMalformed leaves the item out of the index and logs a warning.
	SkipMalformed MalformedPolicy = iota
	// FailOnMalformed aborts the build with ErrMalformedItem.
	FailOnMalformed
)

// ParseMalformedPolicy parses "skip" or "fail".
func ParseMalformedPolicy(s string) (MalformedPolicy, bool) {
	switch s {
	case "", "skip":
		return SkipMalformed, true
	case "fail":
		return FailOnMalformed, true
	}
	return SkipMalformed, false
}

type options struct {
	slugOpts  []slug.Option
	malformed MalformedPolicy
	logger    *slog.Logger
	now       func() time.Time
}

func defaultOptions() *options {
	return &options{
		malformed: SkipMalformed,
		logger:    logger.NewNope(),
		now:       time.Now,
	}
}

// Option configures a Builder.
type Option func(*options)

// WithSlugOptions sets the options passed to slug.Make for every title.
func WithSlugOptions(opts ...slug.Option) Option {
	return func(o *options) {
		o.slugOpts = opts
	}
}

// WithMalformedPolicy sets how items without a usable slug are handled.
func WithMalformedPolicy(p MalformedPolicy) Option {
	return func(o *options) {
		o.malformed = p
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

// WithClock sets the function used to stamp BuiltAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
