package slugcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/internal/slugindex"
)

const rebuildKey = "slug-index"

// Rebuild results reported to Metrics.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultShared   = "shared"
	ResultFallback = "fallback"
)

// Builder produces a fresh index from the content store.
type Builder interface {
	Build(ctx context.Context) (*slugindex.Index, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(ctx context.Context) (*slugindex.Index, error)

// Build calls f(ctx).
func (f BuilderFunc) Build(ctx context.Context) (*slugindex.Index, error) {
	return f(ctx)
}

// State describes the snapshot currently held by a Cache.
type State int

const (
	// StateEmpty means no snapshot has been built yet.
	StateEmpty State = iota
	// StatePopulated means the snapshot is within its TTL.
	StatePopulated
	// StateStale means the snapshot is past its TTL or was invalidated.
	StateStale
)

func (s State) String() string {
	switch s {
	case StatePopulated:
		return "populated"
	case StateStale:
		return "stale"
	default:
		return "empty"
	}
}

type snapshot struct {
	index     *slugindex.Index
	expiresAt time.Time
	gen       uint64
}

// Cache resolves slugs and ids against a TTL-bound index snapshot.
// It is safe for concurrent use.
type Cache struct {
	builder Builder
	opts    *options

	current     atomic.Pointer[snapshot]
	invalidated atomic.Bool
	retryAt     atomic.Int64
	gen         atomic.Uint64
	publishMu   sync.Mutex
	group       singleflight.Group
}

// New creates an empty Cache. Nothing is built until the first lookup or
// an explicit Refresh.
func New(builder Builder, opts ...Option) *Cache {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Cache{builder: builder, opts: o}
}

// ResolveIDForSlug returns the page id for slug. It returns posts.ErrNotFound
// when the slug is unknown and posts.ErrUpstreamUnavailable when no snapshot
// could be obtained.
func (c *Cache) ResolveIDForSlug(ctx context.Context, slug string) (string, error) {
	idx, err := c.index(ctx)
	if err != nil {
		return "", err
	}
	id, ok := idx.IDForSlug(slug)
	if !ok {
		return "", posts.ErrNotFound
	}
	return id, nil
}

// ResolveSlugForID returns the slug for a page id in either hyphenated or
// plain form. Errors follow ResolveIDForSlug.
func (c *Cache) ResolveSlugForID(ctx context.Context, id string) (string, error) {
	idx, err := c.index(ctx)
	if err != nil {
		return "", err
	}
	s, ok := idx.SlugForID(id)
	if !ok {
		return "", posts.ErrNotFound
	}
	return s, nil
}

// Snapshot returns the current index, rebuilding it first if it is stale.
func (c *Cache) Snapshot(ctx context.Context) (*slugindex.Index, error) {
	return c.index(ctx)
}

// Peek returns the current index without triggering a rebuild.
func (c *Cache) Peek() (*slugindex.Index, State) {
	snap := c.current.Load()
	if snap == nil {
		return nil, StateEmpty
	}
	if c.isStale(snap, c.opts.now()) {
		return snap.index, StateStale
	}
	return snap.index, StatePopulated
}

// Invalidate forces the next lookup to rebuild regardless of TTL. The current
// snapshot keeps answering if that rebuild fails.
func (c *Cache) Invalidate() {
	c.invalidated.Store(true)
	c.retryAt.Store(0)
	c.group.Forget(rebuildKey)
}

// InvalidateShared invalidates the local snapshot and removes the shared one,
// when the store supports removal, so other instances do not adopt it.
func (c *Cache) InvalidateShared(ctx context.Context) error {
	c.Invalidate()
	d, ok := c.opts.store.(interface {
		Delete(ctx context.Context) error
	})
	if !ok {
		return nil
	}
	return d.Delete(ctx)
}

// Refresh rebuilds the index now. On failure the previous snapshot is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err := c.rebuild(ctx)
	return err
}

func (c *Cache) index(ctx context.Context) (*slugindex.Index, error) {
	now := c.opts.now()
	snap := c.current.Load()
	if snap != nil && !c.isStale(snap, now) {
		return snap.index, nil
	}

	if snap != nil && !c.invalidated.Load() && c.inBackoff(now) {
		c.opts.metrics.RecordStaleServed()
		return snap.index, nil
	}

	idx, err := c.rebuild(ctx)
	if err == nil {
		return idx, nil
	}

	if snap = c.current.Load(); snap != nil {
		c.opts.metrics.RecordStaleServed()
		c.opts.logger.WarnContext(ctx, "serving stale slug index",
			slog.Time("built_at", snap.index.BuiltAt()),
			slog.Int("entries", snap.index.Len()),
			slog.String("error", err.Error()),
		)
		return snap.index, nil
	}
	return nil, err
}

func (c *Cache) isStale(snap *snapshot, now time.Time) bool {
	return c.invalidated.Load() || !now.Before(snap.expiresAt)
}

func (c *Cache) inBackoff(now time.Time) bool {
	until := c.retryAt.Load()
	return until != 0 && now.UnixNano() < until
}

// rebuild joins an in-flight build or starts one. The build runs detached
// from ctx so a departing caller does not abort it for everyone else.
func (c *Cache) rebuild(ctx context.Context) (*slugindex.Index, error) {
	ch := c.group.DoChan(rebuildKey, func() (any, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.buildTimeout)
		defer cancel()
		return c.build(bctx)
	})

	select {
	case <-ctx.Done():
		return nil, errors.Join(posts.ErrUpstreamUnavailable, ctx.Err())
	case res := <-ch:
		idx, _ := res.Val.(*slugindex.Index)
		return idx, res.Err
	}
}

func (c *Cache) build(ctx context.Context) (*slugindex.Index, error) {
	gen := c.gen.Add(1)
	forced := c.invalidated.Swap(false)
	start := c.opts.now()

	if c.opts.store != nil && !forced {
		if idx, ok := c.adoptShared(ctx, start); ok {
			c.publish(gen, idx, idx.BuiltAt().Add(c.opts.ttl))
			c.retryAt.Store(0)
			c.opts.metrics.RecordRebuild(ResultShared, c.opts.now().Sub(start), idx.Len())
			c.opts.logger.InfoContext(ctx, "adopted shared slug index",
				slog.Time("built_at", idx.BuiltAt()),
				slog.Int("entries", idx.Len()),
			)
			return idx, nil
		}
	}

	idx, err := c.builder.Build(ctx)
	elapsed := c.opts.now().Sub(start)
	if err != nil {
		if !errors.Is(err, posts.ErrUpstreamUnavailable) {
			err = errors.Join(posts.ErrUpstreamUnavailable, err)
		}
		return c.buildFailed(ctx, gen, forced, elapsed, err)
	}

	c.publish(gen, idx, start.Add(c.opts.ttl))
	c.retryAt.Store(0)
	c.opts.metrics.RecordRebuild(ResultOK, elapsed, idx.Len())
	c.opts.logger.InfoContext(ctx, "slug index rebuilt",
		slog.Duration("duration", elapsed),
		slog.Int("entries", idx.Len()),
	)

	if c.opts.store != nil {
		if err := c.opts.store.Save(ctx, idx); err != nil {
			c.opts.logger.WarnContext(ctx, "failed to save shared slug index", slog.String("error", err.Error()))
		}
	}
	return idx, nil
}

func (c *Cache) buildFailed(ctx context.Context, gen uint64, forced bool, elapsed time.Duration, err error) (*slugindex.Index, error) {
	now := c.opts.now()
	c.retryAt.Store(now.Add(c.opts.retryBackoff).UnixNano())
	c.opts.metrics.RecordRebuild(ResultError, elapsed, -1)
	c.opts.logger.ErrorContext(ctx, "slug index rebuild failed",
		slog.Duration("duration", elapsed),
		slog.String("error", err.Error()),
	)

	if forced {
		c.markStale(gen, now)
	}

	if c.current.Load() != nil || c.opts.store == nil {
		return nil, err
	}

	shared, lerr := c.opts.store.Load(ctx)
	if lerr != nil {
		return nil, err
	}
	c.publish(gen, shared, now)
	c.opts.metrics.RecordRebuild(ResultFallback, 0, shared.Len())
	c.opts.logger.WarnContext(ctx, "using shared slug index as fallback",
		slog.Time("built_at", shared.BuiltAt()),
		slog.Int("entries", shared.Len()),
	)
	return shared, err
}

// adoptShared loads the shared snapshot and reports whether it is both
// within TTL and newer than what is held locally.
func (c *Cache) adoptShared(ctx context.Context, now time.Time) (*slugindex.Index, bool) {
	idx, err := c.opts.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			c.opts.logger.WarnContext(ctx, "failed to load shared slug index", slog.String("error", err.Error()))
		}
		return nil, false
	}
	if now.Sub(idx.BuiltAt()) >= c.opts.ttl {
		return nil, false
	}
	if cur := c.current.Load(); cur != nil && !idx.BuiltAt().After(cur.index.BuiltAt()) {
		return nil, false
	}
	return idx, true
}

// publish installs idx unless a newer build already did.
func (c *Cache) publish(gen uint64, idx *slugindex.Index, expiresAt time.Time) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	if cur := c.current.Load(); cur != nil && cur.gen > gen {
		return
	}
	c.current.Store(&snapshot{index: idx, expiresAt: expiresAt, gen: gen})
}

// markStale expires the current snapshot unless a build newer than gen
// already replaced it.
func (c *Cache) markStale(gen uint64, now time.Time) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	cur := c.current.Load()
	if cur == nil || cur.gen > gen || !cur.expiresAt.After(now) {
		return
	}
	stale := *cur
	stale.expiresAt = now
	c.current.Store(&stale)
}
