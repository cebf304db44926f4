// Package slugcache keeps the current slug index snapshot and decides when
// to rebuild it.
//
// Lookups are lazy: a snapshot older than the TTL is rebuilt on the next
// lookup, and concurrent lookups share a single rebuild. A failed rebuild
// never discards a usable snapshot; the stale one keeps answering and
// further attempts are spaced by a retry backoff. Readers always see a
// complete snapshot because the reference is swapped atomically only after
// a build finishes.
//
// An optional SnapshotStore shares snapshots between instances. A shared
// snapshot younger than the TTL is adopted instead of calling the content
// store, and any shared snapshot is used when the content store is down and
// nothing is cached locally.
//
// Usage:
//
//	builder := slugindex.NewBuilder(source)
//	c := slugcache.New(builder,
//		slugcache.WithTTL(5*time.Minute),
//		slugcache.WithLogger(log),
//	)
//
//	id, err := c.ResolveIDForSlug(ctx, "hello-world")
//	if errors.Is(err, posts.ErrNotFound) {
//		// 404
//	}
package slugcache
