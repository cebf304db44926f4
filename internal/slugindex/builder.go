// Package slugindex builds the bidirectional mapping between human-readable
// post slugs and content store page ids.
//
// A Builder fetches the complete set of published items in one call and
// derives a slug from each title. Items whose titles collide are ordered by
// creation time and then id; the earliest keeps the plain slug and the rest
// get a short id suffix. The result depends only on the item set, never on
// the order the content store returned it in.
package slugindex

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/pkg/slug"
)

// idLikeSuffix is appended to slugs that would otherwise look like page ids.
const idLikeSuffix = "-post"

// shortIDLen is the length of the id prefix used to disambiguate collisions.
const shortIDLen = 8

// Builder produces a fresh Index from a posts.Source.
type Builder struct {
	source posts.Source
	opts   *options
}

// NewBuilder creates a Builder over source.
func NewBuilder(source posts.Source, opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Builder{source: source, opts: o}
}

// Build fetches all published items and returns a new Index. A source failure
// is returned joined with posts.ErrUpstreamUnavailable.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	items, err := b.source.ListPublished(ctx)
	if err != nil {
		return nil, errors.Join(posts.ErrUpstreamUnavailable, err)
	}
	return b.FromItems(ctx, items)
}

type candidate struct {
	item posts.Item
	base string
}

// FromItems builds an Index from an already fetched item list.
func (b *Builder) FromItems(ctx context.Context, items []posts.Item) (*Index, error) {
	builtAt := b.opts.now()

	cands := make([]candidate, 0, len(items))
	for _, it := range items {
		base, err := b.baseSlug(it)
		if err != nil {
			if b.opts.malformed == FailOnMalformed {
				return nil, err
			}
			b.opts.logger.WarnContext(ctx, "skipping malformed post",
				slog.String("post_id", it.ID),
				slog.String("title", it.Title),
				slog.String("error", err.Error()),
			)
			continue
		}
		it.ID = posts.NormalizeID(it.ID)
		cands = append(cands, candidate{item: it, base: base})
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		if c := a.item.CreatedAt.Compare(b.item.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.item.ID, b.item.ID)
	})

	taken := make(map[string]struct{}, len(cands))
	seen := make(map[string]struct{}, len(cands))
	entries := make([]Entry, 0, len(cands))

	for _, c := range cands {
		if _, dup := seen[c.item.ID]; dup {
			b.opts.logger.WarnContext(ctx, "skipping duplicate post id", slog.String("post_id", c.item.ID))
			continue
		}
		seen[c.item.ID] = struct{}{}

		s := disambiguate(c.base, c.item.ID, taken)
		taken[s] = struct{}{}
		entries = append(entries, Entry{
			ID:           c.item.ID,
			Slug:         s,
			Title:        c.item.Title,
			CreatedAt:    c.item.CreatedAt,
			LastEditedAt: c.item.LastEditedAt,
		})
	}

	// Newest first for listings.
	slices.Reverse(entries)

	return New(entries, builtAt)
}

func (b *Builder) baseSlug(it posts.Item) (string, error) {
	if !posts.IsPageID(it.ID) {
		return "", errors.Join(posts.ErrMalformedItem, fmt.Errorf("invalid id %q", it.ID))
	}
	s := slug.Make(it.Title, b.opts.slugOpts...)
	if s == "" {
		return "", errors.Join(posts.ErrMalformedItem, fmt.Errorf("post %s: title %q has no slug", it.ID, it.Title))
	}
	if posts.IsPageID(s) {
		s += idLikeSuffix
	}
	return s, nil
}

func disambiguate(base, id string, taken map[string]struct{}) string {
	for _, s := range []string{base, base + "-" + id[:shortIDLen], base + "-" + id} {
		if _, ok := taken[s]; !ok {
			return s
		}
	}
	// The full id is unique among entries, so this is only reached when a
	// title literally ends with another post's full id.
	for n := 2; ; n++ {
		s := fmt.Sprintf("%s-%s-%d", base, id, n)
		if _, ok := taken[s]; !ok {
			return s
		}
	}
}
