package slugindex

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/notionblog/notionblog/internal/posts"
)

// ErrInconsistent is returned by New when entries do not form a one-to-one
// mapping between slugs and ids.
var ErrInconsistent = errors.New("slugindex: inconsistent entries")

// Entry is one post in the index.
type Entry struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastEditedAt time.Time `json:"last_edited_at"`
}

// Index is an immutable bidirectional slug/id mapping built from one
// snapshot of the content store. It is safe for concurrent use.
type Index struct {
	entries []Entry
	bySlug  map[string]int
	byID    map[string]int
	builtAt time.Time
}

// New builds an Index over entries. Ids are normalized. Empty slugs, invalid
// ids and duplicates in either direction yield ErrInconsistent.
func New(entries []Entry, builtAt time.Time) (*Index, error) {
	idx := &Index{
		entries: make([]Entry, len(entries)),
		bySlug:  make(map[string]int, len(entries)),
		byID:    make(map[string]int, len(entries)),
		builtAt: builtAt,
	}

	for i, e := range entries {
		if e.Slug == "" {
			return nil, errors.Join(ErrInconsistent, fmt.Errorf("entry %d: empty slug", i))
		}
		if !posts.IsPageID(e.ID) {
			return nil, errors.Join(ErrInconsistent, fmt.Errorf("entry %d: invalid id %q", i, e.ID))
		}
		e.ID = posts.NormalizeID(e.ID)

		if _, dup := idx.bySlug[e.Slug]; dup {
			return nil, errors.Join(ErrInconsistent, fmt.Errorf("duplicate slug %q", e.Slug))
		}
		if _, dup := idx.byID[e.ID]; dup {
			return nil, errors.Join(ErrInconsistent, fmt.Errorf("duplicate id %s", e.ID))
		}

		idx.entries[i] = e
		idx.bySlug[e.Slug] = i
		idx.byID[e.ID] = i
	}

	return idx, nil
}

// IDForSlug returns the id registered for slug.
func (x *Index) IDForSlug(slug string) (string, bool) {
	i, ok := x.bySlug[slug]
	if !ok {
		return "", false
	}
	return x.entries[i].ID, true
}

// SlugForID returns the slug registered for id. Hyphenated and upper-case
// ids are accepted.
func (x *Index) SlugForID(id string) (string, bool) {
	i, ok := x.byID[posts.NormalizeID(id)]
	if !ok {
		return "", false
	}
	return x.entries[i].Slug, true
}

// EntryForSlug returns the full entry registered for slug.
func (x *Index) EntryForSlug(slug string) (Entry, bool) {
	i, ok := x.bySlug[slug]
	if !ok {
		return Entry{}, false
	}
	return x.entries[i], true
}

// Entries returns a copy of the entries, newest first.
func (x *Index) Entries() []Entry {
	return slices.Clone(x.entries)
}

// Forward returns a copy of the slug to id mapping.
func (x *Index) Forward() map[string]string {
	m := make(map[string]string, len(x.entries))
	for _, e := range x.entries {
		m[e.Slug] = e.ID
	}
	return m
}

// Reverse returns a copy of the id to slug mapping.
func (x *Index) Reverse() map[string]string {
	m := make(map[string]string, len(x.entries))
	for _, e := range x.entries {
		m[e.ID] = e.Slug
	}
	return m
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// BuiltAt returns when the snapshot was taken.
func (x *Index) BuiltAt() time.Time {
	return x.builtAt
}
