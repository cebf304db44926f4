// Package posts describes published blog posts as the slug index sees them
// and the content store contract that lists them.
package posts

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a slug or id is not in the index.
	ErrNotFound = errors.New("posts: not found")

	// ErrUpstreamUnavailable is returned when the content store cannot be
	// reached and no snapshot is available to fall back to.
	ErrUpstreamUnavailable = errors.New("posts: upstream unavailable")

	// ErrMalformedItem is returned when an item cannot be given a slug.
	ErrMalformedItem = errors.New("posts: malformed item")

	// ErrInvalidResponse is returned when the content store answers with
	// data that cannot be parsed into items.
	ErrInvalidResponse = errors.New("posts: invalid response from content store")
)

// Item is a published post.
type Item struct {
	// ID is the normalized page id: 32 lower-case hex characters.
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastEditedAt time.Time `json:"last_edited_at"`
}

// Source lists the complete set of published posts in one call.
type Source interface {
	ListPublished(ctx context.Context) ([]Item, error)
}

// Getter fetches one published post by page id without listing the store.
// Unknown and unpublished pages yield ErrNotFound.
type Getter interface {
	GetPost(ctx context.Context, id string) (Item, error)
}

var pageIDPattern = regexp.MustCompile(`^(?i:[0-9a-f]{32}|[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)

// IsPageID reports whether s is shaped like a page id: 32 hex characters,
// optionally hyphenated 8-4-4-4-12. Case is ignored.
func IsPageID(s string) bool {
	return pageIDPattern.MatchString(s)
}

// NormalizeID strips hyphens and lower-cases s. It does not validate.
func NormalizeID(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "-", ""))
}

// HyphenateID formats a page id as 8-4-4-4-12. Input that is not a page id
// is returned unchanged.
func HyphenateID(s string) string {
	if !IsPageID(s) {
		return s
	}
	n := NormalizeID(s)
	return n[0:8] + "-" + n[8:12] + "-" + n[12:16] + "-" + n[16:20] + "-" + n[20:32]
}
