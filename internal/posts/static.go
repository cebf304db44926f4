package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
)

// StaticSource serves a fixed list of items. Set Err to simulate an outage.
type StaticSource struct {
	mu    sync.Mutex
	items []Item
	err   error
	calls int
}

var (
	_ Source = (*StaticSource)(nil)
	_ Getter = (*StaticSource)(nil)
)

// NewStaticSource returns a Source over items.
func NewStaticSource(items ...Item) *StaticSource {
	return &StaticSource{items: slices.Clone(items)}
}

// LoadFile reads a JSON array of items, as written by `notionblog slugs --json`.
func LoadFile(path string) (*StaticSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("posts: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a JSON array of items from r.
func Decode(r io.Reader) (*StaticSource, error) {
	var items []Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}
	for i := range items {
		if !IsPageID(items[i].ID) {
			return nil, errors.Join(ErrInvalidResponse, fmt.Errorf("item %d: invalid id %q", i, items[i].ID))
		}
		items[i].ID = NormalizeID(items[i].ID)
	}
	return NewStaticSource(items...), nil
}

// ListPublished returns a copy of the items.
func (s *StaticSource) ListPublished(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.items), nil
}

// GetPost returns the item with the given id in either id form.
func (s *StaticSource) GetPost(ctx context.Context, id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	if s.err != nil {
		return Item{}, s.err
	}
	id = NormalizeID(id)
	for _, it := range s.items {
		if NormalizeID(it.ID) == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

// Set replaces the items.
func (s *StaticSource) Set(items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
}

// Fail makes subsequent calls return err. A nil err restores normal operation.
func (s *StaticSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls reports how many times ListPublished was called.
func (s *StaticSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
