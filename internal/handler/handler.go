package handler

import (
	"context"
	"net/url"

	"github.com/notionblog/notionblog/internal/slugcache"
	"github.com/notionblog/notionblog/internal/slugindex"
	"github.com/notionblog/notionblog/pkg/health"
)

// Index is the read and invalidation surface of the slug cache.
type Index interface {
	Snapshot(ctx context.Context) (*slugindex.Index, error)
	Peek() (*slugindex.Index, slugcache.State)
	InvalidateShared(ctx context.Context) error
	Refresh(ctx context.Context) error
}

var _ Index = (*slugcache.Cache)(nil)

// IndexCheck reports ready when a snapshot is held, or when one can be
// built within the probe's deadline.
func IndexCheck(idx Index) health.CheckFunc {
	return func(ctx context.Context) error {
		if snap, _ := idx.Peek(); snap != nil {
			return nil
		}
		_, err := idx.Snapshot(ctx)
		return err
	}
}

// pathParam returns the decoded value of a chi URL parameter.
func pathParam(raw string) string {
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
