package posts

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/notionblog/notionblog/pkg/notion"
)

// NotionConfig names the posts database and the properties read from it.
type NotionConfig struct {
	DatabaseID      string `env:"NOTION_POST_DATABASE_ID"`
	TitleProperty   string `env:"NOTION_TITLE_PROPERTY" envDefault:"제목"`
	StatusProperty  string `env:"NOTION_STATUS_PROPERTY" envDefault:"상태"`
	PublishedStatus string `env:"NOTION_PUBLISHED_STATUS" envDefault:"공개"`
	DateProperty    string `env:"NOTION_DATE_PROPERTY" envDefault:"날짜"`
}

func (c NotionConfig) withDefaults() NotionConfig {
	if c.TitleProperty == "" {
		c.TitleProperty = "제목"
	}
	if c.StatusProperty == "" {
		c.StatusProperty = "상태"
	}
	if c.PublishedStatus == "" {
		c.PublishedStatus = "공개"
	}
	if c.DateProperty == "" {
		c.DateProperty = "날짜"
	}
	return c
}

// DatabaseQuerier lists the pages of a database.
type DatabaseQuerier interface {
	QueryDatabase(ctx context.Context, databaseID string, q notion.Query) ([]notion.Page, error)
}

// PageGetter retrieves a single page.
type PageGetter interface {
	RetrievePage(ctx context.Context, pageID string) (*notion.Page, error)
}

// NotionClient is the subset of *notion.Client used by NotionSource.
type NotionClient interface {
	DatabaseQuerier
	PageGetter
}

// NotionSource lists published posts from a Notion database.
type NotionSource struct {
	client NotionClient
	cfg    NotionConfig
}

var (
	_ Source       = (*NotionSource)(nil)
	_ Getter       = (*NotionSource)(nil)
	_ NotionClient = (*notion.Client)(nil)
)

// NewNotionSource creates a Source backed by the posts database in cfg.
func NewNotionSource(client NotionClient, cfg NotionConfig) *NotionSource {
	return &NotionSource{client: client, cfg: cfg.withDefaults()}
}

// ListPublished queries every page whose status equals the published status,
// newest first. A page with a missing or invalid id fails the whole call with
// ErrInvalidResponse. A page without a title is returned with an empty Title.
func (s *NotionSource) ListPublished(ctx context.Context) ([]Item, error) {
	pages, err := s.client.QueryDatabase(ctx, s.cfg.DatabaseID, notion.Query{
		Filter: &notion.Filter{
			Property: s.cfg.StatusProperty,
			Status:   &notion.StatusCondition{Equals: s.cfg.PublishedStatus},
		},
		Sorts: []notion.Sort{{Property: s.cfg.DateProperty, Direction: notion.SortDescending}},
	})
	if err != nil {
		return nil, fmt.Errorf("query posts database: %w", err)
	}

	items := make([]Item, 0, len(pages))
	for i := range pages {
		if pages[i].Archived || pages[i].InTrash {
			continue
		}
		item, err := s.parsePage(&pages[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetPost retrieves one page by id. Pages that are archived, trashed or not
// in the published status are reported as ErrNotFound, as is a 404 from
// Notion.
func (s *NotionSource) GetPost(ctx context.Context, id string) (Item, error) {
	if !IsPageID(id) {
		return Item{}, ErrNotFound
	}

	page, err := s.client.RetrievePage(ctx, HyphenateID(id))
	if err != nil {
		var apiErr *notion.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return Item{}, errors.Join(ErrNotFound, err)
		}
		return Item{}, fmt.Errorf("retrieve page %s: %w", id, err)
	}

	if page.Archived || page.InTrash {
		return Item{}, ErrNotFound
	}
	status, err := page.StatusName(s.cfg.StatusProperty)
	if err != nil || status != s.cfg.PublishedStatus {
		return Item{}, ErrNotFound
	}
	return s.parsePage(page)
}

func (s *NotionSource) parsePage(p *notion.Page) (Item, error) {
	if !IsPageID(p.ID) {
		return Item{}, errors.Join(ErrInvalidResponse, fmt.Errorf("page id %q", p.ID))
	}
	if p.CreatedTime.IsZero() {
		return Item{}, errors.Join(ErrInvalidResponse, fmt.Errorf("page %s: missing created_time", p.ID))
	}

	title, err := p.PlainTitle(s.cfg.TitleProperty)
	if err != nil && !errors.Is(err, notion.ErrPropertyMissing) {
		return Item{}, errors.Join(ErrInvalidResponse, err)
	}

	edited := p.LastEditedTime
	if edited.IsZero() {
		edited = p.CreatedTime
	}

	return Item{
		ID:           NormalizeID(p.ID),
		Title:        title,
		CreatedAt:    p.CreatedTime.UTC(),
		LastEditedAt: edited.UTC(),
	}, nil
}
