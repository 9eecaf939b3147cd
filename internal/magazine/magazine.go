package magazine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/revistaviva/leitor/internal/backend"
	"github.com/revistaviva/leitor/internal/cache"
	"github.com/revistaviva/leitor/internal/content"
	"github.com/revistaviva/leitor/internal/readthrough"
	"github.com/revistaviva/leitor/internal/store"
)

// Resource names double as cache key prefixes.
const (
	News       = "news"
	Editorials = "editorials"
	Videos     = "videos"
	Columnists = "columnists"
	Search     = "search"
	Article    = "article"
)

var ErrUnknownResource = errors.New("magazine: unknown resource")

// Resources lists what can be listed, in display order.
var Resources = []string{News, Editorials, Videos, Columnists}

const (
	DefaultAllCategory = "Todas"
	DefaultLimit       = 50
)

type Options struct {
	// AllCategory is the label meaning "no category filter".
	AllCategory string
	Limit       int
}

// VideoSource supplies videos from somewhere other than the videos table.
type VideoSource interface {
	Videos(ctx context.Context) ([]content.VideoRow, error)
}

// Service exposes each magazine resource as a read-through fetch.
type Service struct {
	client backend.Client
	cache  *cache.Cache
	videos VideoSource
	opts   Options
}

// New wires a service. videos may be nil, in which case videos come from
// the backend like everything else.
func New(client backend.Client, c *cache.Cache, videos VideoSource, opts Options) *Service {
	if opts.AllCategory == "" {
		opts.AllCategory = DefaultAllCategory
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	return &Service{
		client: client,
		cache:  c,
		videos: videos,
		opts:   opts,
	}
}

func (s *Service) query(q backend.Query) func(context.Context) ([]json.RawMessage, error) {
	return func(ctx context.Context) ([]json.RawMessage, error) {
		if s.client == nil {
			return nil, errors.New("magazine: no backend configured")
		}
		return s.client.Query(ctx, q)
	}
}

func newest() *backend.Order {
	return &backend.Order{Column: "published_at"}
}

func (s *Service) isAll(category string) bool {
	return category == "" || category == s.opts.AllCategory
}

// News returns news items, newest first, optionally limited to a category.
func (s *Service) News(ctx context.Context, category string) readthrough.Result[content.NewsItem] {
	q := backend.Query{
		Table:  News,
		Select: "*,author:columnists(*)",
		Order:  newest(),
		Limit:  s.opts.Limit,
	}
	if !s.isAll(category) {
		q.Filters = []backend.Filter{backend.Eq("category", category)}
	}

	return readthrough.Fetch(ctx, s.cache, readthrough.Key(News, category), s.query(q), content.Decode(content.MapNews))
}

func (s *Service) Editorials(ctx context.Context) readthrough.Result[content.Editorial] {
	q := backend.Query{
		Table:  Editorials,
		Select: "*,author:columnists(*)",
		Order:  newest(),
		Limit:  s.opts.Limit,
	}

	return readthrough.Fetch(ctx, s.cache, readthrough.Key(Editorials, ""), s.query(q), content.Decode(content.MapEditorial))
}

func (s *Service) Videos(ctx context.Context) readthrough.Result[content.Video] {
	key := readthrough.Key(Videos, "")

	if s.videos != nil {
		return readthrough.Fetch(ctx, s.cache, key, s.videos.Videos, content.MapVideo)
	}

	q := backend.Query{
		Table: Videos,
		Order: newest(),
		Limit: s.opts.Limit,
	}

	return readthrough.Fetch(ctx, s.cache, key, s.query(q), content.Decode(content.MapVideo))
}

func (s *Service) Columnists(ctx context.Context) readthrough.Result[content.Columnist] {
	q := backend.Query{
		Table: Columnists,
		Order: &backend.Order{Column: "name", Ascending: true},
	}

	return readthrough.Fetch(ctx, s.cache, readthrough.Key(Columnists, ""), s.query(q), content.Decode(content.MapColumnist))
}

// Search matches term against news titles on the backend.
func (s *Service) Search(ctx context.Context, term string) readthrough.Result[content.NewsItem] {
	q := backend.Query{
		Table:   News,
		Select:  "*,author:columnists(*)",
		Filters: []backend.Filter{backend.Contains("title", term)},
		Order:   newest(),
		Limit:   s.opts.Limit,
	}

	return readthrough.Fetch(ctx, s.cache, readthrough.Key(Search, term), s.query(q), content.Decode(content.MapNews))
}

// Article fetches one news item by id, cached under article_<id>. When
// neither the backend nor that entry has it, every cached news and search
// collection is searched, so anything a listing showed can be read offline.
func (s *Service) Article(ctx context.Context, id string) (content.NewsItem, bool) {
	q := backend.Query{
		Table:   News,
		Select:  "*,author:columnists(*)",
		Filters: []backend.Filter{backend.Eq("id", id)},
		Limit:   1,
	}

	decode := content.Decode(content.MapNews)

	res := readthrough.Fetch(ctx, s.cache, readthrough.Key(Article, id), s.query(q), decode)
	for _, it := range res.Items {
		if it.ID == id {
			return it, true
		}
	}

	for _, key := range s.cache.Keys(ctx, News+"_", Search+"_") {
		var rows []json.RawMessage
		if _, ok := s.cache.Get(ctx, key, &rows); !ok {
			continue
		}

		for _, raw := range rows {
			it, err := decode(raw)
			if err == nil && it.ID == id {
				return it, true
			}
		}
	}

	return content.NewsItem{}, false
}

// Forget drops the cached collection of one resource and filter.
func (s *Service) Forget(ctx context.Context, resource string, filter string) (bool, error) {
	if !known(resource) && resource != Search && resource != Article {
		return false, fmt.Errorf("magazine.Forget: %w: %s", ErrUnknownResource, resource)
	}

	return s.cache.Delete(ctx, readthrough.Key(resource, filter)), nil
}

// Reset empties the whole cache partition.
func (s *Service) Reset(ctx context.Context) bool {
	return s.cache.Clear(ctx)
}

// CacheTTL is how long cached collections stay fresh; 0 means forever.
func (s *Service) CacheTTL() time.Duration {
	return s.cache.TTL()
}

// CacheStats describes the cache partition backing the service.
func (s *Service) CacheStats(ctx context.Context) (store.Stats, bool) {
	return s.cache.Stats(ctx)
}

func known(resource string) bool {
	for _, r := range Resources {
		if r == resource {
			return true
		}
	}

	return false
}

// ParseResource accepts a resource name, defaulting to news.
func ParseResource(name string) (string, error) {
	if name == "" {
		return News, nil
	}

	if !known(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}

	return name, nil
}
