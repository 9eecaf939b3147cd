// Package feed reads videos from an RSS or Atom feed, typically a YouTube
// channel feed, as an alternative to the videos table.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/revistaviva/leitor/internal/content"
)

type Source struct {
	URL      string
	Category string
	parser   *gofeed.Parser
}

func New(url string, category string, client *http.Client) *Source {
	fp := gofeed.NewParser()
	if client != nil {
		fp.Client = client
	}

	return &Source{
		URL:      url,
		Category: category,
		parser:   fp,
	}
}

func (s *Source) Videos(ctx context.Context) ([]content.VideoRow, error) {
	feed, err := s.parser.ParseURLWithContext(s.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed.Videos: %w", err)
	}

	return feedToVideos(feed, s.Category), nil
}

func feedToVideos(feed *gofeed.Feed, category string) []content.VideoRow {
	rows := make([]content.VideoRow, 0, len(feed.Items))

	for _, it := range feed.Items {
		id := it.GUID
		if id == "" {
			id = it.Link
		}

		r := content.VideoRow{
			ID:           content.ID(id),
			Title:        it.Title,
			Description:  it.Description,
			VideoURL:     it.Link,
			ThumbnailURL: thumbnail(it),
			Category:     category,
		}

		if r.Description == "" {
			r.Description = mediaDescription(it.Extensions)
		}

		if it.PublishedParsed != nil {
			r.PublishedAt = it.PublishedParsed.UTC().Format(time.RFC3339)
		} else if it.UpdatedParsed != nil {
			r.PublishedAt = it.UpdatedParsed.UTC().Format(time.RFC3339)
		}

		rows = append(rows, r)
	}

	return rows
}

// mediaGroup returns the first media:group of an item. YouTube keeps the
// thumbnail and description there rather than in the item itself.
func mediaGroup(e ext.Extensions) (ext.Extension, bool) {
	media, ok := e["media"]
	if !ok {
		return ext.Extension{}, false
	}

	groups := media["group"]
	if len(groups) == 0 {
		return ext.Extension{}, false
	}

	return groups[0], true
}

func thumbnail(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}

	if g, ok := mediaGroup(it.Extensions); ok {
		if thumbs := g.Children["thumbnail"]; len(thumbs) > 0 {
			return thumbs[0].Attrs["url"]
		}
	}

	if media, ok := it.Extensions["media"]; ok {
		if thumbs := media["thumbnail"]; len(thumbs) > 0 {
			return thumbs[0].Attrs["url"]
		}
	}

	return ""
}

func mediaDescription(e ext.Extensions) string {
	g, ok := mediaGroup(e)
	if !ok {
		return ""
	}

	if d := g.Children["description"]; len(d) > 0 {
		return d[0].Value
	}

	return ""
}
