package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/revistaviva/leitor/internal/config"
	"github.com/revistaviva/leitor/internal/magazine"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrCategoryNotNews = errors.New("category only applies to news")
)

type Commands struct {
	config   *config.Config
	magazine *magazine.Service
	http     *http.Client
	out      io.Writer
}

func New(config *config.Config, magazine *magazine.Service, httpClient *http.Client) *Commands {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Commands{
		config:   config,
		magazine: magazine,
		http:     httpClient,
		out:      os.Stdout,
	}
}

// List prints one resource. filter narrows the result locally, number caps
// how many entries are shown (0 shows all).
func (c Commands) List(ctx context.Context, resource string, category string, filter string, number int) error {
	resource, err := magazine.ParseResource(resource)
	if err != nil {
		return fmt.Errorf("commands List: %w", err)
	}
	if category != "" && resource != magazine.News {
		return fmt.Errorf("commands List: %w, not %s", ErrCategoryNotNews, resource)
	}

	var page listing
	switch resource {
	case magazine.News:
		page = newsListing(c.magazine.News(ctx, category))
	case magazine.Editorials:
		page = editorialListing(c.magazine.Editorials(ctx))
	case magazine.Videos:
		page = videoListing(c.magazine.Videos(ctx))
	case magazine.Columnists:
		page = columnistListing(c.magazine.Columnists(ctx))
	}

	page.rows = applyFilter(page.rows, filter)
	if number > 0 && len(page.rows) > number {
		page.rows = page.rows[:number]
	}

	return c.output(page.render(newStyles(c.config.Theme)))
}

func (c Commands) Search(ctx context.Context, term string, number int) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return fmt.Errorf("commands Search: empty search term")
	}

	page := newsListing(c.magazine.Search(ctx, term))
	if number > 0 && len(page.rows) > number {
		page.rows = page.rows[:number]
	}

	return c.output(page.render(newStyles(c.config.Theme)))
}

func (c Commands) Read(ctx context.Context, id string) error {
	article, ok := c.magazine.Article(ctx, id)
	if !ok {
		return fmt.Errorf("commands Read: %w: %s", ErrArticleNotFound, id)
	}

	if article.Content == "" && article.SourceURL != "" {
		body, err := c.extract(ctx, article.SourceURL)
		if err != nil {
			// fall back to the excerpt
			log.Printf("commands: %v", err)
		} else {
			article.Content = body
		}
	}

	out, err := glamouriseItem(article, c.config.Theme, termWidth(c.out))
	if err != nil {
		return fmt.Errorf("commands Read: %w", err)
	}

	return c.output(out)
}

// ClearCache drops a single cached collection, or the whole partition when
// resource is empty.
func (c Commands) ClearCache(ctx context.Context, resource string, filter string) error {
	if resource == "" {
		if !c.magazine.Reset(ctx) {
			return fmt.Errorf("commands ClearCache: cache unavailable")
		}
		_, err := fmt.Fprintln(c.out, "cache cleared")
		return err
	}

	ok, err := c.magazine.Forget(ctx, resource, filter)
	if err != nil {
		return fmt.Errorf("commands ClearCache: %w", err)
	}
	if !ok {
		return fmt.Errorf("commands ClearCache: cache unavailable")
	}

	if filter == "" {
		filter = "all"
	}
	_, err = fmt.Fprintf(c.out, "forgot %s (%s)\n", resource, filter)
	return err
}

func (c Commands) Stats(ctx context.Context) error {
	stats, ok := c.magazine.CacheStats(ctx)
	if !ok {
		return fmt.Errorf("commands Stats: cache unavailable")
	}

	s := newStyles(c.config.Theme)
	ttl := c.magazine.CacheTTL()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.meta.Render("partition"), stats.Partition)
	fmt.Fprintf(&b, "%s %s\n", s.meta.Render("driver   "), c.config.Cache.Driver)
	fmt.Fprintf(&b, "%s %d\n", s.meta.Render("entries  "), stats.Entries)
	fmt.Fprintf(&b, "%s %s\n", s.meta.Render("size     "), humanize.Bytes(uint64(stats.Bytes)))
	if stats.Entries > 0 {
		fmt.Fprintf(&b, "%s %s\n", s.meta.Render("oldest   "), humanize.Time(stats.Oldest))
		fmt.Fprintf(&b, "%s %s\n", s.meta.Render("newest   "), humanize.Time(stats.Newest))
	}
	if ttl > 0 {
		fmt.Fprintf(&b, "%s %s\n", s.meta.Render("ttl      "), ttl)
	} else {
		fmt.Fprintf(&b, "%s %s\n", s.meta.Render("ttl      "), "none")
	}

	_, err := io.WriteString(c.out, b.String())
	return err
}

func (c Commands) ShowConfig() error {
	cfg := *c.config
	if cfg.Backend.APIKey != "" {
		cfg.Backend.APIKey = "********"
	}

	yaml, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("commands Config: %w", err)
	}

	_, err = c.out.Write(yaml)
	return err
}

func cachedAgo(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}
