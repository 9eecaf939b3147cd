package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	readability "github.com/go-shiori/go-readability"

	"github.com/revistaviva/leitor/internal/config"
	"github.com/revistaviva/leitor/internal/content"
)

func getStyleConfigWithOverrides(theme config.Theme) (sc ansi.StyleConfig) {
	switch theme.Glamour {
	case "light":
		sc = glamour.LightStyleConfig
	case "dracula":
		sc = glamour.DraculaStyleConfig
	case "pink":
		sc = glamour.PinkStyleConfig
	case "ascii":
		sc = glamour.ASCIIStyleConfig
	case "notty":
		sc = glamour.NoTTYStyleConfig
	default:
		sc = glamour.DarkStyleConfig
	}

	if theme.TitleColor != "" {
		sc.H1.BackgroundColor = &theme.TitleColor
	}

	return sc
}

func glamouriseItem(item content.NewsItem, theme config.Theme, width int) (string, error) {
	var mdown string

	mdown += "# " + item.Title
	mdown += "\n"

	byline := item.Category
	if item.Author != nil {
		if byline != "" {
			byline += " · "
		}
		byline += item.Author.Name
	}
	if byline != "" {
		mdown += byline
		mdown += "\n"
	}
	if ts := formatTimestamp(item.Timestamp); ts != "" {
		mdown += ts
		mdown += "\n"
	}
	mdown += "\n"

	if item.SourceURL != "" {
		mdown += item.SourceURL
		mdown += "\n\n"
	}

	body := item.Content
	if body == "" {
		body = item.Excerpt
	}

	converted, err := htmlToMd(body)
	if err != nil {
		return "", fmt.Errorf("glamouriseItem: %w", err)
	}
	mdown += converted

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(getStyleConfigWithOverrides(theme)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("glamouriseItem: %w", err)
	}

	out, err := r.Render(mdown)
	if err != nil {
		return "", fmt.Errorf("glamouriseItem: %w", err)
	}

	return out, nil
}

func htmlToMd(html string) (string, error) {
	converter := md.NewConverter("", true, nil)

	mdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("htmlToMd: %w", err)
	}

	return mdown, nil
}

// extract downloads the page at sourceURL and keeps its readable part as html.
func (c Commands) extract(ctx context.Context, sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("commands.extract: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("commands.extract: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("commands.extract: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("commands.extract: %s returned %d", sourceURL, res.StatusCode)
	}

	article, err := readability.FromReader(res.Body, u)
	if err != nil {
		return "", fmt.Errorf("commands.extract: %w", err)
	}

	return article.Content, nil
}
